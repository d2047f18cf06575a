package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out with a face image and the lock combination",
	Long: `Log out of the current session. Logout is itself verified: the face
image must match and, when the account has a lock combination, the lock
gestures must be supplied in order. The session is only cleared after the
verification succeeds.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)

	logoutCmd.Flags().String("face", "", "Path to the face image (required)")
	logoutCmd.Flags().StringSlice("lock", nil, "Lock gesture images in combination order")
	_ = logoutCmd.MarkFlagRequired("face")
}

func runLogout(cmd *cobra.Command, args []string) error {
	flow, err := loadFlow()
	if err != nil {
		return err
	}

	if _, err := flow.Logout(cmd.Context(),
		mustGetString(cmd, "face"),
		mustGetStringSlice(cmd, "lock"),
	); err != nil {
		return err
	}

	fmt.Println("Logged out")
	return nil
}
