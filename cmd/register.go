package cmd

import (
	"fmt"
	"strings"

	"github.com/horusauth/horus/internal/session"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Register a new account",
	Long: `Register a new account from a face image and gesture photo series.
The unlock combination is required and logs the user in; the lock combination
is optional and logs the user out. Gesture photos are sent in order, one
gesture per image.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("face", "", "Path to the face image (required)")
	registerCmd.Flags().StringSlice("unlock", nil, "Unlock gesture images in combination order (required)")
	registerCmd.Flags().StringSlice("lock", nil, "Lock gesture images in combination order")
	_ = registerCmd.MarkFlagRequired("face")
	_ = registerCmd.MarkFlagRequired("unlock")
}

func runRegister(cmd *cobra.Command, args []string) error {
	flow, err := loadFlow()
	if err != nil {
		return err
	}

	state, err := flow.ResolveUser(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if state != session.Registering {
		return fmt.Errorf("user %s already exists, use login instead", args[0])
	}

	result, err := flow.Register(cmd.Context(),
		mustGetString(cmd, "face"),
		mustGetStringSlice(cmd, "lock"),
		mustGetStringSlice(cmd, "unlock"),
	)
	if err != nil {
		return err
	}

	fmt.Printf("Account %s created\n", args[0])
	if len(result.UnlockNames) > 0 {
		fmt.Printf("  Unlock combination: %s\n", strings.Join(result.UnlockNames, ", "))
	}
	if len(result.LockNames) > 0 {
		fmt.Printf("  Lock combination:   %s\n", strings.Join(result.LockNames, ", "))
	}
	return nil
}
