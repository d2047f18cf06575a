package cmd

import (
	"fmt"

	"github.com/horusauth/horus/internal/session"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in with a face image and the unlock combination",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().String("face", "", "Path to the face image (required)")
	loginCmd.Flags().StringSlice("unlock", nil, "Unlock gesture images in combination order (required)")
	_ = loginCmd.MarkFlagRequired("face")
	_ = loginCmd.MarkFlagRequired("unlock")
}

func runLogin(cmd *cobra.Command, args []string) error {
	flow, err := loadFlow()
	if err != nil {
		return err
	}

	state, err := flow.ResolveUser(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if state != session.LoggingIn {
		return fmt.Errorf("user %s does not exist, use register instead", args[0])
	}

	if _, err := flow.Login(cmd.Context(),
		mustGetString(cmd, "face"),
		mustGetStringSlice(cmd, "unlock"),
	); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", args[0])
	return nil
}
