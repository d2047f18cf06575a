package cmd

import (
	"fmt"

	"github.com/horusauth/horus/internal/session"
	"github.com/spf13/cobra"
)

var forgotCmd = &cobra.Command{
	Use:   "forgot <username>",
	Short: "Recover access to an account",
	Long: `Recover access when the unlock combination is forgotten. Accounts
with a stored lock combination verify it; accounts without one fall back to
a face check. The branch is chosen automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: runForgot,
}

func init() {
	rootCmd.AddCommand(forgotCmd)

	forgotCmd.Flags().String("face", "", "Path to the face image (for face recovery)")
	forgotCmd.Flags().StringSlice("lock", nil, "Lock gesture images in combination order (for lock recovery)")
}

func runForgot(cmd *cobra.Command, args []string) error {
	flow, err := loadFlow()
	if err != nil {
		return err
	}

	state, err := flow.ResolveUser(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if state != session.LoggingIn {
		return fmt.Errorf("user %s does not exist", args[0])
	}

	state, err = flow.StartRecovery(cmd.Context())
	if err != nil {
		return err
	}

	face := mustGetString(cmd, "face")
	locks := mustGetStringSlice(cmd, "lock")
	switch state {
	case session.RecoveringViaLock:
		if len(locks) == 0 {
			return fmt.Errorf("this account recovers with its lock combination, supply --lock images")
		}
		fmt.Println("Verifying lock combination...")
	case session.RecoveringViaFace:
		if face == "" {
			return fmt.Errorf("this account recovers with a face check, supply --face")
		}
		fmt.Println("Verifying face...")
	}

	if _, err := flow.Recover(cmd.Context(), face, locks); err != nil {
		return err
	}

	fmt.Printf("Access recovered, logged in as %s\n", args[0])
	fmt.Println("Use the edit command to set a new unlock combination")
	return nil
}
