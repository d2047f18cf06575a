package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Replace factors of the credential bundle",
	Long: `Replace the face image, the unlock combination or the lock
combination of the authenticated account. Only the supplied factors change;
--delete-lock removes the lock combination instead of replacing it.`,
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().String("face", "", "New face image")
	editCmd.Flags().StringSlice("unlock", nil, "New unlock gesture images in combination order")
	editCmd.Flags().StringSlice("lock", nil, "New lock gesture images in combination order")
	editCmd.Flags().Bool("delete-lock", false, "Remove the lock combination")
}

func runEdit(cmd *cobra.Command, args []string) error {
	flow, err := loadFlow()
	if err != nil {
		return err
	}

	result, err := flow.Edit(cmd.Context(),
		mustGetString(cmd, "face"),
		mustGetStringSlice(cmd, "lock"),
		mustGetStringSlice(cmd, "unlock"),
		mustGetBool(cmd, "delete-lock"),
	)
	if err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("%s", result.Message)
	}

	fmt.Println("Account updated")
	if len(result.UnlockNames) > 0 {
		fmt.Printf("  Unlock combination: %s\n", strings.Join(result.UnlockNames, ", "))
	}
	if len(result.LockNames) > 0 {
		fmt.Printf("  Lock combination:   %s\n", strings.Join(result.LockNames, ", "))
	}
	return nil
}
