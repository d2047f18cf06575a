package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the authenticated account",
	Long: `Delete the authenticated account and every stored factor: the face
image, the gesture images and the combination config. This cannot be undone.`,
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	flow, err := loadFlow()
	if err != nil {
		return err
	}

	if !mustGetBool(cmd, "yes") {
		fmt.Printf("Delete account %s and all its credentials? [y/N]: ", flow.Data().Username)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Aborted")
			return nil
		}
	}

	if _, err := flow.Delete(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("Account deleted")
	return nil
}
