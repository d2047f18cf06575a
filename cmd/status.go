package cmd

import (
	"fmt"

	"github.com/horusauth/horus/internal/session"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	flow, err := loadFlow()
	if err != nil {
		return err
	}

	data := flow.Data()
	fmt.Printf("State: %s\n", flow.State())
	if data.Username != "" {
		fmt.Printf("User:  %s\n", data.Username)
		fmt.Printf("Exists: %s\n", data.Exists)
	}
	if flow.State() == session.Authenticated {
		fmt.Println("Authenticated: yes")
	}
	return nil
}
