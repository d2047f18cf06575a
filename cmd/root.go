package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "horus",
	Short: "Multi-factor biometric account authentication",
	Long: `Horus authenticates accounts with a face image and hand gesture
combinations. Unlock gestures log a user in, lock gestures log them out.
The serve command runs the verification server; the remaining commands are
a client driving the registration, login, recovery and editing flows.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
