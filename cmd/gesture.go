package cmd

import (
	"fmt"
	"os"

	"github.com/horusauth/horus/internal/config"
	"github.com/horusauth/horus/internal/recognition"
	"github.com/spf13/cobra"
)

// gestureCmd classifies gesture images directly through the configured
// provider, useful for checking photos before registering with them.
var gestureCmd = &cobra.Command{
	Use:   "gesture <image> [image...]",
	Short: "Classify gesture images without touching any account",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGesture,
}

func init() {
	rootCmd.AddCommand(gestureCmd)
}

func runGesture(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	provider, err := recognition.NewProvider(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("creating recognition provider: %w", err)
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		gesture, err := provider.ClassifyGesture(cmd.Context(), data)
		if err != nil {
			return fmt.Errorf("classifying %s: %w", path, err)
		}
		fmt.Printf("%s: %s\n", path, gesture)
	}
	return nil
}
