package cmd

import (
	"github.com/horusauth/horus/internal/client"
	"github.com/horusauth/horus/internal/config"
)

// loadFlow builds the API client and restores the session for the
// client-side commands.
func loadFlow() (*client.Flow, error) {
	cfg := config.Load()
	api := client.New(cfg.Client.ServerURL)
	return client.LoadFlow(api, cfg.Client.SessionFile)
}
