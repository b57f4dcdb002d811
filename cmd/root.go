// Package cmd provides the command-line interface for the sdrctl tool.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsdesk/sdrctl/internal/config"
	"github.com/opsdesk/sdrctl/internal/devops"
	"github.com/opsdesk/sdrctl/internal/sdr"
	"github.com/opsdesk/sdrctl/internal/secrets"
)

var rootCmd = &cobra.Command{
	Use:   "sdrctl",
	Short: "sdrctl manages Service Delivery Requests stored as tracker work items",
	Long: `sdrctl creates, reads, updates, and closes Service Delivery Requests (SDRs).

SDRs have no database of their own: every record is persisted as a work item
in the organization's Azure DevOps project, and sdrctl is the translation
layer between the SDR domain model and the tracker's work-item schema.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// newService wires the engine from environment configuration: secret
// provider, transport client, orchestrator.
func newService() (*sdr.Service, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var provider secrets.Provider
	if cfg.DevOps.PAT != "" {
		provider = secrets.Static{Value: cfg.DevOps.PAT}
	} else {
		provider = secrets.NewKeyVault(cfg.Azure)
	}

	client := devops.NewClient(devops.Config{
		Organization: cfg.DevOps.Organization,
		Project:      cfg.DevOps.Project,
		BaseURL:      cfg.DevOps.BaseURL,
		Timeout:      cfg.DevOps.Timeout,
	}, provider)

	return sdr.NewService(client), cfg, nil
}

// printJSON renders a command result on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
