package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdesk/sdrctl/internal/logging"
)

// checkCmd probes the tracker without touching any SDR.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify tracker connectivity and credentials",
	Long: `Verify that the configured organization, project, and credentials can
reach the work-item tracker. No SDRs are read or written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cfg, err := newService()
		if err != nil {
			return err
		}

		if err := service.Ping(cmd.Context()); err != nil {
			logging.Error("tracker probe failed", "organization", cfg.DevOps.Organization, "error", err)
			return fmt.Errorf("tracker unreachable: %w", err)
		}

		fmt.Printf("connected to %s/%s\n", cfg.DevOps.Organization, cfg.DevOps.Project)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
