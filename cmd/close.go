package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opsdesk/sdrctl/internal/logging"
)

// closeCmd soft-deletes an SDR. The work item stays in the tracker with
// status Closed; nothing is ever destructively deleted.
var closeCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close an SDR (soft delete)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		service, _, err := newService()
		if err != nil {
			return err
		}

		if err := service.Remove(cmd.Context(), id); err != nil {
			return err
		}

		logging.Info("sdr closed", "id", id)
		fmt.Printf("SDR %d closed\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)
}
