package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// getCmd fetches one SDR by id.
var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch an SDR by id",
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

		item, err := service.Get(cmd.Context(), id)
		if err != nil {
			return err
		}

		return printJSON(item)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
