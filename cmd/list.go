package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opsdesk/sdrctl/pkg/models"
)

// listCmd queries SDRs by equality filters.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List SDRs matching equality filters",
	Long: `List Service Delivery Requests.

All given filters are ANDed together; results come back newest change
first.

Example:
  sdrctl list --submitter u123 --priority High`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _, err := newService()
		if err != nil {
			return err
		}

		filter := models.Filter{
			SubmitterID: listFlags.submitter,
			AssignedTo:  listFlags.assignee,
			State:       models.Status(listFlags.state),
			Priority:    models.Priority(listFlags.priority),
		}

		items, err := service.List(cmd.Context(), filter)
		if err != nil {
			return err
		}

		return printJSON(items)
	},
}

var listFlags struct {
	submitter string
	assignee  string
	state     string
	priority  string
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFlags.submitter, "submitter", "", "filter by submitter id")
	listCmd.Flags().StringVar(&listFlags.assignee, "assignee", "", "filter by assignee")
	listCmd.Flags().StringVar(&listFlags.state, "state", "", "filter by state")
	listCmd.Flags().StringVar(&listFlags.priority, "priority", "", "filter by priority")
}
