package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdesk/sdrctl/internal/logging"
	"github.com/opsdesk/sdrctl/pkg/models"
)

// createCmd submits a new SDR to the tracker.
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new SDR",
	Long: `Create a new Service Delivery Request as a tracker work item.

Priority, customer type, source type, and required-by date fall back to
their documented defaults (Medium, Internal, Manual, 30 days out) when not
given.

Example:
  sdrctl create --title "Printer broken" --description "The 3rd floor printer jams on every job" \
    --submitter-id u123 --submitter-name "Dana Ops" --submitter-email dana@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _, err := newService()
		if err != nil {
			return err
		}

		req := models.CreateRequest{
			Title:        createFlags.title,
			Description:  createFlags.description,
			Priority:     models.Priority(createFlags.priority),
			CustomerType: models.CustomerType(createFlags.customerType),
			SourceType:   models.SourceType(createFlags.sourceType),
			Submitter: models.Submitter{
				ID:    createFlags.submitterID,
				Name:  createFlags.submitterName,
				Email: createFlags.submitterEmail,
			},
		}

		if createFlags.requiredBy != "" {
			t, err := time.Parse("2006-01-02", createFlags.requiredBy)
			if err != nil {
				return fmt.Errorf("invalid --required-by date, expected YYYY-MM-DD: %w", err)
			}
			req.RequiredByDate = &t
		}
		if cmd.Flags().Changed("estimated-hours") {
			req.EstimatedHours = &createFlags.estimatedHours
		}

		created, err := service.Create(cmd.Context(), req)
		if err != nil {
			return err
		}

		logging.Info("sdr created", "id", created.ID)
		return printJSON(created)
	},
}

var createFlags struct {
	title          string
	description    string
	priority       string
	customerType   string
	sourceType     string
	requiredBy     string
	estimatedHours float64
	submitterID    string
	submitterName  string
	submitterEmail string
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createFlags.title, "title", "", "short summary of the request (required)")
	createCmd.Flags().StringVar(&createFlags.description, "description", "", "full description")
	createCmd.Flags().StringVar(&createFlags.priority, "priority", "", "Low, Medium, High, or Critical")
	createCmd.Flags().StringVar(&createFlags.customerType, "customer-type", "", "Internal or External")
	createCmd.Flags().StringVar(&createFlags.sourceType, "source-type", "", "Manual, Email, File, or Teams")
	createCmd.Flags().StringVar(&createFlags.requiredBy, "required-by", "", "required-by date (YYYY-MM-DD)")
	createCmd.Flags().Float64Var(&createFlags.estimatedHours, "estimated-hours", 0, "estimated effort in hours")
	createCmd.Flags().StringVar(&createFlags.submitterID, "submitter-id", "", "submitter identity (required)")
	createCmd.Flags().StringVar(&createFlags.submitterName, "submitter-name", "", "submitter display name (required)")
	createCmd.Flags().StringVar(&createFlags.submitterEmail, "submitter-email", "", "submitter email (required)")
}
