package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdesk/sdrctl/pkg/models"
)

// updateCmd applies a partial update to an SDR. Flags that were not given
// leave the field untouched; --clear explicitly nulls a field on the work
// item, which is a different thing from not mentioning it.
var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Apply a partial update to an SDR",
	Long: `Apply a partial update to a Service Delivery Request.

Only the fields named by flags are touched. Use --clear to explicitly null
a field rather than leaving it unchanged.

Example:
  sdrctl update 42 --assigned-to a@x.com --priority High
  sdrctl update 42 --clear assignedTo --clear estimatedHours`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		service, _, err := newService()
		if err != nil {
			return err
		}

		var req models.UpdateRequest
		flags := cmd.Flags()

		if flags.Changed("title") {
			req.Title = models.Set(updateFlags.title)
		}
		if flags.Changed("description") {
			req.Description = models.Set(updateFlags.description)
		}
		if flags.Changed("status") {
			req.Status = models.Set(models.Status(updateFlags.status))
		}
		if flags.Changed("priority") {
			req.Priority = models.Set(models.Priority(updateFlags.priority))
		}
		if flags.Changed("customer-type") {
			req.CustomerType = models.Set(models.CustomerType(updateFlags.customerType))
		}
		if flags.Changed("source-type") {
			req.SourceType = models.Set(models.SourceType(updateFlags.sourceType))
		}
		if flags.Changed("assigned-to") {
			req.AssignedTo = models.Set(updateFlags.assignedTo)
		}
		if flags.Changed("estimated-hours") {
			req.EstimatedHours = models.Set(updateFlags.estimatedHours)
		}
		if flags.Changed("actual-hours") {
			req.ActualHours = models.Set(updateFlags.actualHours)
		}
		if flags.Changed("required-by") {
			t, err := time.Parse("2006-01-02", updateFlags.requiredBy)
			if err != nil {
				return fmt.Errorf("invalid --required-by date, expected YYYY-MM-DD: %w", err)
			}
			req.RequiredByDate = models.Set(t)
		}

		for _, field := range updateFlags.clear {
			if err := applyClear(&req, field); err != nil {
				return err
			}
		}

		updated, err := service.Update(cmd.Context(), id, req)
		if err != nil {
			return err
		}

		return printJSON(updated)
	},
}

// applyClear marks one named field as explicitly nulled.
func applyClear(req *models.UpdateRequest, field string) error {
	switch field {
	case "description":
		req.Description = models.Clear[string]()
	case "assignedTo":
		req.AssignedTo = models.Clear[string]()
	case "requiredByDate":
		req.RequiredByDate = models.Clear[time.Time]()
	case "estimatedHours":
		req.EstimatedHours = models.Clear[float64]()
	case "actualHours":
		req.ActualHours = models.Clear[float64]()
	default:
		return fmt.Errorf("field %q cannot be cleared", field)
	}
	return nil
}

var updateFlags struct {
	title          string
	description    string
	status         string
	priority       string
	customerType   string
	sourceType     string
	assignedTo     string
	requiredBy     string
	estimatedHours float64
	actualHours    float64
	clear          []string
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updateFlags.title, "title", "", "new title")
	updateCmd.Flags().StringVar(&updateFlags.description, "description", "", "new description")
	updateCmd.Flags().StringVar(&updateFlags.status, "status", "", "new status (New, Active, Resolved, Closed)")
	updateCmd.Flags().StringVar(&updateFlags.priority, "priority", "", "new priority")
	updateCmd.Flags().StringVar(&updateFlags.customerType, "customer-type", "", "new customer type")
	updateCmd.Flags().StringVar(&updateFlags.sourceType, "source-type", "", "new source type")
	updateCmd.Flags().StringVar(&updateFlags.assignedTo, "assigned-to", "", "new assignee email")
	updateCmd.Flags().StringVar(&updateFlags.requiredBy, "required-by", "", "new required-by date (YYYY-MM-DD)")
	updateCmd.Flags().Float64Var(&updateFlags.estimatedHours, "estimated-hours", 0, "new estimated hours")
	updateCmd.Flags().Float64Var(&updateFlags.actualHours, "actual-hours", 0, "new actual hours")
	updateCmd.Flags().StringArrayVar(&updateFlags.clear, "clear", nil, "field to explicitly null (repeatable)")
}
