package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaintrub/docebo-go/client"
	"github.com/vaintrub/docebo-go/models"
)

func newListCmd(a *app) *cobra.Command {
	var (
		search     string
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List platform resources",
		Long: `List users, courses or learning plans, optionally filtered by the
platform's free-text search.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseKind(args[0])
			if err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			c, err := a.newClient()
			if err != nil {
				return err
			}

			pageSize := client.MaxPageSize
			if limit > 0 && limit < pageSize {
				pageSize = limit
			}
			it := c.RecordIter(kind, search, pageSize)
			var records []models.Record
			for (limit == 0 || len(records) < limit) && it.Next(cmd.Context()) {
				records = append(records, it.Item())
			}
			if err := it.Err(); err != nil {
				return fmt.Errorf("listing %ss: %w", kind.Label(), err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			if len(records) == 0 {
				a.printer.Warning("No %ss found", kind.Label())
				return nil
			}
			table := NewTable(cmd.OutOrStdout(), []string{"ID", "CODE", "NAME"})
			for _, rec := range records {
				table.AddRow(rec.ID(kind), rec.Code(kind), rec.DisplayName(kind))
			}
			if err := table.Render(); err != nil {
				return err
			}
			if it.HasMore() {
				if total := it.Total(); total > 0 {
					a.printer.Print("Showing %d of %d; use --limit to see more", len(records), total)
				} else {
					a.printer.Print("Showing %d; use --limit to see more", len(records))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "free-text search filter")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of results (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
