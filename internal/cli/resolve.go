package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaintrub/docebo-go/models"
	"github.com/vaintrub/docebo-go/resolver"
)

// resolution is one row of resolve output.
type resolution struct {
	Kind  models.Kind `json:"kind"`
	Query string      `json:"query"`
	ID    string      `json:"id,omitempty"`
	Name  string      `json:"name,omitempty"`
	Match string      `json:"match"`
	Error string      `json:"error,omitempty"`
}

func newResolveCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve <kind> <identifier...>",
		Short: "Resolve free-text identifiers into platform resources",
		Long: `Resolve one or more identifiers of the given kind (user, course, lp).

Numeric identifiers are looked up by id first. Other identifiers are matched
by exact name, code, name prefix and finally name substring.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseKind(args[0])
			if err != nil {
				return err
			}
			_, res, err := a.newResolver()
			if err != nil {
				return err
			}

			var (
				rows    []resolution
				missing int
			)
			for _, identifier := range args[1:] {
				row := resolution{Kind: kind, Query: identifier}
				r, err := res.Resolve(cmd.Context(), kind, identifier)
				switch {
				case errors.Is(err, resolver.ErrNotFound):
					row.Match = "not found"
					row.Error = err.Error()
					missing++
				case err != nil:
					return fmt.Errorf("resolving %q: %w", identifier, err)
				default:
					row.ID = r.ID
					row.Name = r.DisplayName
					row.Match = r.Tier.String()
				}
				rows = append(rows, row)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(rows); err != nil {
					return err
				}
			} else if err := a.renderResolutions(cmd, rows); err != nil {
				return err
			}

			if missing > 0 {
				return fmt.Errorf("%d of %d identifiers not found", missing, len(rows))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (a *app) renderResolutions(cmd *cobra.Command, rows []resolution) error {
	table := NewTable(cmd.OutOrStdout(), []string{"KIND", "QUERY", "ID", "NAME", "MATCH"})
	for _, r := range rows {
		table.AddRow(r.Kind.Label(), r.Query, r.ID, r.Name, a.printer.Tier(r.Match))
	}
	return table.Render()
}
