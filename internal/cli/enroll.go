package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaintrub/docebo-go/bulk"
	"github.com/vaintrub/docebo-go/models"
)

type bulkFlags struct {
	file             string
	level            string
	assignment       string
	validFrom        string
	validUntil       string
	allowUnconfirmed bool
	batchSize        int
	jsonOutput       bool
}

// bulkReport is the JSON form of a bulk result.
type bulkReport struct {
	RunID     string         `json:"run_id"`
	Operation bulk.Operation `json:"operation"`
	Kind      models.Kind    `json:"kind"`
	Target    string         `json:"target"`
	TargetID  string         `json:"target_id,omitempty"`
	Name      string         `json:"target_name,omitempty"`
	Match     string         `json:"match,omitempty"`
	Requested int            `json:"requested"`
	Succeeded []bulk.Outcome `json:"succeeded"`
	Failed    []bulk.Outcome `json:"failed"`
}

func newBulkCmd(a *app, op bulk.Operation) *cobra.Command {
	f := &bulkFlags{}

	verb := "Enroll users in"
	if op == bulk.OpUnenroll {
		verb = "Unenroll users from"
	}

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <kind> <target> [users...]", op),
		Short: verb + " a course or learning plan",
		Long: verb + ` a course or learning plan.

The target is resolved once from its id, name or code. Users are given as
emails, usernames or ids, on the command line or one per line in --file
("-" reads standard input). Users are processed in small concurrent batches
and one failure never stops the others.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseKind(args[0])
			if err != nil {
				return err
			}
			users := append([]string(nil), args[2:]...)
			if f.file != "" {
				more, err := readUserFile(cmd.InOrStdin(), f.file)
				if err != nil {
					return err
				}
				users = append(users, more...)
			}

			opts, err := f.enrollmentOptions(op)
			if err != nil {
				return err
			}
			return a.runBulk(cmd, op, kind, args[1], users, opts, f)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "read users from a file, one per line (- for stdin)")
	cmd.Flags().BoolVar(&f.allowUnconfirmed, "allow-unconfirmed", false, "accept weak matches for the target and users")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "users processed concurrently per batch (default from config)")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "output as JSON")
	if op == bulk.OpEnroll {
		cmd.Flags().StringVar(&f.level, "level", "", "enrollment level: learner, tutor, instructor")
		cmd.Flags().StringVar(&f.assignment, "assignment", "", "assignment type: mandatory, required, recommended, optional, none")
		cmd.Flags().StringVar(&f.validFrom, "valid-from", "", "enrollment start date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&f.validUntil, "valid-until", "", "enrollment end date (YYYY-MM-DD)")
	}
	return cmd
}

func (a *app) runBulk(cmd *cobra.Command, op bulk.Operation, kind models.Kind, target string, users []string, opts models.EnrollmentOptions, f *bulkFlags) error {
	c, res, err := a.newResolver()
	if err != nil {
		return err
	}

	batchSize := a.cfg.Bulk.BatchSize
	if f.batchSize > 0 {
		batchSize = f.batchSize
	}
	orch, err := bulk.New(res, c,
		bulk.WithBatchSize(batchSize),
		bulk.WithBatchPause(a.cfg.Bulk.BatchPause),
		bulk.WithAllowUnconfirmed(f.allowUnconfirmed || a.cfg.Bulk.AllowUnconfirmed),
		bulk.WithLogger(a.logger),
		bulk.WithMetrics(a.registry),
	)
	if err != nil {
		return err
	}

	result, runErr := orch.Run(cmd.Context(), kind, target, users, op, opts)
	if result == nil {
		return runErr
	}

	if f.jsonOutput {
		if err := writeReport(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		a.printSummary(result)
	}

	if runErr != nil {
		return fmt.Errorf("%s stopped: %w", op, runErr)
	}
	if n := len(result.Failures); n > 0 {
		return fmt.Errorf("%d of %d users failed", n, result.TotalRequested)
	}
	return nil
}

func (a *app) printSummary(result *bulk.Result) {
	summary := result.Summary()
	switch {
	case result.TotalRequested == 0:
		a.printer.Warning("%s", summary)
	case len(result.Failures) == 0:
		a.printer.Success("%s", summary)
	default:
		a.printer.Print("%s", summary)
	}
}

func writeReport(w io.Writer, r *bulk.Result) error {
	report := bulkReport{
		RunID:     r.RunID,
		Operation: r.Operation,
		Kind:      r.Kind,
		Target:    r.TargetQuery,
		Requested: r.TotalRequested,
		Succeeded: nonNil(r.Successes),
		Failed:    nonNil(r.Failures),
	}
	if r.Target != nil {
		report.TargetID = r.Target.ID
		report.Name = r.Target.DisplayName
		report.Match = r.Target.Tier.String()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func nonNil(outcomes []bulk.Outcome) []bulk.Outcome {
	if outcomes == nil {
		return []bulk.Outcome{}
	}
	return outcomes
}

func (f *bulkFlags) enrollmentOptions(op bulk.Operation) (models.EnrollmentOptions, error) {
	var opts models.EnrollmentOptions
	if op != bulk.OpEnroll {
		return opts, nil
	}
	opts.Level = models.EnrollmentLevel(strings.ToLower(f.level))
	opts.AssignmentType = models.AssignmentType(strings.ToLower(f.assignment))

	var err error
	if opts.ValidityStart, err = parseDate("--valid-from", f.validFrom); err != nil {
		return opts, err
	}
	if opts.ValidityEnd, err = parseDate("--valid-until", f.validUntil); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseDate(flag, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, models.PlatformTimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s: invalid date %q (want YYYY-MM-DD)", flag, s)
}

// readUserFile reads one user per line. Blank lines and lines starting
// with # are skipped.
func readUserFile(stdin io.Reader, path string) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("reading users: %w", err)
		}
		defer file.Close()
		r = file
	}

	var users []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		users = append(users, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}
	return users, nil
}
