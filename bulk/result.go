package bulk

import (
	"fmt"
	"strings"

	"github.com/vaintrub/docebo-go/models"
)

// Outcome is the terminal state of one requested user.
type Outcome struct {
	Email      string // identifier as supplied
	UserID     string // resolved user id, empty if resolution failed
	ResourceID string // target id, empty if the target did not resolve
	Reason     string // failure reason, empty on success
	Succeeded  bool
}

// Result aggregates a bulk run. len(Successes)+len(Failures) always equals
// TotalRequested.
type Result struct {
	RunID          string
	Operation      Operation
	Kind           models.Kind
	TargetQuery    string
	Target         *models.ResolvedResource // nil if the target did not resolve
	Successes      []Outcome
	Failures       []Outcome
	TotalRequested int
}

// Summary renders the result as a short report.
func (r *Result) Summary() string {
	if r.TotalRequested == 0 {
		return fmt.Sprintf("No users to %s.", r.Operation)
	}

	var b strings.Builder
	if r.Target == nil {
		reason := fmt.Sprintf("%s not found: %s", r.Kind.Label(), r.TargetQuery)
		if len(r.Failures) > 0 {
			reason = r.Failures[0].Reason
		}
		fmt.Fprintf(&b, "Could not %s %s: %s.", r.Operation, countUsers(r.TotalRequested), reason)
		return b.String()
	}

	fmt.Fprintf(&b, "%s %d of %s %s %s %q (id %s).",
		capitalize(r.Operation.past()),
		len(r.Successes),
		countUsers(r.TotalRequested),
		r.Operation.preposition(),
		r.Kind.Label(),
		r.Target.DisplayName,
		r.Target.ID)
	if r.Target.Ambiguous() || r.Target.Unconfirmed() {
		fmt.Fprintf(&b, "\nNote: %q is only %s, check this is the intended %s.",
			r.TargetQuery, tierPhrase(r.Target.Tier), r.Kind.Label())
	}

	if len(r.Successes) > 0 {
		b.WriteString("\nSucceeded:")
		for _, out := range r.Successes {
			fmt.Fprintf(&b, "\n  - %s (user %s)", out.Email, out.UserID)
		}
	}
	if len(r.Failures) > 0 {
		b.WriteString("\nFailed:")
		for _, out := range r.Failures {
			fmt.Fprintf(&b, "\n  - %s: %s", out.Email, out.Reason)
		}
	}
	return b.String()
}

func countUsers(n int) string {
	if n == 1 {
		return "1 user"
	}
	return fmt.Sprintf("%d users", n)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func tierPhrase(t models.MatchTier) string {
	if t == models.TierUnconfirmed {
		return "a best guess"
	}
	return "a partial name match"
}
