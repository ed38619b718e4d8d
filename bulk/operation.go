package bulk

import (
	"context"
	"fmt"
	"strings"

	"github.com/vaintrub/docebo-go/client"
	"github.com/vaintrub/docebo-go/models"
	"github.com/vaintrub/docebo-go/resolver"
)

// Operation is the per-user change applied by a bulk run.
type Operation string

const (
	OpEnroll   Operation = "enroll"
	OpUnenroll Operation = "unenroll"
)

// ParseOperation parses "enroll" or "unenroll".
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(strings.ToLower(strings.TrimSpace(s))); op {
	case OpEnroll, OpUnenroll:
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	return op == OpEnroll || op == OpUnenroll
}

func (op Operation) past() string {
	if op == OpUnenroll {
		return "unenrolled"
	}
	return "enrolled"
}

func (op Operation) preposition() string {
	if op == OpUnenroll {
		return "from"
	}
	return "in"
}

// Resolver resolves identifiers into platform resources.
// *resolver.Resolver implements it.
type Resolver interface {
	Resolve(ctx context.Context, kind models.Kind, identifier string) (*models.ResolvedResource, error)
}

// Operator applies single-user enrollment changes.
// *client.Adapter implements it.
type Operator interface {
	Enroll(ctx context.Context, kind models.Kind, resourceID, userID string, opts models.EnrollmentOptions) error
	Unenroll(ctx context.Context, kind models.Kind, resourceID, userID string) error
}

var (
	_ Resolver = (*resolver.Resolver)(nil)
	_ Operator = (*client.Adapter)(nil)
)
