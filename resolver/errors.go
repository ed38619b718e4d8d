package resolver

import (
	"errors"
	"fmt"

	"github.com/vaintrub/docebo-go/models"
)

// ErrNotFound indicates no candidate matched the identifier.
var ErrNotFound = errors.New("no matching resource")

// NotFoundError reports an identifier that matched no platform resource.
type NotFoundError struct {
	Kind       models.Kind
	Identifier string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind.Label(), e.Identifier)
}

// Is implements errors.Is() for comparing with ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
