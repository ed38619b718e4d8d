// Package docebo provides a Go SDK for the Docebo LMS API with identifier
// resolution and bulk enrollment on top.
//
// Basic usage:
//
//	import docebo "github.com/vaintrub/docebo-go"
//
//	c, err := docebo.NewClient(domain, docebo.Credentials{
//	    ClientID: id, ClientSecret: secret, Username: user, Password: pass,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r, _ := docebo.NewResolver(c)
//	plan, err := r.Resolve(ctx, docebo.KindLearningPlan, "Associate Memory Network")
//
//	o, _ := docebo.NewOrchestrator(c)
//	res, err := o.Run(ctx, docebo.KindCourse, "Excel", emails, docebo.OpEnroll, docebo.EnrollmentOptions{})
//	fmt.Println(res.Summary())
package docebo

import (
	"net/http"
	"time"

	"github.com/vaintrub/docebo-go/bulk"
	"github.com/vaintrub/docebo-go/client"
	"github.com/vaintrub/docebo-go/models"
	"github.com/vaintrub/docebo-go/resolver"
)

// Re-export client types for convenient access
type (
	// Client defines the interface for interacting with the platform API.
	Client = client.Client

	// Adapter is the concrete Client.
	Adapter = client.Adapter

	// Credentials are the long-lived secrets exchanged for bearer tokens.
	Credentials = client.Credentials

	// APIError represents a non-2xx response from the platform API.
	APIError = client.APIError

	// ProtocolError represents a success response that is not valid JSON.
	ProtocolError = client.ProtocolError

	// AuthenticationError represents a rejected credential exchange.
	AuthenticationError = client.AuthenticationError

	// ValidationError represents a client-side validation error.
	ValidationError = client.ValidationError

	// Option configures the client.
	Option = client.Option
)

// Re-export model types for convenient access
type (
	// Kind identifies users, courses and learning plans.
	Kind = models.Kind
	// Record is a loosely typed platform record.
	Record = models.Record
	// ResolvedResource is a resource matched from a free-text identifier.
	ResolvedResource = models.ResolvedResource
	// MatchTier records how a ResolvedResource was matched.
	MatchTier = models.MatchTier

	// User is a typed view over a user record.
	User = models.User
	// Course is a typed view over a course record.
	Course = models.Course
	// LearningPlan is a typed view over a learning plan record.
	LearningPlan = models.LearningPlan

	// EnrollmentOptions carries optional enrollment fields.
	EnrollmentOptions = models.EnrollmentOptions
	// EnrollmentLevel is learner, tutor or instructor.
	EnrollmentLevel = models.EnrollmentLevel
	// AssignmentType classifies how an enrollment was assigned.
	AssignmentType = models.AssignmentType
)

// Re-export resolver and bulk types
type (
	// Resolver turns identifiers into platform resources.
	Resolver = resolver.Resolver
	// NotFoundError reports an identifier with no matching resource.
	NotFoundError = resolver.NotFoundError

	// Orchestrator runs bulk enrollment changes.
	Orchestrator = bulk.Orchestrator
	// Operation is enroll or unenroll.
	Operation = bulk.Operation
	// BulkResult aggregates a bulk run.
	BulkResult = bulk.Result
	// BulkOutcome is the outcome of one requested user.
	BulkOutcome = bulk.Outcome
)

// Resource kinds.
const (
	KindUser         = models.KindUser
	KindCourse       = models.KindCourse
	KindLearningPlan = models.KindLearningPlan
)

// Bulk operations.
const (
	OpEnroll   = bulk.OpEnroll
	OpUnenroll = bulk.OpUnenroll
)

// Re-export sentinel errors
var (
	// ErrBadRequest indicates a 400 Bad Request response.
	ErrBadRequest = client.ErrBadRequest
	// ErrUnauthorized indicates a 401 Unauthorized response.
	ErrUnauthorized = client.ErrUnauthorized
	// ErrForbidden indicates a 403 Forbidden response.
	ErrForbidden = client.ErrForbidden
	// ErrNotFound indicates a 404 Not Found response.
	ErrNotFound = client.ErrNotFound
	// ErrConflict indicates a 409 Conflict response.
	ErrConflict = client.ErrConflict
	// ErrUnprocessableEntity indicates a 422 Unprocessable Entity response.
	ErrUnprocessableEntity = client.ErrUnprocessableEntity
	// ErrRateLimited indicates a 429 Too Many Requests response.
	ErrRateLimited = client.ErrRateLimited
	// ErrServerError indicates a 5xx server error response.
	ErrServerError = client.ErrServerError
	// ErrTimeout indicates a call that exceeded its timeout.
	ErrTimeout = client.ErrTimeout
	// ErrProtocol indicates a success response that could not be decoded.
	ErrProtocol = client.ErrProtocol
	// ErrAuthenticationFailed indicates the credential exchange was rejected.
	ErrAuthenticationFailed = client.ErrAuthenticationFailed
	// ErrEnrollmentRejected indicates the platform refused an enrollment change.
	ErrEnrollmentRejected = client.ErrEnrollmentRejected
	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = client.ErrInvalidInput
	// ErrResourceNotFound indicates an identifier matched no resource.
	ErrResourceNotFound = resolver.ErrNotFound
)

// NewClient creates a new platform client.
//
// Parameters:
//   - domain: the platform domain (e.g., "acme.docebosaas.com" or a full URL)
//   - creds: OAuth2 client and account credentials
//   - opts: Optional configuration options
//
// Returns an error if required parameters are missing.
func NewClient(domain string, creds Credentials, opts ...Option) (*Adapter, error) {
	return client.New(domain, creds, opts...)
}

// NewResolver creates a Resolver reading from c.
func NewResolver(c *Adapter, opts ...resolver.Option) (*Resolver, error) {
	return resolver.New(c, opts...)
}

// NewOrchestrator creates an Orchestrator that resolves and enrolls through c.
func NewOrchestrator(c *Adapter, opts ...bulk.Option) (*Orchestrator, error) {
	res, err := resolver.New(c)
	if err != nil {
		return nil, err
	}
	return bulk.New(res, c, opts...)
}

// WithTimeout sets the HTTP client timeout.
// Default: 60s
func WithTimeout(d time.Duration) Option {
	return client.WithTimeout(d)
}

// WithCallTimeout bounds each attempt of a platform call.
// Default: 30s
func WithCallTimeout(d time.Duration) Option {
	return client.WithCallTimeout(d)
}

// WithHTTPClient sets a custom HTTP client.
// When set, this overrides the timeout options.
func WithHTTPClient(c *http.Client) Option {
	return client.WithHTTPClient(c)
}

// WithScope sets the OAuth2 scope for token requests.
// Default: api
func WithScope(scope string) Option {
	return client.WithScope(scope)
}
