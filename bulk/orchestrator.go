// Package bulk enrolls and unenrolls many users against one course or
// learning plan.
//
// The target is resolved once. Users are then resolved and operated on in
// fixed-size batches: items inside a batch run concurrently, batches run one
// after another with a short pause. Every requested identifier ends up in the
// Result exactly once, either as a success or as a failure with a reason.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vaintrub/docebo-go/client"
	"github.com/vaintrub/docebo-go/internal/metrics"
	"github.com/vaintrub/docebo-go/models"
	"github.com/vaintrub/docebo-go/resolver"
)

// Reasons recorded for items that were never attempted.
const (
	reasonAuthAborted = "not attempted: authentication failed"
	reasonCanceled    = "not attempted: canceled"
)

// Orchestrator runs bulk enrollment changes. It is safe for concurrent use.
type Orchestrator struct {
	resolver         Resolver
	operator         Operator
	batchSize        int
	batchPause       time.Duration
	allowUnconfirmed bool
	logger           *slog.Logger
	metrics          *metrics.Collector
}

// New creates an Orchestrator.
func New(res Resolver, op Operator, opts ...Option) (*Orchestrator, error) {
	if res == nil {
		return nil, &client.ValidationError{Field: "resolver", Message: "cannot be nil"}
	}
	if op == nil {
		return nil, &client.ValidationError{Field: "operator", Message: "cannot be nil"}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	var m *metrics.Collector
	if o.registerer != nil {
		var err error
		if m, err = metrics.New(o.registerer); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return &Orchestrator{
		resolver:         res,
		operator:         op,
		batchSize:        o.batchSize,
		batchPause:       o.batchPause,
		allowUnconfirmed: o.allowUnconfirmed,
		logger:           logger,
		metrics:          m,
	}, nil
}

// Run applies op for every user identifier against the resource of kind
// named by target.
//
// Expected failures (unresolvable target or user, rejected enrollment,
// platform errors) are recorded in the Result and err is nil. Invalid
// arguments return only an error. An authentication failure or a canceled
// context stops the run; the Result is still returned, with the unattempted
// items recorded as failures, together with the error.
//
// When the target does not resolve, every item fails with the same reason:
// "<kind> not found: <target>" for a missing or refused match, or a lookup
// failure such as "course lookup failed (status 500): ..." when the platform
// errors.
//
// Outcomes are listed in input order.
func (o *Orchestrator) Run(ctx context.Context, kind models.Kind, target string, users []string, op Operation, opts models.EnrollmentOptions) (*Result, error) {
	if !op.Valid() {
		return nil, &client.ValidationError{Field: "operation", Message: fmt.Sprintf("unknown operation %q", op)}
	}
	if !kind.Enrollable() {
		return nil, &client.ValidationError{Field: "kind", Message: fmt.Sprintf("cannot %s users on a %s", op, kind.Label())}
	}
	if strings.TrimSpace(target) == "" {
		return nil, &client.ValidationError{Field: "target", Message: "cannot be empty"}
	}
	if op == OpEnroll {
		if err := client.ValidateEnrollmentOptions(opts); err != nil {
			return nil, err
		}
	}

	result := &Result{
		RunID:          uuid.NewString(),
		Operation:      op,
		Kind:           kind,
		TargetQuery:    target,
		TotalRequested: len(users),
	}
	logger := o.logger.With(slog.String("run_id", result.RunID), slog.String("operation", string(op)))
	if len(users) == 0 {
		return result, nil
	}

	outcomes := make([]Outcome, len(users))
	for i, id := range users {
		outcomes[i] = Outcome{Email: id}
	}

	res, err := o.resolveTarget(ctx, kind, target)
	if err != nil {
		reason := targetFailureReason(kind, err)
		logger.WarnContext(ctx, "target not resolved",
			slog.String("kind", string(kind)),
			slog.String("target", target),
			slog.String("reason", reason))
		fail(outcomes, 0, reason)
		o.finish(result, outcomes)
		if errors.Is(err, client.ErrAuthenticationFailed) || ctx.Err() != nil {
			return result, err
		}
		return result, nil
	}
	result.Target = res
	for i := range outcomes {
		outcomes[i].ResourceID = res.ID
	}

	logger.InfoContext(ctx, "bulk run started",
		slog.String("target_id", res.ID),
		slog.String("target_name", res.DisplayName),
		slog.Int("users", len(users)),
		slog.Int("batch_size", o.batchSize))

	var runErr error
	for start := 0; start < len(users); start += o.batchSize {
		if start > 0 && !o.pause(ctx) {
			runErr = ctx.Err()
			fail(outcomes, start, reasonCanceled)
			break
		}
		end := min(start+o.batchSize, len(users))

		if err := o.runBatch(ctx, op, res, outcomes[start:end], opts); err != nil {
			runErr = err
			logger.ErrorContext(ctx, "bulk run aborted", slog.Int("completed", end), slog.Any("error", err))
			reason := reasonAuthAborted
			if !errors.Is(err, client.ErrAuthenticationFailed) {
				reason = reasonCanceled
			}
			fail(outcomes, end, reason)
			break
		}
	}

	o.finish(result, outcomes)
	logger.InfoContext(ctx, "bulk run finished",
		slog.Int("succeeded", len(result.Successes)),
		slog.Int("failed", len(result.Failures)))
	return result, runErr
}

// resolveTarget resolves the shared target and applies the target match policy.
func (o *Orchestrator) resolveTarget(ctx context.Context, kind models.Kind, target string) (*models.ResolvedResource, error) {
	res, err := o.resolver.Resolve(ctx, kind, target)
	if err != nil {
		return nil, err
	}
	if res.Unconfirmed() && !o.allowUnconfirmed {
		return nil, &weakMatchError{kind: kind, identifier: target, match: res}
	}
	return res, nil
}

// runBatch processes one batch concurrently. Each goroutine writes only its
// own slot. The returned error is an authentication failure or cancellation
// that must stop the run; item failures are recorded in the slots.
func (o *Orchestrator) runBatch(ctx context.Context, op Operation, target *models.ResolvedResource, slots []Outcome, opts models.EnrollmentOptions) error {
	var g errgroup.Group
	g.SetLimit(len(slots))
	for i := range slots {
		g.Go(func() error {
			return o.runItem(ctx, op, target, &slots[i], opts)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// runItem resolves one user and applies op. It returns an error only when the
// whole run has to stop.
func (o *Orchestrator) runItem(ctx context.Context, op Operation, target *models.ResolvedResource, out *Outcome, opts models.EnrollmentOptions) error {
	user, err := o.resolver.Resolve(ctx, models.KindUser, out.Email)
	if err == nil && !o.acceptUser(user) {
		err = &weakMatchError{kind: models.KindUser, identifier: out.Email, match: user}
	}
	if err != nil {
		out.Reason = failureReason("user lookup", err)
		return abortError(err)
	}
	out.UserID = user.ID

	switch op {
	case OpEnroll:
		err = o.operator.Enroll(ctx, target.Kind, target.ID, user.ID, opts)
	case OpUnenroll:
		err = o.operator.Unenroll(ctx, target.Kind, target.ID, user.ID)
	}
	if err != nil {
		out.Reason = failureReason(string(op), err)
		o.logger.DebugContext(ctx, "bulk item failed",
			slog.String("user", out.Email),
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return abortError(err)
	}

	out.Succeeded = true
	return nil
}

func (o *Orchestrator) acceptUser(user *models.ResolvedResource) bool {
	if o.allowUnconfirmed {
		return true
	}
	switch user.Tier {
	case models.TierDirect, models.TierExact, models.TierCode:
		return true
	}
	return false
}

// pause waits between batches. It returns false if ctx ends first.
func (o *Orchestrator) pause(ctx context.Context) bool {
	if o.batchPause <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(o.batchPause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (o *Orchestrator) finish(result *Result, outcomes []Outcome) {
	for _, out := range outcomes {
		o.metrics.BulkItem(string(result.Operation), out.Succeeded)
		if out.Succeeded {
			result.Successes = append(result.Successes, out)
		} else {
			result.Failures = append(result.Failures, out)
		}
	}
}

// fail marks every outcome from index from onward as failed with reason.
func fail(outcomes []Outcome, from int, reason string) {
	for i := from; i < len(outcomes); i++ {
		outcomes[i].Succeeded = false
		outcomes[i].Reason = reason
	}
}

// abortError returns err when it must stop the run, nil otherwise.
func abortError(err error) error {
	if errors.Is(err, client.ErrAuthenticationFailed) {
		return err
	}
	return nil
}

// weakMatchError reports a match below the accepted tier.
type weakMatchError struct {
	kind       models.Kind
	identifier string
	match      *models.ResolvedResource
}

func (e *weakMatchError) Error() string {
	return fmt.Sprintf("%s not found: %s (best match %q is only %s)",
		e.kind.Label(), e.identifier, e.match.DisplayName, tierPhrase(e.match.Tier))
}

func targetFailureReason(kind models.Kind, err error) string {
	var weak *weakMatchError
	switch {
	case errors.Is(err, resolver.ErrNotFound), errors.As(err, &weak):
		return err.Error()
	}
	return failureReason(kind.Label()+" lookup", err)
}

// failureReason renders err as a short human-readable reason.
func failureReason(stage string, err error) string {
	var (
		weak   *weakMatchError
		apiErr *client.APIError
	)
	switch {
	case errors.Is(err, resolver.ErrNotFound), errors.As(err, &weak):
		return err.Error()
	case errors.Is(err, client.ErrInvalidInput):
		return fmt.Sprintf("%s failed: invalid input", stage)
	case errors.Is(err, client.ErrAuthenticationFailed):
		return "authentication failed"
	case errors.Is(err, client.ErrEnrollmentRejected):
		return err.Error()
	case errors.Is(err, client.ErrTimeout):
		return fmt.Sprintf("%s timed out", stage)
	case errors.Is(err, client.ErrConflict):
		return fmt.Sprintf("%s failed: already in the requested state", stage)
	case errors.As(err, &apiErr):
		return fmt.Sprintf("%s failed (status %d): %s", stage, apiErr.StatusCode, apiErr.Message)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("%s canceled", stage)
	}
	return fmt.Sprintf("%s failed: %v", stage, err)
}
