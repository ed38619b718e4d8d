// Package resolver turns human-supplied identifiers into platform resources.
//
// A numeric identifier is looked up by id first and trusted when found. Any
// other identifier is searched, falling back to an unfiltered scan when the
// search yields nothing, and the candidates are ranked through fixed tiers:
// exact, code, prefix, contains, and finally the first candidate as an
// unconfirmed guess. The tier is reported on the result so callers can refuse
// weak matches.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vaintrub/docebo-go/client"
	"github.com/vaintrub/docebo-go/internal/metrics"
	"github.com/vaintrub/docebo-go/models"
)

// Source is the subset of the platform client the resolver reads from.
// *client.Adapter implements it.
type Source interface {
	Get(ctx context.Context, kind models.Kind, id string) (models.Record, error)
	Search(ctx context.Context, kind models.Kind, text string, pageSize int) ([]models.Record, error)
}

var _ Source = (*client.Adapter)(nil)

// Resolver resolves identifiers against a Source. It is safe for concurrent use.
type Resolver struct {
	src            Source
	logger         *slog.Logger
	metrics        *metrics.Collector
	searchPageSize int
}

// New creates a Resolver reading from src.
func New(src Source, opts ...Option) (*Resolver, error) {
	if src == nil {
		return nil, &client.ValidationError{Field: "source", Message: "cannot be nil"}
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

	return &Resolver{
		src:            src,
		logger:         logger,
		metrics:        m,
		searchPageSize: o.searchPageSize,
	}, nil
}

// Resolve returns the single resource of kind that identifier designates.
// It fails with *NotFoundError when no candidate exists. Gateway failures
// other than a rejected id lookup or rejected search are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, kind models.Kind, identifier string) (*models.ResolvedResource, error) {
	if !kind.Valid() {
		return nil, &client.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown resource kind %q", kind)}
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, &client.ValidationError{Field: "identifier", Message: "cannot be empty"}
	}

	if isNumeric(identifier) {
		rec, err := r.direct(ctx, kind, identifier)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return r.resolved(ctx, kind, identifier, rec, models.TierDirect), nil
		}
	}

	candidates, err := r.candidates(ctx, kind, identifier)
	if err != nil {
		return nil, err
	}

	rec, tier, ok := pick(kind, candidates, identifier)
	if !ok {
		r.metrics.Resolution(string(kind), "not_found")
		r.logger.DebugContext(ctx, "no candidates",
			slog.String("kind", string(kind)),
			slog.String("identifier", identifier))
		return nil, &NotFoundError{Kind: kind, Identifier: identifier}
	}
	return r.resolved(ctx, kind, identifier, rec, tier), nil
}

// direct looks identifier up by id. A nil record with a nil error means the
// lookup found nothing and resolution should continue with search.
func (r *Resolver) direct(ctx context.Context, kind models.Kind, id string) (models.Record, error) {
	rec, err := r.src.Get(ctx, kind, id)
	switch {
	case err == nil:
		if len(rec) == 0 {
			return nil, nil
		}
		return rec, nil
	case errors.Is(err, client.ErrNotFound), errors.Is(err, client.ErrBadRequest):
		r.logger.DebugContext(ctx, "direct lookup missed, searching",
			slog.String("kind", string(kind)),
			slog.String("id", id),
			slog.Any("error", err))
		return nil, nil
	default:
		return nil, err
	}
}

// candidates runs the text search and, when it yields nothing or is
// rejected, the unfiltered scan with client-side filtering.
func (r *Resolver) candidates(ctx context.Context, kind models.Kind, identifier string) ([]models.Record, error) {
	recs, err := r.src.Search(ctx, kind, identifier, r.searchPageSize)
	switch {
	case err == nil && len(recs) > 0:
		return recs, nil
	case err == nil:
		r.logger.DebugContext(ctx, "search returned nothing, scanning",
			slog.String("kind", string(kind)),
			slog.String("identifier", identifier))
	case errors.Is(err, client.ErrBadRequest), errors.Is(err, client.ErrUnprocessableEntity):
		r.logger.DebugContext(ctx, "search rejected, scanning",
			slog.String("kind", string(kind)),
			slog.Any("error", err))
	default:
		return nil, err
	}

	all, err := r.src.Search(ctx, kind, "", scanPageSize)
	if err != nil {
		return nil, err
	}
	return filterScan(kind, all, identifier), nil
}

func (r *Resolver) resolved(ctx context.Context, kind models.Kind, identifier string, rec models.Record, tier models.MatchTier) *models.ResolvedResource {
	res := models.NewResolvedResource(kind, rec, tier)
	r.metrics.Resolution(string(kind), tier.String())

	attrs := []any{
		slog.String("kind", string(kind)),
		slog.String("identifier", identifier),
		slog.String("id", res.ID),
		slog.String("name", res.DisplayName),
		slog.String("tier", tier.String()),
	}
	switch tier {
	case models.TierContains:
		r.logger.WarnContext(ctx, "ambiguous match", attrs...)
	case models.TierUnconfirmed:
		r.logger.WarnContext(ctx, "unconfirmed match", attrs...)
	default:
		r.logger.DebugContext(ctx, "resolved", attrs...)
	}
	return res
}
