package models

// MatchTier records which resolution strategy produced a ResolvedResource.
// Lower values are more confident.
type MatchTier int

const (
	// TierDirect is a get-by-id hit for a numeric identifier.
	TierDirect MatchTier = iota
	// TierExact is a case-insensitive equality on id, display name or identity field.
	TierExact
	// TierCode is a case-insensitive equality on the short code field.
	TierCode
	// TierPrefix is a display name starting with the identifier.
	TierPrefix
	// TierContains is a display name containing the identifier.
	TierContains
	// TierUnconfirmed is the first candidate when no other tier matched.
	TierUnconfirmed
)

// String returns the tier name.
func (t MatchTier) String() string {
	switch t {
	case TierDirect:
		return "direct"
	case TierExact:
		return "exact"
	case TierCode:
		return "code"
	case TierPrefix:
		return "prefix"
	case TierContains:
		return "contains"
	case TierUnconfirmed:
		return "unconfirmed"
	}
	return "unknown"
}

// ResolvedResource is a platform resource matched from a free-text identifier.
type ResolvedResource struct {
	ID          string
	DisplayName string
	Kind        Kind
	Tier        MatchTier
	Record      Record // raw record, for pass-through fields
}

// Ambiguous reports whether the match came from the contains tier.
func (r *ResolvedResource) Ambiguous() bool {
	return r.Tier == TierContains
}

// Unconfirmed reports whether the match is a last-resort guess.
func (r *ResolvedResource) Unconfirmed() bool {
	return r.Tier == TierUnconfirmed
}

// NewResolvedResource builds a ResolvedResource from a raw record.
func NewResolvedResource(kind Kind, rec Record, tier MatchTier) *ResolvedResource {
	return &ResolvedResource{
		ID:          rec.ID(kind),
		DisplayName: rec.DisplayName(kind),
		Kind:        kind,
		Tier:        tier,
		Record:      rec,
	}
}
