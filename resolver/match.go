package resolver

import (
	"strings"

	"github.com/vaintrub/docebo-go/models"
)

// tierMatcher reports whether rec matches needle (already lower-cased) at one tier.
type tierMatcher struct {
	tier  models.MatchTier
	match func(kind models.Kind, rec models.Record, needle string) bool
}

// tiers is the strict priority order; the first tier with a matching
// candidate wins, and within a tier the first candidate wins. Codes rank
// below names: an exact name on any candidate beats a code hit on an earlier one.
var tiers = []tierMatcher{
	{tier: models.TierExact, match: matchExact},
	{tier: models.TierCode, match: matchCode},
	{tier: models.TierPrefix, match: matchPrefix},
	{tier: models.TierContains, match: matchContains},
}

func matchExact(kind models.Kind, rec models.Record, needle string) bool {
	if fold(rec.ID(kind)) == needle || fold(rec.DisplayName(kind)) == needle {
		return true
	}
	for _, key := range models.AliasesFor(kind).Identity {
		if v := rec.String(key); v != "" && fold(v) == needle {
			return true
		}
	}
	return false
}

func matchCode(kind models.Kind, rec models.Record, needle string) bool {
	code := rec.Code(kind)
	return code != "" && fold(code) == needle
}

func matchPrefix(kind models.Kind, rec models.Record, needle string) bool {
	return strings.HasPrefix(fold(rec.DisplayName(kind)), needle)
}

func matchContains(kind models.Kind, rec models.Record, needle string) bool {
	return strings.Contains(fold(rec.DisplayName(kind)), needle)
}

// pick applies the tiers to candidates. It returns false only for an empty set.
func pick(kind models.Kind, candidates []models.Record, identifier string) (models.Record, models.MatchTier, bool) {
	if len(candidates) == 0 {
		return nil, 0, false
	}
	needle := fold(identifier)
	for _, t := range tiers {
		for _, rec := range candidates {
			if t.match(kind, rec, needle) {
				return rec, t.tier, true
			}
		}
	}
	return candidates[0], models.TierUnconfirmed, true
}

// filterScan keeps records whose display name or description contains needle.
func filterScan(kind models.Kind, recs []models.Record, identifier string) []models.Record {
	needle := fold(identifier)
	var out []models.Record
	for _, rec := range recs {
		if strings.Contains(fold(rec.DisplayName(kind)), needle) ||
			strings.Contains(fold(rec.Description(kind)), needle) {
			out = append(out, rec)
		}
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
