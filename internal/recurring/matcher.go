package recurring

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"budgetry/internal/models"
)

// MatchTier identifies how entries were attributed to an obligation.
type MatchTier string

const (
	TierNone       MatchTier = ""
	TierLinked     MatchTier = "linked"
	TierSourceName MatchTier = "source_name"
	TierFuzzyName  MatchTier = "fuzzy_name"
)

// Heuristic reports whether the tier relies on name matching.
func (t MatchTier) Heuristic() bool {
	return t == TierSourceName || t == TierFuzzyName
}

// Matcher attributes ledger entries to obligations. Tiers are tried in order
// and the first that yields anything wins:
//
//  1. entries whose obligation_id is the obligation's id
//  2. unlinked recurring entries whose folded name equals the obligation's
//  3. unlinked entries whose folded name contains, or is contained in, the
//     obligation's folded name (only when fuzzy matching is enabled)
//
// Tiers 2 and 3 consider candidates in (date, id) order and accept at most
// limit of them; entries already claimed by another obligation are skipped.
type Matcher struct {
	fuzzy bool
}

// NewMatcher returns a Matcher. fuzzy enables tier 3.
func NewMatcher(fuzzy bool) *Matcher {
	return &Matcher{fuzzy: fuzzy}
}

// FuzzyEnabled reports whether tier 3 is active.
func (m *Matcher) FuzzyEnabled() bool {
	return m.fuzzy
}

// Linked returns the entries explicitly linked to ob.
func (m *Matcher) Linked(ob *models.Obligation, entries []models.Transaction) []models.Transaction {
	var out []models.Transaction
	for i := range entries {
		if entries[i].IsLinkedTo(ob.ID) {
			out = append(out, entries[i])
		}
	}
	return out
}

// Match runs the tiers for ob. claimed holds ids of entries that must not be
// reused and may be nil.
func (m *Matcher) Match(ob *models.Obligation, entries []models.Transaction, claimed map[string]bool, limit int) ([]models.Transaction, MatchTier) {
	if linked := m.Linked(ob, entries); len(linked) > 0 {
		return linked, TierLinked
	}
	if limit < 1 {
		limit = 1
	}

	name := foldName(ob.Name)
	if name == "" {
		return nil, TierNone
	}

	candidates := unclaimedUnlinked(entries, claimed)

	var exact []models.Transaction
	for _, e := range candidates {
		if e.Source == models.SourceRecurring && foldName(e.Name) == name {
			exact = append(exact, e)
			if len(exact) == limit {
				break
			}
		}
	}
	if len(exact) > 0 {
		return exact, TierSourceName
	}

	if !m.fuzzy {
		return nil, TierNone
	}

	var fuzzy []models.Transaction
	for _, e := range candidates {
		candidate := foldName(e.Name)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, name) || strings.Contains(name, candidate) {
			fuzzy = append(fuzzy, e)
			if len(fuzzy) == limit {
				break
			}
		}
	}
	if len(fuzzy) > 0 {
		return fuzzy, TierFuzzyName
	}
	return nil, TierNone
}

func unclaimedUnlinked(entries []models.Transaction, claimed map[string]bool) []models.Transaction {
	out := make([]models.Transaction, 0, len(entries))
	for _, e := range entries {
		if e.ObligationID != nil || claimed[e.ID] {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// foldName normalizes a name for case-insensitive comparison.
func foldName(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	return cases.Fold().String(s)
}
