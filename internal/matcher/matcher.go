// Package matcher ranks catalog items against a target name by fuzzy
// similarity. It is the decision input for the import reconciliation flow:
// an exact (case-insensitive) name match short-circuits everything, while
// threshold-and-rank candidates are surfaced for a user decision.
package matcher

import (
	"sort"
	"strings"

	"stocklist-reconciliation-service/internal/models"
	"stocklist-reconciliation-service/internal/normalize"
)

// Candidate pairs a catalog item with its similarity score against the
// target name.
type Candidate struct {
	Item  *models.Item
	Score float64
}

// FindExact returns the first catalog item whose raw name equals the
// target under case-insensitive comparison, or nil. An exact match is
// definitive: the reconciliation flow applies it without pausing for a
// decision, bypassing threshold-based ambiguity entirely.
func FindExact(target string, catalog []*models.Item) *models.Item {
	for _, item := range catalog {
		if strings.EqualFold(item.Name, target) {
			return item
		}
	}
	return nil
}

// FindCandidates scores every catalog item against the target name and
// returns those at or above the configured threshold, sorted descending
// by score. Entries with equal score keep their catalog relative order.
func FindCandidates(target string, catalog []*models.Item, cfg *Config) []Candidate {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var candidates []Candidate
	for _, item := range catalog {
		score := normalize.Similarity(target, item.Name)
		if score >= cfg.SimilarityThreshold {
			candidates = append(candidates, Candidate{Item: item, Score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if cfg.MaxCandidates > 0 && len(candidates) > cfg.MaxCandidates {
		candidates = candidates[:cfg.MaxCandidates]
	}

	return candidates
}

// Items extracts the ranked items from a candidate list.
func Items(candidates []Candidate) []*models.Item {
	items := make([]*models.Item, len(candidates))
	for i, c := range candidates {
		items[i] = c.Item
	}
	return items
}
