package matcher

import "fmt"

// Config controls candidate matching. The threshold is threaded into every
// matcher call rather than shared as package state, so different workflows
// (and tests) can use different cutoffs without cross-talk.
type Config struct {
	// SimilarityThreshold is the minimum similarity score, in [0,1], for a
	// catalog item to be considered a candidate match.
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// MaxCandidates caps how many ranked candidates are returned.
	// Zero means unlimited.
	MaxCandidates int `json:"max_candidates"`
}

// DefaultConfig returns the strict matching configuration used for
// lookups where a near-certain match is wanted.
func DefaultConfig() *Config {
	return &Config{
		SimilarityThreshold: 0.8,
		MaxCandidates:       0,
	}
}

// ImportConfig returns the looser configuration used by the import
// reconciliation workflow, where borderline matches are surfaced to the
// user instead of discarded.
func ImportConfig() *Config {
	return &Config{
		SimilarityThreshold: 0.5,
		MaxCandidates:       0,
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be between 0 and 1, got %f", c.SimilarityThreshold)
	}

	if c.MaxCandidates < 0 {
		return fmt.Errorf("max candidates cannot be negative, got %d", c.MaxCandidates)
	}

	return nil
}

// Clone returns a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
