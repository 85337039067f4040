// Package config assembles runtime configuration for the stockctl CLI
// from flag values.
package config

import (
	"stocklist-reconciliation-service/internal/matcher"
	"stocklist-reconciliation-service/internal/parsers"
	"stocklist-reconciliation-service/internal/reconciler"
	"stocklist-reconciliation-service/internal/reporter"
	"stocklist-reconciliation-service/internal/store"
)

// CreateEngineConfig creates the reconciliation engine configuration,
// applying the CLI threshold override when positive.
func CreateEngineConfig(threshold float64) (*reconciler.Config, error) {
	matching := matcher.ImportConfig()
	if threshold > 0 {
		matching.SimilarityThreshold = threshold
	}
	if err := matching.Validate(); err != nil {
		return nil, err
	}

	return &reconciler.Config{
		Matching: matching,
		Parser:   parsers.DefaultParserConfig(),
	}, nil
}

// CreateReportConfig creates the reporter configuration for the given
// output format.
func CreateReportConfig(format string, includeCatalog bool) *reporter.ReportConfig {
	return &reporter.ReportConfig{
		Format:         reporter.OutputFormat(format),
		IncludeCatalog: includeCatalog,
	}
}

// OpenStore opens the catalog store. An empty path selects the in-memory
// backend; anything else is a SQLite database file. The returned closer
// is a no-op for the in-memory backend.
func OpenStore(path string) (store.Store, func() error, error) {
	if path == "" {
		return store.NewMemoryStore(), func() error { return nil }, nil
	}

	sqliteStore, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, err
	}
	return sqliteStore, sqliteStore.Close, nil
}
