package host

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/afsarctg/minerdiag/core"
)

// DataStats holds record counts from the miner's storage, one count
// per data source plus the database file size.
type DataStats struct {
	Reddit int64   `json:"reddit"`
	X      int64   `json:"x"`
	Total  int64   `json:"total"`
	SizeMB float64 `json:"size_mb"`
}

// Data source discriminators in the miner's DataEntity table.
const (
	sourceX      = 1
	sourceReddit = 2
)

// DataStore reads aggregate counts from the miner's SQLite storage
// file. The database is opened read-only per call; the store holds no
// connection between calls.
type DataStore struct {
	path string
	wait time.Duration
}

// NewDataStore builds a store over the given SQLite file path.
func NewDataStore(path string, wait time.Duration) *DataStore {
	return &DataStore{path: path, wait: wait}
}

// Stats returns per-source record counts and the database size.
func (s *DataStore) Stats(ctx context.Context) (DataStats, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return DataStats{}, core.NewCollabError(core.ErrorConfigurationMissing,
			fmt.Errorf("miner database not found: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, s.wait)
	defer cancel()

	db, err := sql.Open("sqlite", "file:"+s.path+"?mode=ro")
	if err != nil {
		return DataStats{}, core.NewCollabError(core.ErrorCollaboratorUnavailable, err)
	}
	defer db.Close()

	var stats DataStats
	queries := []struct {
		dest  *int64
		query string
		args  []any
	}{
		{&stats.Reddit, "SELECT COUNT(*) FROM DataEntity WHERE source = ?", []any{sourceReddit}},
		{&stats.X, "SELECT COUNT(*) FROM DataEntity WHERE source = ?", []any{sourceX}},
		{&stats.Total, "SELECT COUNT(*) FROM DataEntity", nil},
	}
	for _, q := range queries {
		if err := db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dest); err != nil {
			return DataStats{}, core.NewCollabError(core.ErrorCollaboratorUnavailable,
				fmt.Errorf("count query failed: %w", err))
		}
	}

	stats.SizeMB = math.Round(float64(info.Size())/1024/1024*10) / 10
	return stats, nil
}
