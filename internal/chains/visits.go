package chains

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const visitsSchema = `
CREATE TABLE IF NOT EXISTS visits (
	id TEXT PRIMARY KEY,
	chain TEXT NOT NULL,
	location TEXT NOT NULL,
	visited_at DATETIME NOT NULL,
	UNIQUE(chain, location)
);
CREATE INDEX IF NOT EXISTS idx_visits_chain ON visits(chain);
`

// VisitStore persists visited locations in SQLite.
type VisitStore struct {
	db   *sql.DB
	log  *zap.Logger
	path string
	now  func() time.Time
}

// Visit is one stored visit row.
type Visit struct {
	ID        string
	Chain     string
	Location  string
	VisitedAt time.Time
}

// OpenVisitStore opens, creating if needed, the visit database at path.
func OpenVisitStore(ctx context.Context, path string, log *zap.Logger) (*VisitStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; sqlite serialises writes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, visitsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create visits table: %w", err)
	}
	log.Debug("visit store opened", zap.String("path", path))
	return &VisitStore{db: db, log: log, path: path, now: time.Now}, nil
}

// Visited returns the visited location ids of chain.
func (s *VisitStore) Visited(ctx context.Context, chain string) (Visited, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT location FROM visits WHERE chain = ?`, chain)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	out := make(Visited)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// Visits lists the stored visits of chain, oldest first.
func (s *VisitStore) Visits(ctx context.Context, chain string) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chain, location, visited_at FROM visits WHERE chain = ? ORDER BY visited_at, location`, chain)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var out []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.Chain, &v.Location, &v.VisitedAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Toggle flips the visit of location in chain and returns whether it is now
// visited.
func (s *VisitStore) Toggle(ctx context.Context, chain, location string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin toggle: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM visits WHERE chain = ? AND location = ?`, chain, location)
	if err != nil {
		return false, fmt.Errorf("failed to delete visit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete visit: %w", err)
	}

	visited := n == 0
	if visited {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO visits (id, chain, location, visited_at) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), chain, location, s.now().UTC())
		if err != nil {
			return false, fmt.Errorf("failed to insert visit: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit toggle: %w", err)
	}
	s.log.Debug("visit toggled",
		zap.String("chain", chain),
		zap.String("location", location),
		zap.Bool("visited", visited))
	return visited, nil
}

// Path is the database file.
func (s *VisitStore) Path() string { return s.path }

// Close closes the database.
func (s *VisitStore) Close() error {
	return s.db.Close()
}
