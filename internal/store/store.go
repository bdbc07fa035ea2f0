// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/bigramfilter/internal/bigram"
	"github.com/verte-zerg/bigramfilter/internal/charset"
	"github.com/verte-zerg/bigramfilter/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrModelNotFound is returned when no model has the requested name.
var ErrModelNotFound = errors.New("model not found")

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Store wraps SQLite access for models and run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS models (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			charset TEXT NOT NULL,
			total INTEGER NOT NULL,
			has_counts INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS model_cells (
			model_id INTEGER NOT NULL,
			row_idx INTEGER NOT NULL,
			col_idx INTEGER NOT NULL,
			count INTEGER NOT NULL,
			prob REAL NOT NULL,
			PRIMARY KEY (model_id, row_idx, col_idx)
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			source TEXT NOT NULL,
			bucket TEXT NOT NULL,
			policy TEXT NOT NULL,
			lines INTEGER NOT NULL,
			cleartext INTEGER NOT NULL,
			hashed INTEGER NOT NULL,
			duplicates INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveModel stores m under name, replacing any model with the same name.
// Only non-zero cells are written.
func (s *Store) SaveModel(ctx context.Context, name, source string, m *bigram.Model) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("model name is empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM model_cells WHERE model_id IN (SELECT id FROM models WHERE name = ?)`, name); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM models WHERE name = ?`, name); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO models (name, source, charset, total, has_counts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name,
		source,
		m.Charset().String(),
		int64(m.Total()),
		m.HasCounts(),
		formatTime(time.Now()),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO model_cells (model_id, row_idx, col_idx, count, prob) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	n := m.Charset().Len()
	counts := m.Counts()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p := m.Cell(i, j)
			var c uint64
			if counts != nil {
				c = counts[i*n+j]
			}
			if p == 0 && c == 0 {
				continue
			}
			if _, err = stmt.ExecContext(ctx, id, i, j, int64(c), p); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// LoadModel rebuilds the model stored under name.
func (s *Store) LoadModel(ctx context.Context, name string) (*bigram.Model, model.ModelInfo, error) {
	info, hasCounts, err := s.modelInfo(ctx, name)
	if err != nil {
		return nil, model.ModelInfo{}, err
	}
	cs, err := charset.Parse(info.Charset)
	if err != nil {
		return nil, model.ModelInfo{}, fmt.Errorf("stored model %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_idx, col_idx, count, prob FROM model_cells WHERE model_id = ?`, info.ID)
	if err != nil {
		return nil, model.ModelInfo{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	n := cs.Len()
	counts := make([]uint64, n*n)
	probs := make([]float64, n*n)
	for rows.Next() {
		var i, j int
		var c int64
		var p float64
		if err := rows.Scan(&i, &j, &c, &p); err != nil {
			return nil, model.ModelInfo{}, err
		}
		if i < 0 || i >= n || j < 0 || j >= n {
			return nil, model.ModelInfo{}, fmt.Errorf("stored model %q: cell (%d,%d) outside charset", name, i, j)
		}
		counts[i*n+j] = uint64(c)
		probs[i*n+j] = p
	}
	if err := rows.Err(); err != nil {
		return nil, model.ModelInfo{}, err
	}

	var m *bigram.Model
	if hasCounts {
		m, err = bigram.FromCounts(cs, counts)
	} else {
		m, err = bigram.FromProbabilities(cs, probs)
	}
	if err != nil {
		return nil, model.ModelInfo{}, err
	}
	return m, info, nil
}

func (s *Store) modelInfo(ctx context.Context, name string) (model.ModelInfo, bool, error) {
	var info model.ModelInfo
	var total int64
	var hasCounts bool
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, source, charset, total, has_counts, created_at FROM models WHERE name = ?`, name).
		Scan(&info.ID, &info.Name, &info.Source, &info.Charset, &total, &hasCounts, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ModelInfo{}, false, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	if err != nil {
		return model.ModelInfo{}, false, err
	}
	info.Total = uint64(total)
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.ModelInfo{}, false, err
	}
	info.CreatedAt = parsed
	return info, hasCounts, nil
}

// ListModels returns stored models ordered by name.
func (s *Store) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source, charset, total, created_at FROM models ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ModelInfo
	for rows.Next() {
		var info model.ModelInfo
		var total int64
		var createdAt string
		if err := rows.Scan(&info.ID, &info.Name, &info.Source, &info.Charset, &total, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		info.Total = uint64(total)
		info.CreatedAt = parsed
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteModel removes the model stored under name.
func (s *Store) DeleteModel(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM model_cells WHERE model_id IN (SELECT id FROM models WHERE name = ?)`, name); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM models WHERE name = ?`, name)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = fmt.Errorf("%w: %s", ErrModelNotFound, name)
		return err
	}
	err = tx.Commit()
	return err
}

// InsertRun stores a completed filter run.
func (s *Store) InsertRun(ctx context.Context, run model.RunStats) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, ended_at, source, bucket, policy, lines, cleartext, hashed, duplicates, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		formatTime(run.StartedAt),
		formatTime(run.EndedAt),
		run.Source,
		run.Bucket.String(),
		run.Policy,
		run.Lines,
		run.Cleartext,
		run.Hashed,
		run.Duplicates,
		run.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs in chronological order.
// A non-positive limit returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunAggregate, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ended_at, source, bucket, policy, lines, cleartext, hashed, duplicates, duration_ms
		 FROM (SELECT * FROM runs ORDER BY ended_at DESC, id DESC LIMIT ?)
		 ORDER BY ended_at ASC, id ASC`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunAggregate
	for rows.Next() {
		var agg model.RunAggregate
		var endedAt string
		if err := rows.Scan(&agg.RunID, &endedAt, &agg.Source, &agg.Bucket, &agg.Policy,
			&agg.Lines, &agg.Cleartext, &agg.Hashed, &agg.Duplicates, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		runs = append(runs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
