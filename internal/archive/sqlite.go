// Package archive records evolved genomes in a SQLite database for offline inspection.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/baldhumanity/neat-ff/neat"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
  id         TEXT PRIMARY KEY,
  label      TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS genomes (
  run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  genome_id   INTEGER NOT NULL,
  generation  INTEGER NOT NULL,
  fitness     REAL NOT NULL,
  neurons     INTEGER NOT NULL,
  links       INTEGER NOT NULL,
  dump        TEXT NOT NULL,
  PRIMARY KEY (run_id, genome_id)
);
CREATE INDEX IF NOT EXISTS genomes_generation ON genomes (run_id, generation);
`

// Record is one archived genome.
type Record struct {
	RunID      string
	GenomeID   int
	Generation int
	Fitness    float64
	Neurons    int
	Links      int
	Dump       string // Text dump as written by Genome.WriteText
}

// Store persists genomes in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the archive at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("archive path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps in-memory databases shared between calls.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// NewRun registers a run and returns its id.
func (s *Store) NewRun(ctx context.Context, label string) (string, error) {
	id := uuid.New().String()
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO runs (id, label, created_at) VALUES (?, ?, ?)`,
		id, label, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// SaveGenome stores one evaluated individual of a run.
func (s *Store) SaveGenome(ctx context.Context, runID string, generation int, ind *neat.Individual) error {
	return saveGenome(ctx, s.sqlDB, runID, generation, ind)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveGenome(ctx context.Context, db execer, runID string, generation int, ind *neat.Individual) error {
	if ind == nil || ind.Genome == nil {
		return fmt.Errorf("individual is required")
	}
	g := ind.Genome
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO genomes (run_id, genome_id, generation, fitness, neurons, links, dump)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, g.ID, generation, ind.Fitness, len(g.Neurons), len(g.Links), g.String(),
	)
	if err != nil {
		return fmt.Errorf("save genome %d: %w", g.ID, err)
	}
	return nil
}

// Genome returns one archived genome. The bool is false if it does not exist.
func (s *Store) Genome(ctx context.Context, runID string, genomeID int) (Record, bool, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT run_id, genome_id, generation, fitness, neurons, links, dump
		 FROM genomes WHERE run_id = ? AND genome_id = ?`,
		runID, genomeID,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get genome %d: %w", genomeID, err)
	}
	return rec, true, nil
}

// Best returns the fittest archived genome of a run, earliest generation first on ties.
func (s *Store) Best(ctx context.Context, runID string) (Record, bool, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT run_id, genome_id, generation, fitness, neurons, links, dump
		 FROM genomes WHERE run_id = ?
		 ORDER BY fitness DESC, generation ASC, genome_id ASC LIMIT 1`,
		runID,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get best genome: %w", err)
	}
	return rec, true, nil
}

// Generation lists the genomes of one generation ordered by genome id.
func (s *Store) Generation(ctx context.Context, runID string, generation int) ([]Record, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT run_id, genome_id, generation, fitness, neurons, links, dump
		 FROM genomes WHERE run_id = ? AND generation = ? ORDER BY genome_id`,
		runID, generation,
	)
	if err != nil {
		return nil, fmt.Errorf("list generation %d: %w", generation, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan genome: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generation %d: %w", generation, err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	err := row.Scan(&rec.RunID, &rec.GenomeID, &rec.Generation, &rec.Fitness, &rec.Neurons, &rec.Links, &rec.Dump)
	return rec, err
}

// Recorder returns a reporter that archives every evaluated individual of runID.
func (s *Store) Recorder(runID string) neat.Reporter {
	return &recorder{store: s, runID: runID}
}

type recorder struct {
	store *Store
	runID string
}

// ReportGeneration stores a generation in a single transaction.
func (r *recorder) ReportGeneration(ctx context.Context, stats neat.GenerationStats, individuals []*neat.Individual) error {
	tx, err := r.store.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	for _, ind := range individuals {
		if err := saveGenome(ctx, tx, r.runID, stats.Generation, ind); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit generation %d: %w", stats.Generation, err)
	}
	return nil
}
