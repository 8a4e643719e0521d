package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the catalog in SQLite.
// Lot numbers come from a counter row that is advanced inside a transaction,
// so the next number survives restarts without rescanning the table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens or creates the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("Catalog opened", "backend", "sqlite", "path", path)
	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS catalog_entries (
		lot_number INTEGER PRIMARY KEY,
		image_filenames TEXT NOT NULL,
		public_urls TEXT NOT NULL,
		base_caption TEXT NOT NULL,
		refined_text TEXT NOT NULL,
		enhanced_description TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create catalog_entries table: %w", err)
	}

	counterQuery := `
	CREATE TABLE IF NOT EXISTS lot_counter (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_lot INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(counterQuery); err != nil {
		return fmt.Errorf("failed to create lot_counter table: %w", err)
	}

	// Seed from existing rows the first time only.
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO lot_counter (id, next_lot)
		SELECT 1, COALESCE(MAX(lot_number), 0) + 1 FROM catalog_entries
	`)
	if err != nil {
		return fmt.Errorf("failed to seed lot counter: %w", err)
	}

	return nil
}

// NextLotNumber returns the current lot counter and advances it in one transaction
func (s *SQLiteStore) NextLotNumber(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx, "SELECT next_lot FROM lot_counter WHERE id = 1").Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to read lot counter: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE lot_counter SET next_lot = ? WHERE id = 1", next+1); err != nil {
		return 0, fmt.Errorf("failed to advance lot counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit lot counter: %w", err)
	}

	return next, nil
}

// Release rewinds the counter row when nothing was assigned after last
func (s *SQLiteStore) Release(ctx context.Context, first, last int) error {
	if first > last {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "UPDATE lot_counter SET next_lot = ? WHERE id = 1 AND next_lot = ?", first, last+1); err != nil {
		return fmt.Errorf("failed to release lot numbers: %w", err)
	}
	return nil
}

// Append inserts entries in a single transaction
func (s *SQLiteStore) Append(ctx context.Context, entries []models.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_entries
			(lot_number, image_filenames, public_urls, base_caption, refined_text, enhanced_description)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.LotNumber, e.ImageFilenames, e.PublicURLs, e.BaseCaption, e.RefinedText, e.EnhancedDescription); err != nil {
			return fmt.Errorf("failed to insert lot %d: %w", e.LotNumber, err)
		}
	}

	return tx.Commit()
}

// Entries returns every row ordered by lot number
func (s *SQLiteStore) Entries(ctx context.Context) ([]models.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT lot_number, image_filenames, public_urls, base_caption, refined_text, enhanced_description
		FROM catalog_entries ORDER BY lot_number
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var entries []models.CatalogEntry
	for rows.Next() {
		var e models.CatalogEntry
		if err := rows.Scan(&e.LotNumber, &e.ImageFilenames, &e.PublicURLs, &e.BaseCaption, &e.RefinedText, &e.EnhancedDescription); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// WriteCSV renders the table as CSV
func (s *SQLiteStore) WriteCSV(ctx context.Context, w io.Writer) error {
	entries, err := s.Entries(ctx)
	if err != nil {
		return err
	}
	return writeRecords(w, true, entries)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
