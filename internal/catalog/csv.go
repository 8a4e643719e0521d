package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
)

// CSVStore keeps the catalog in a single CSV file.
// The lot counter lives in memory and is seeded from the file when the store opens.
type CSVStore struct {
	path string
	mu   sync.Mutex
	next int
}

// NewCSVStore opens the catalog at path, creating it with just the header when missing
func NewCSVStore(path string) (*CSVStore, error) {
	s := &CSVStore{path: path}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.create(); err != nil {
			return nil, err
		}
	}

	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	s.next = nextLotNumber(entries)

	slog.Info("Catalog opened", "backend", "csv", "path", path, "entries", len(entries), "next_lot", s.next)
	return s, nil
}

func (s *CSVStore) create() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}
	defer f.Close()
	return writeRecords(f, true, nil)
}

// NextLotNumber returns the current lot counter and advances it
func (s *CSVStore) NextLotNumber(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.next
	s.next++
	return n, nil
}

// Release rewinds the in-memory counter when nothing was assigned after last
func (s *CSVStore) Release(_ context.Context, first, last int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if first <= last && s.next == last+1 {
		s.next = first
	}
	return nil
}

// Append writes entries after the existing rows without touching them
func (s *CSVStore) Append(ctx context.Context, entries []models.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	header := false
	if info, err := os.Stat(s.path); err != nil || info.Size() == 0 {
		header = true
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open catalog file: %w", err)
	}

	if err := writeRecords(f, header, entries); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to catalog: %w", err)
	}
	return f.Close()
}

// Entries reads every row of the catalog file
func (s *CSVStore) Entries(ctx context.Context) ([]models.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// WriteCSV copies the catalog file to w
func (s *CSVStore) WriteCSV(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to copy catalog: %w", err)
	}
	return nil
}

// Close is a no-op; the file is opened per operation
func (s *CSVStore) Close() error {
	return nil
}

func (s *CSVStore) read() ([]models.CatalogEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var entries []models.CatalogEntry
	for line := 1; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalog at line %d: %w", line, err)
		}
		if line == 1 && len(record) > 0 && strings.TrimSpace(record[0]) == Columns[0] {
			continue
		}

		lot, err := parseLotNumber(record[0])
		if err != nil {
			slog.Warn("Skipping catalog row with invalid lot number", "line", line, "value", record[0], "err", err)
			continue
		}

		for len(record) < len(Columns) {
			record = append(record, "")
		}
		entries = append(entries, models.CatalogEntry{
			LotNumber:           lot,
			ImageFilenames:      record[1],
			PublicURLs:          record[2],
			BaseCaption:         record[3],
			RefinedText:         record[4],
			EnhancedDescription: record[5],
		})
	}

	return entries, nil
}

// parseLotNumber accepts plain integers and integral floats such as "3.0"
func parseLotNumber(v string) (int, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("lot number %q is not a whole number", v)
	}
	return int(f), nil
}

func nextLotNumber(entries []models.CatalogEntry) int {
	if len(entries) == 0 {
		return 1
	}
	highest := entries[0].LotNumber
	for _, e := range entries[1:] {
		highest = max(highest, e.LotNumber)
	}
	return highest + 1
}
