package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/lehigh-university-libraries/lotcataloger/internal/config"
	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
)

// ErrNotFound is returned when the catalog table does not exist
var ErrNotFound = errors.New("catalog table not found")

// Columns is the fixed header of the catalog table
var Columns = []string{
	"Lot Number",
	"Image Filenames",
	"Public URLs",
	"Base Caption",
	"Refined Text",
	"Enhanced Description",
}

// Store persists catalog entries and hands out lot numbers
type Store interface {
	// NextLotNumber returns the current lot counter and advances it
	NextLotNumber(ctx context.Context) (int, error)
	// Append adds entries after the existing rows
	Append(ctx context.Context, entries []models.CatalogEntry) error
	// Release rewinds the counter to first when first..last were the most
	// recently assigned numbers; otherwise it leaves the counter alone
	Release(ctx context.Context, first, last int) error
	// Entries reads every persisted row
	Entries(ctx context.Context) ([]models.CatalogEntry, error)
	// WriteCSV writes the table with its header to w
	WriteCSV(ctx context.Context, w io.Writer) error
	Close() error
}

// Open returns the store selected by cfg.CatalogBackend
func Open(cfg *config.Config) (Store, error) {
	switch cfg.CatalogBackend {
	case config.BackendCSV, "":
		return NewCSVStore(cfg.CatalogPath)
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.CatalogPath)
	default:
		return nil, fmt.Errorf("unsupported catalog backend: %s", cfg.CatalogBackend)
	}
}

func entryRecord(e models.CatalogEntry) []string {
	return []string{
		strconv.Itoa(e.LotNumber),
		e.ImageFilenames,
		e.PublicURLs,
		e.BaseCaption,
		e.RefinedText,
		e.EnhancedDescription,
	}
}

func writeRecords(w io.Writer, header bool, entries []models.CatalogEntry) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(Columns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, e := range entries {
		if err := cw.Write(entryRecord(e)); err != nil {
			return fmt.Errorf("failed to write lot %d: %w", e.LotNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
