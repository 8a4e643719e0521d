package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/lotcataloger/internal/catalog"
	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatYAML    = "yaml"
)

// Info is the header section of a YAML export
type Info struct {
	Source     string `yaml:"source"`
	ExportedAt string `yaml:"exported_at"`
	Count      int    `yaml:"count"`
}

// Document is the full YAML export
type Document struct {
	Info    Info                  `yaml:"info"`
	Entries []models.CatalogEntry `yaml:"entries"`
}

// FormatFromPath picks an export format from the output file extension
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		return FormatParquet, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s (supported: .csv, .parquet, .yaml)", ext)
	}
}

// Write exports every entry of store to path in the given format
func Write(ctx context.Context, store catalog.Store, format, path, source string) (int, error) {
	if format == FormatCSV {
		f, err := os.Create(path)
		if err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		if err := store.WriteCSV(ctx, f); err != nil {
			return 0, err
		}
		entries, err := store.Entries(ctx)
		if err != nil {
			return 0, err
		}
		return len(entries), f.Close()
	}

	entries, err := store.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog: %w", err)
	}

	switch format {
	case FormatParquet:
		err = WriteParquet(path, entries)
	case FormatYAML:
		err = WriteYAML(path, source, entries)
	default:
		err = fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return 0, err
	}

	slog.Info("Catalog exported", "format", format, "path", path, "entries", len(entries))
	return len(entries), nil
}

// WriteParquet writes entries as a Parquet file
func WriteParquet(path string, entries []models.CatalogEntry) error {
	if err := parquet.WriteFile(path, entries); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}

// WriteYAML writes entries with an info header
func WriteYAML(path, source string, entries []models.CatalogEntry) error {
	if entries == nil {
		entries = []models.CatalogEntry{}
	}
	doc := Document{
		Info: Info{
			Source:     source,
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
			Count:      len(entries),
		},
		Entries: entries,
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}
