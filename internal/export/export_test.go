package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/lotcataloger/internal/catalog"
	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var sample = []models.CatalogEntry{
	{
		LotNumber:           1,
		ImageFilenames:      "1-1.jpg, 1-2.jpg",
		PublicURLs:          "https://example.org/uploads/1-1.jpg, https://example.org/uploads/1-2.jpg",
		BaseCaption:         "Bronze bust",
		RefinedText:         "A bronze bust, 19th century",
		EnhancedDescription: "An exceptional bronze bust",
	},
	{
		LotNumber:           2,
		ImageFilenames:      "2-1.jpg",
		PublicURLs:          "https://example.org/uploads/2-1.jpg",
		BaseCaption:         "Vase, \"famille rose\"",
		RefinedText:         "No refined text generated.",
		EnhancedDescription: "No enhanced description generated.",
	},
}

func seededStore(t *testing.T) catalog.Store {
	t.Helper()
	store, err := catalog.NewCSVStore(filepath.Join(t.TempDir(), "catalog_output.csv"))
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), sample))
	return store
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
		wantErr  bool
	}{
		{"out.parquet", FormatParquet, false},
		{"out.YAML", FormatYAML, false},
		{"out.yml", FormatYAML, false},
		{"out.csv", FormatCSV, false},
		{"out.xlsx", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.parquet")

	n, err := Write(context.Background(), seededStore(t), FormatParquet, path, "catalog_output.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := parquet.ReadFile[models.CatalogEntry](path)
	require.NoError(t, err)
	assert.Equal(t, sample, rows)
}

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")

	n, err := Write(context.Background(), seededStore(t), FormatYAML, path, "catalog_output.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "catalog_output.csv", doc.Info.Source)
	assert.Equal(t, 2, doc.Info.Count)
	assert.NotEmpty(t, doc.Info.ExportedAt)
	assert.Equal(t, sample, doc.Entries)
	assert.Contains(t, string(data), "lot_number: 1")
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copy.csv")

	n, err := Write(context.Background(), seededStore(t), FormatCSV, path, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(catalog.Columns, ","), lines[0])
}

func TestWriteUnknownFormat(t *testing.T) {
	_, err := Write(context.Background(), seededStore(t), "xlsx", filepath.Join(t.TempDir(), "x"), "")
	assert.Error(t, err)
}
