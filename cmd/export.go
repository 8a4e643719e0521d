package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/lehigh-university-libraries/lotcataloger/internal/catalog"
	"github.com/lehigh-university-libraries/lotcataloger/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog to Parquet, YAML, or CSV",
		Example: `  # Parquet, format taken from the extension
  lotcataloger export --output catalog.parquet

  # YAML to an explicit format
  lotcataloger export --format yaml --output catalog.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			if format == "" {
				f, err := export.FormatFromPath(output)
				if err != nil {
					return err
				}
				format = f
			}

			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			if filepath.Clean(output) == filepath.Clean(cfg.CatalogPath) {
				return fmt.Errorf("output %s is the catalog itself", output)
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("failed to open catalog: %w", err)
			}
			defer store.Close()

			n, err := export.Write(cmd.Context(), store, format, output, cfg.CatalogPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Export format (parquet, yaml, or csv); defaults to the output extension")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	addPathFlags(cmd)

	return cmd
}
