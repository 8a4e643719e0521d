package cmd

import (
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/lotcataloger/internal/cataloging"
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Describe every lot in the upload directory and append to the catalog",
		Example: `  # Generate with the configured provider
  lotcataloger generate

  # One row per image with a local model
  lotcataloger generate --provider ollama --mode image --uploads ./photos`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			svc, store, err := newService(cfg, opts.provider)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			result, err := svc.Generate(cmd.Context())
			if errors.Is(err, cataloging.ErrNoImages) {
				fmt.Fprintf(out, "No images found in %s\n", cfg.UploadDir)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, result.Message)
			fmt.Fprintf(out, "Run:     %s\n", result.RunID)
			fmt.Fprintf(out, "Catalog: %s\n", cfg.CatalogPath)
			for _, e := range result.Entries {
				fmt.Fprintf(out, "  Lot %d: %s\n", e.LotNumber, e.ImageFilenames)
			}
			if len(result.Failures) > 0 {
				fmt.Fprintf(out, "\nFailures (%d):\n", len(result.Failures))
				for _, f := range result.Failures {
					fmt.Fprintf(out, "  [%s] %s: %s\n", f.Stage, f.Item, f.Error)
				}
			}
			return nil
		},
	}

	addGenerationFlags(cmd)
	return cmd
}
