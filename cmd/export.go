package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/douscan/douscan/internal/store"
)

func newExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all stored vacancies as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			st, err := store.New(ctx, store.Config{
				DSN:      cfg.DB.DSN,
				MaxConns: int32(cfg.DB.MaxConns),
				MinConns: int32(cfg.DB.MinConns),
			})
			if err != nil {
				return err
			}
			defer st.Close()

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}

			n, err := st.ExportCSV(ctx, out)
			if err != nil {
				return err
			}
			logger.Info("export finished", zap.Int("rows", n), zap.String("out", outPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "output file; empty writes to stdout")

	return cmd
}
