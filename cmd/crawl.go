package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/douscan/douscan/internal/crawl"
	"github.com/douscan/douscan/internal/fetch"
	"github.com/douscan/douscan/internal/store"
	"github.com/douscan/douscan/internal/vacancy"
)

func newCrawlCmd() *cobra.Command {
	var (
		categories []string
		experience string
		maxPages   int
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl listing categories and persist new vacancies",
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

			src := fetch.New(fetch.Config{
				BaseURL:   cfg.Crawler.BaseURL,
				UserAgent: cfg.Crawler.UserAgent,
				Timeout:   cfg.CrawlTimeout(),
			})

			if maxPages == 0 {
				maxPages = cfg.Crawler.MaxPagesDefault
			}

			crawler := crawl.New(src, st, vacancy.SystemClock{}, logger)
			report, err := crawler.Run(ctx, crawl.Config{
				Categories:          categories,
				Experience:          experience,
				MaxPages:            maxPages,
				Delay:               cfg.CrawlDelay(),
				MaxDescriptionChars: cfg.Crawler.MaxDescriptionChars,
				BaseURL:             cfg.Crawler.BaseURL,
			})
			logger.Info("crawl report",
				zap.String("run_id", report.RunID),
				zap.Int("seen", report.Seen),
				zap.Int("added", report.Added),
				zap.Int64("pruned", report.Pruned),
			)
			return err
		},
	}

	cmd.Flags().StringSliceVar(&categories, "categories", []string{"Android"},
		"category labels to crawl")
	cmd.Flags().StringVar(&experience, "experience", "",
		"experience filter label, empty for all")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0,
		"pages per category; 0 uses the config default, negative removes the cap")

	return cmd
}
