package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/douscan/douscan/internal/deliver"
	"github.com/douscan/douscan/internal/notify"
	"github.com/douscan/douscan/internal/store"
	"github.com/douscan/douscan/internal/vacancy"
)

func newSendCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Deliver unsent vacancies to the Telegram channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			sender, err := notify.NewTelegram(notify.TelegramConfig{
				Token:       cfg.Telegram.Token,
				ChatID:      cfg.Telegram.ChatID,
				APIBase:     cfg.Telegram.APIBase,
				MaxAttempts: cfg.Telegram.MaxAttempts,
				Timeout:     cfg.SendTimeout(),
			}, logger)
			if err != nil {
				return err
			}

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

			if limit <= 0 {
				limit = cfg.Telegram.SendLimit
			}

			d := deliver.New(st, sender, vacancy.SystemClock{}, logger)
			sent, err := d.Run(ctx, deliver.Config{
				Limit: limit,
				Delay: cfg.SendDelay(),
			})
			if err != nil {
				return err
			}
			logger.Info("delivery report", zap.Int("sent", sent))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0,
		"max messages per run; 0 uses the config default")

	return cmd
}
