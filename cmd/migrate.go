package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Normalize stored tasks",
	Long: "Rewrites tasks stored by older clients: legacy status spellings become " +
		"canonical, missing priorities become medium and completed is made to agree with status.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.close()

		changed, err := st.tasks.NormalizeLegacy(ctx)
		if err != nil {
			return err
		}

		logger.Info("task normalization finished", slog.Int64("changed", changed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
