package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"task-manager.com/task-manager/internal/auth"
	config "task-manager.com/task-manager/internal/configs"
	httpapi "task-manager.com/task-manager/internal/http"
	"task-manager.com/task-manager/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Normalizes stored tasks, then serves the task API until SIGINT or SIGTERM",
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
		if changed > 0 {
			logger.Info("normalized legacy tasks", slog.Int64("changed", changed))
		}

		denylist, closeDenylist, err := newDenylist(cfg)
		if err != nil {
			return err
		}
		defer closeDenylist()

		tokens := auth.NewJWTManager(auth.JWTConfig{
			Secret: cfg.JWTSecret,
			TTL:    cfg.TokenTTL,
			Issuer: cfg.JWTIssuer,
		})
		verifier := auth.NewVerifier(tokens, denylist)

		handler := httpapi.NewHandler(
			services.NewTaskService(st.tasks),
			services.NewQueryService(st.tasks),
			services.NewAuthService(st.users, auth.NewPasswordHasher(cfg.BcryptCost), tokens, denylist),
		)

		e := httpapi.NewServer(httpapi.ServerConfig{
			RateLimitPerMinute: cfg.RateLimit,
			RateLimitBurst:     cfg.RateLimitBurst,
			AllowOrigins:       cfg.CORSAllowOrigins,
		}, handler, verifier, logger)

		go func() {
			logger.Info("HTTP server listening",
				slog.String("addr", cfg.AppURL),
				slog.String("store", cfg.StoreDriver),
				slog.String("revocation", cfg.RevocationBackend),
			)
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server stopped", slog.Any("error", err))
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown", slog.Any("error", err))
			return err
		}

		logger.Info("HTTP server shut down gracefully")
		return nil
	},
}

func newDenylist(cfg config.Config) (auth.Denylist, func(), error) {
	if cfg.RevocationBackend != config.RevocationRedis {
		return auth.NewMemoryDenylist(), func() {}, nil
	}

	client, err := config.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewRedisDenylist(client, cfg.RedisRevocationPrefix), client.Close, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
