package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	config "task-manager.com/task-manager/internal/configs"
	repository "task-manager.com/task-manager/internal/repositories"
)

type stores struct {
	tasks repository.TaskStore
	users repository.UserStore
	close func()
}

// bootstrap loads .env and the config and builds the process logger.
func bootstrap() (config.Config, *slog.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug(".env file not found, using environment variables")
	}
	return cfg, logger, nil
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	if cfg.StoreDriver == config.StoreMongo {
		client, err := config.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)

		tasks := repository.NewMongoTaskRepository(db)
		users := repository.NewMongoUserRepository(db)
		if err := tasks.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}

		return &stores{
			tasks: tasks,
			users: users,
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil
	}

	db, err := config.NewSQLite(cfg.DatabaseDSN, config.GormLogLevel(cfg.LogLevel))
	if err != nil {
		return nil, err
	}
	return &stores{
		tasks: repository.NewTaskRepository(db),
		users: repository.NewUserRepository(db),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}
