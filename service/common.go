package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"mingle/app/config"
	"mingle/app/repositories"
	"mingle/app/repositories/postgres"
)

// store is the persistence backend selected by STORE_DRIVER.
type store struct {
	posts repositories.PostRepository
	users repositories.UserRepository
	close func() error
}

// openStore opens the configured store. Postgres is migrated on open.
func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	if cfg.StoreDriver == config.DriverPostgres {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return &store{
			posts: postgres.NewPostRepository(db),
			users: postgres.NewUserRepository(db),
			close: db.Close,
		}, nil
	}

	repo, err := repositories.NewRepository(cfg.BadgerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Badger DB: %w", err)
	}
	return &store{posts: repo.Posts, users: repo.Users, close: repo.Close}, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// confirm asks a yes/no question and reads the answer from stdin.
func confirm(question string) bool {
	fmt.Print(question + " [y/N] ")
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

func loadConfig() (*config.Config, bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, false
	}
	return cfg, true
}
