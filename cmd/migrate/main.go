package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"jeopardy-trainer-go/internal/db"
	"jeopardy-trainer-go/internal/migrations"
)

// migrate applies embedded schema migrations, or lists the pending ones with -status.
func main() {
	status := flag.Bool("status", false, "list pending migrations without applying them")
	flag.Parse()

	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if err := run(logger, *status); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, status bool) error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	database, err := db.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer database.Close()

	if status {
		pending, err := migrations.Pending(ctx, database)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("schema is up to date")
		}
		for _, name := range pending {
			fmt.Println(name)
		}
		return nil
	}

	applied, err := migrations.Apply(ctx, database, logger)
	if err != nil {
		return fmt.Errorf("applied %d before failure: %w", applied, err)
	}
	logger.Info("migrations complete", "applied", applied)
	return nil
}
