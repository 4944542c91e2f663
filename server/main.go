package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/bsthun/gut"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/flowchart"
	"github.com/meikuraledutech/flowchart/postgres"
)

func main() {
	config, err := LoadConfig()
	if err != nil {
		gut.Fatal("unable to load configuration", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level()}))

	pool, err := pgxpool.New(context.Background(), config.DatabaseURL)
	if err != nil {
		gut.Fatal("unable to connect", err)
	}
	defer pool.Close()

	var store flowchart.Store = postgres.New(pool)

	app := newApp(store, logger)

	logger.Info("listening", "address", config.Listen)
	if err := app.Listen(config.Listen); err != nil {
		gut.Fatal("unable to listen", err)
	}
}
