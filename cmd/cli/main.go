package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/condoway/client-go/internal/client/cli"
	"github.com/condoway/client-go/internal/client/config"
	"github.com/condoway/client-go/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewDefault(slog.LevelInfo)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
