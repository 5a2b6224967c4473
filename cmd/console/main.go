package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/transport/cli"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/app"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := cli.NewRootCommand(cli.Options{
		Connect: connect,
		Serve:   serve,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func connect(ctx context.Context, verbose bool) (*cli.Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewCLI(verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	core, err := app.Build(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &cli.Runtime{
		Console: core.Console,
		Close: func() {
			core.Close(context.WithoutCancel(ctx))
			_ = log.Sync()
		},
	}, nil
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return application.Run(ctx)
}
