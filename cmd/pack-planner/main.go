package main

import (
	"fmt"
	"os"

	"ai-pack-planner/internal/app"
	"ai-pack-planner/internal/config"
	"ai-pack-planner/internal/logger"

	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	interactive := func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	return newRootCmd(a, interactive).Execute()
}
