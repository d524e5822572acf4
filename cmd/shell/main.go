package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/studentfees/internal/app"
	"github.com/mmynk/studentfees/internal/config"
	"github.com/mmynk/studentfees/internal/shell"
	"github.com/mmynk/studentfees/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "studentfees: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logs go to LOG_FILE, or nowhere, so they never interleave with the menus.
	logOut, closeLog, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closeLog()
	logging.Setup(logOut, cfg.LogLevel)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	slog.Info("Shell session started", "driver", cfg.DBDriver)
	return shell.New(os.Stdin, os.Stdout, shell.Services{
		Students: a.Students,
		Courses:  a.Courses,
		Fees:     a.Fees,
	}).Run(ctx)
}
