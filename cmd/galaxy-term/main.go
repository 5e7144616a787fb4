package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/panel"
	"galaxy-server/internal/scene"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/logger"
	"galaxy-server/internal/terminal"

	"github.com/gdamore/tcell/v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "galaxy-term: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadLocal()
	if err != nil {
		return err
	}

	// the screen belongs to tcell, so logs go to LOG_FILE or nowhere
	logFile, err := logger.InitFile(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	params, err := galaxy.ParametersFromConfig(cfg.Galaxy)
	if err != nil {
		return err
	}

	stage := scene.NewStage(slog.Default())
	defer stage.Clear()

	service := galaxy.NewService(stage, nil, slog.Default())
	galaxyPanel := panel.New(service, params, slog.Default())

	var seed *uint64
	if cfg.Galaxy.Seed != 0 {
		seed = &cfg.Galaxy.Seed
	}
	if _, err := galaxyPanel.CommitWithSeed(ctx, seed); err != nil {
		return fmt.Errorf("failed to generate galaxy: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	preview := terminal.NewPreview(screen, stage, galaxyPanel, scene.CameraFromConfig(cfg.Render), cfg.Render.FrameRate, slog.Default())
	return preview.Run(ctx)
}
