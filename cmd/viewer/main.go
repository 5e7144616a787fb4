package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/panel"
	"galaxy-server/internal/scene"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/logger"
	"galaxy-server/internal/viewer"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadLocal()
	if err != nil {
		return err
	}
	slog.SetDefault(logger.New(cfg.Logging, os.Stderr))

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

	ebiten.SetWindowSize(cfg.Render.WindowWidth, cfg.Render.WindowHeight)
	ebiten.SetWindowTitle("Galaxy")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game := viewer.NewGame(ctx, stage, galaxyPanel, scene.CameraFromConfig(cfg.Render), slog.Default())
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
