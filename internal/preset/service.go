package preset

import (
	"context"
	"log/slog"
	"strings"

	"galaxy-server/internal/galaxy"
	apperrors "galaxy-server/internal/shared/errors"
)

// Store persists presets. *Repository is the postgres implementation.
type Store interface {
	Create(ctx context.Context, p *Preset) (*Preset, error)
	GetByID(ctx context.Context, id int) (*Preset, error)
	List(ctx context.Context) ([]Preset, error)
	Delete(ctx context.Context, id int) error
}

// Applier installs a parameter set with a fixed seed
type Applier interface {
	Apply(ctx context.Context, params galaxy.Parameters, seed *uint64) (*galaxy.Summary, error)
}

// Source reports what is installed right now
type Source interface {
	Current() (galaxy.Summary, bool)
}

type Service struct {
	store   Store
	applier Applier
	source  Source
	logger  *slog.Logger
}

func NewService(store Store, applier Applier, source Source, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		applier: applier,
		source:  source,
		logger:  logger,
	}
}

func (s *Service) List(ctx context.Context) ([]Preset, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (*Preset, error) {
	return s.store.GetByID(ctx, id)
}

// SaveCurrent stores the installed galaxy's parameters and seed under name
func (s *Service) SaveCurrent(ctx context.Context, name, createdBy string) (*Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, apperrors.Validation("preset name must be 1 to 100 characters")
	}

	current, ok := s.source.Current()
	if !ok {
		return nil, apperrors.Conflictf("no galaxy installed yet")
	}

	return s.store.Create(ctx, &Preset{
		Name:       name,
		Parameters: current.Parameters,
		Seed:       current.Seed,
		CreatedBy:  createdBy,
	})
}

// Apply regenerates the exact galaxy a preset was saved from
func (s *Service) Apply(ctx context.Context, id int) (*galaxy.Summary, error) {
	logger := s.logger.With("component", "preset_service", "operation", "apply", "preset_id", id)

	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	seed := p.Seed
	summary, err := s.applier.Apply(ctx, p.Parameters, &seed)
	if err != nil {
		return nil, err
	}

	logger.Info("Preset applied", "name", p.Name, "generation", summary.Generation)
	return summary, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.store.Delete(ctx, id)
}
