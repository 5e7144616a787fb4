package galaxy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Installer takes ownership of a freshly generated set and makes it visible
type Installer interface {
	Install(ps *PointSet) uint64
}

// Cache stores generated buffers keyed by parameters and seed
type Cache interface {
	Get(ctx context.Context, params Parameters, seed uint64) (*PointSet, bool, error)
	Put(ctx context.Context, ps *PointSet) error
}

type Service struct {
	installer Installer
	cache     Cache
	logger    *slog.Logger

	// mu serialises commits so installs happen in request order
	mu      sync.Mutex
	current *Summary
}

func NewService(installer Installer, cache Cache, logger *slog.Logger) *Service {
	logger.Debug("Initializing galaxy service", "cache_enabled", cache != nil)

	return &Service{
		installer: installer,
		cache:     cache,
		logger:    logger,
	}
}

// Regenerate builds the galaxy for params and installs it. A nil seed draws a
// fresh one. On error nothing is installed and the previous galaxy stays.
func (s *Service) Regenerate(ctx context.Context, params Parameters, seed *uint64) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var useSeed uint64
	if seed != nil {
		useSeed = *seed
	} else {
		useSeed = RandomSeed()
	}

	logger := s.logger.With("component", "galaxy_service", "operation", "regenerate",
		"seed", useSeed, "count", params.Count, "branches", params.Branches)

	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	ps, cached := s.lookup(ctx, logger, params, useSeed)
	if ps == nil {
		var err error
		ps, err = GenerateSeeded(params, useSeed)
		if err != nil {
			return nil, fmt.Errorf("failed to generate galaxy: %w", err)
		}
		s.store(ctx, logger, ps)
	}

	if err := ctx.Err(); err != nil {
		ps.Release()
		return nil, err
	}

	// bounds before install, the stage may release the set at any later point
	bounds := ps.Bounds()
	generation := s.installer.Install(ps)

	summary := &Summary{
		Parameters:  params,
		Seed:        useSeed,
		Count:       params.Count,
		Generation:  generation,
		Bounds:      bounds,
		Cached:      cached,
		Elapsed:     float64(time.Since(start).Microseconds()) / 1000,
		GeneratedAt: time.Now().UTC(),
	}
	s.current = summary

	logger.Info("Galaxy installed",
		"generation", generation,
		"cached", cached,
		"elapsed_ms", summary.Elapsed)

	return summary, nil
}

// Current returns the summary of the last installed galaxy
func (s *Service) Current() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Summary{}, false
	}
	return *s.current, true
}

func (s *Service) lookup(ctx context.Context, logger *slog.Logger, params Parameters, seed uint64) (*PointSet, bool) {
	if s.cache == nil {
		return nil, false
	}

	ps, ok, err := s.cache.Get(ctx, params, seed)
	if err != nil {
		// a broken cache only costs a regeneration
		logger.Warn("Galaxy cache lookup failed", "error", err)
		return nil, false
	}
	if !ok {
		logger.Debug("Galaxy cache miss")
		return nil, false
	}
	return ps, true
}

func (s *Service) store(ctx context.Context, logger *slog.Logger, ps *PointSet) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, ps); err != nil {
		logger.Warn("Failed to cache galaxy buffers", "error", err)
	}
}
