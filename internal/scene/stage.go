package scene

import (
	"log/slog"
	"sync"

	"galaxy-server/internal/galaxy"
)

// Stage is the slot holding the installed point set. Frames read it under a
// read lock, so a replaced set is released only once no frame still sees it.
type Stage struct {
	mu         sync.RWMutex
	current    *galaxy.PointSet
	generation uint64
	logger     *slog.Logger
}

func NewStage(logger *slog.Logger) *Stage {
	return &Stage{logger: logger}
}

// Install swaps ps in and releases the previous set. It returns the new generation.
func (s *Stage) Install(ps *galaxy.PointSet) uint64 {
	s.mu.Lock()
	previous := s.current
	s.current = ps
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	if previous != nil && previous != ps {
		previous.Release()
	}

	s.logger.Debug("Installed point set",
		"component", "stage",
		"generation", generation,
		"points", ps.Len())

	return generation
}

// Frame runs fn against the installed set, which may be nil before the first
// install. The set must not be retained after fn returns.
func (s *Stage) Frame(fn func(ps *galaxy.PointSet, generation uint64)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.current, s.generation)
}

func (s *Stage) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Clear releases the installed set, used on shutdown
func (s *Stage) Clear() {
	s.mu.Lock()
	previous := s.current
	s.current = nil
	s.mu.Unlock()

	previous.Release()
}
