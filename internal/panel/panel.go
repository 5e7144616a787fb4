package panel

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"galaxy-server/internal/galaxy"
	apperrors "galaxy-server/internal/shared/errors"
)

// Committer turns a parameter set into an installed galaxy
type Committer interface {
	Regenerate(ctx context.Context, params galaxy.Parameters, seed *uint64) (*galaxy.Summary, error)
}

// Panel holds the parameters being edited (the draft) next to the ones the
// installed galaxy was built from. Edits are transient until Commit.
type Panel struct {
	// commitMu orders commits so committed always matches the installed galaxy
	commitMu  sync.Mutex
	mu        sync.Mutex
	draft     galaxy.Parameters
	committed galaxy.Parameters
	committer Committer
	logger    *slog.Logger
}

// New starts a panel whose draft and committed copies are both initial.
// Nothing is generated until the first Commit.
func New(committer Committer, initial galaxy.Parameters, logger *slog.Logger) *Panel {
	return &Panel{
		draft:     initial,
		committed: initial,
		committer: committer,
		logger:    logger,
	}
}

func (p *Panel) Draft() galaxy.Parameters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

func (p *Panel) Committed() galaxy.Parameters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.committed
}

// Dirty reports uncommitted edits
func (p *Panel) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.Hash() != p.committed.Hash()
}

// Value reads a numeric field from the draft
func (p *Panel) Value(name string) (float64, error) {
	n, ok := lookupNumeric(name)
	if !ok {
		return 0, apperrors.Validationf("unknown parameter %q", name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return n.get(&p.draft), nil
}

// Set moves a numeric field of the draft, clamped to its range and snapped
// to its step. It returns the value actually stored.
func (p *Panel) Set(name string, value float64) (float64, error) {
	n, ok := lookupNumeric(name)
	if !ok {
		return 0, apperrors.Validationf("unknown parameter %q", name)
	}
	if math.IsNaN(value) {
		return 0, apperrors.Validationf("%s must be a number", name)
	}

	v := n.rng.snap(value)

	p.mu.Lock()
	defer p.mu.Unlock()
	n.set(&p.draft, v)
	return v, nil
}

// Nudge moves a numeric field by whole steps
func (p *Panel) Nudge(name string, steps int) (float64, error) {
	n, ok := lookupNumeric(name)
	if !ok {
		return 0, apperrors.Validationf("unknown parameter %q", name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	v := n.rng.snap(n.get(&p.draft) + float64(steps)*n.rng.Step)
	n.set(&p.draft, v)
	return v, nil
}

// Color reads a colour field from the draft
func (p *Panel) Color(name string) (galaxy.RGB, error) {
	col, ok := lookupColour(name)
	if !ok {
		return galaxy.RGB{}, apperrors.Validationf("unknown colour %q", name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return col.get(&p.draft), nil
}

func (p *Panel) SetColor(name string, c galaxy.RGB) error {
	col, ok := lookupColour(name)
	if !ok {
		return apperrors.Validationf("unknown colour %q", name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	col.set(&p.draft, c)
	return nil
}

// Replace swaps the whole draft. Every numeric field must lie within its
// panel range; colours are taken as given.
func (p *Panel) Replace(params galaxy.Parameters) error {
	if err := CheckRanges(params); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = params
	return nil
}

// CheckRanges rejects parameters outside the panel ranges
func CheckRanges(params galaxy.Parameters) error {
	for _, n := range numerics {
		v := n.get(&params)
		if !n.rng.contains(v) {
			return apperrors.InvalidParameter(galaxy.ErrInvalidParameter,
				"%s must be within [%v, %v], got %v", n.name, n.rng.Min, n.rng.Max, v)
		}
	}
	return nil
}

// Revert discards uncommitted edits
func (p *Panel) Revert() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = p.committed
}

// Commit regenerates from the draft with a fresh seed
func (p *Panel) Commit(ctx context.Context) (*galaxy.Summary, error) {
	return p.CommitWithSeed(ctx, nil)
}

// CommitWithSeed hands a copy of the draft to the committer. Only on success
// does that copy become the committed parameters; on failure the committed
// parameters and the installed galaxy stay as they were.
func (p *Panel) CommitWithSeed(ctx context.Context, seed *uint64) (*galaxy.Summary, error) {
	p.mu.Lock()
	draft := p.draft
	p.mu.Unlock()

	return p.commit(ctx, draft, seed, false)
}

// Reseed regenerates the committed parameters with a fresh seed, leaving
// the draft alone
func (p *Panel) Reseed(ctx context.Context) (*galaxy.Summary, error) {
	return p.ReseedWithSeed(ctx, nil)
}

// ReseedWithSeed regenerates the committed parameters with seed, or a fresh
// one when nil. The committed parameters already produced a galaxy, so the
// panel ranges are not checked again: startup parameters only have to pass
// Validate.
func (p *Panel) ReseedWithSeed(ctx context.Context, seed *uint64) (*galaxy.Summary, error) {
	return p.commit(ctx, p.Committed(), seed, false)
}

// Apply commits params without going through the draft, so concurrent
// callers cannot commit each other's edits. On success params become both
// the draft and the committed parameters; on failure nothing changes.
func (p *Panel) Apply(ctx context.Context, params galaxy.Parameters, seed *uint64) (*galaxy.Summary, error) {
	if err := CheckRanges(params); err != nil {
		return nil, err
	}

	summary, err := p.commit(ctx, params, seed, true)
	if err != nil {
		return nil, fmt.Errorf("parameters not applied: %w", err)
	}
	return summary, nil
}

func (p *Panel) commit(ctx context.Context, params galaxy.Parameters, seed *uint64, replaceDraft bool) (*galaxy.Summary, error) {
	p.commitMu.Lock()
	defer p.commitMu.Unlock()

	logger := p.logger.With("component", "panel", "operation", "commit")

	summary, err := p.committer.Regenerate(ctx, params, seed)
	if err != nil {
		logger.Debug("Commit rejected", "error", err)
		return nil, err
	}

	p.mu.Lock()
	p.committed = params
	if replaceDraft {
		p.draft = params
	}
	p.mu.Unlock()

	logger.Debug("Committed parameters", "generation", summary.Generation)
	return summary, nil
}

// Fields lists every control with its range, default and draft value
func (p *Panel) Fields() []Field {
	return fields(p.Draft())
}
