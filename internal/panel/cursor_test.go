package panel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"galaxy-server/internal/galaxy"
)

type failingCommitter struct{}

func (failingCommitter) Regenerate(ctx context.Context, params galaxy.Parameters, seed *uint64) (*galaxy.Summary, error) {
	return nil, errors.New("generator unavailable")
}

func newCursor(committer Committer) (*Cursor, *Panel) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(committer, galaxy.DefaultParameters(), logger)
	return NewCursor(p, logger), p
}

func TestCursorWraps(t *testing.T) {
	c, _ := newCursor(&fakeCommitter{})
	names := NumericNames()

	if got := c.Selected(); got != names[0] {
		t.Fatalf("initial selection = %q, want %q", got, names[0])
	}

	c.Do(context.Background(), ActionPrev)
	if got := c.Selected(); got != names[len(names)-1] {
		t.Errorf("prev from first = %q, want %q", got, names[len(names)-1])
	}

	c.Do(context.Background(), ActionNext)
	c.Do(context.Background(), ActionNext)
	if got := c.Selected(); got != names[1] {
		t.Errorf("selection = %q, want %q", got, names[1])
	}
}

func TestCursorNudgesSelectedField(t *testing.T) {
	c, p := newCursor(&fakeCommitter{})
	ctx := context.Background()

	for c.Selected() != "branches" {
		c.Do(ctx, ActionNext)
	}
	c.Do(ctx, ActionIncrease)
	c.Do(ctx, ActionIncrease)
	c.Do(ctx, ActionDecrease)

	if got := p.Draft().Branches; got != 2 {
		t.Errorf("branches = %d, want 2", got)
	}
	if got := p.Committed().Branches; got != 1 {
		t.Errorf("committed branches = %d, want 1", got)
	}
}

func TestCursorCommit(t *testing.T) {
	fc := &fakeCommitter{}
	c, p := newCursor(fc)
	ctx := context.Background()

	c.Do(ctx, ActionIncrease) // flatness 1 -> 1.1
	c.Do(ctx, ActionCommit)
	c.Wait()

	if c.Busy() {
		t.Error("still busy after Wait")
	}
	if len(fc.calls) != 1 {
		t.Fatalf("commits = %d, want 1", len(fc.calls))
	}
	if got := p.Committed().Flatness; got != 1.1 {
		t.Errorf("committed flatness = %v, want 1.1", got)
	}
	if !strings.HasPrefix(c.Status(), "galaxy #1") {
		t.Errorf("status = %q", c.Status())
	}
}

func TestCursorReseedKeepsDraft(t *testing.T) {
	fc := &fakeCommitter{}
	c, p := newCursor(fc)
	ctx := context.Background()

	c.Do(ctx, ActionIncrease)
	c.Do(ctx, ActionReseed)
	c.Wait()

	if len(fc.calls) != 1 {
		t.Fatalf("commits = %d, want 1", len(fc.calls))
	}
	if got := fc.calls[0].Flatness; got != 1 {
		t.Errorf("reseed used flatness %v, want the committed 1", got)
	}
	if fc.seeds[0] != nil {
		t.Error("reseed passed a fixed seed")
	}
	if !p.Dirty() {
		t.Error("reseed discarded the draft edit")
	}
}

func TestCursorRejectedCommit(t *testing.T) {
	c, p := newCursor(failingCommitter{})
	ctx := context.Background()

	c.Do(ctx, ActionIncrease)
	c.Do(ctx, ActionCommit)
	c.Wait()

	if !strings.Contains(c.Status(), "generator unavailable") {
		t.Errorf("status = %q", c.Status())
	}
	if !p.Dirty() {
		t.Error("rejected commit lost the draft")
	}
}

func TestCursorLines(t *testing.T) {
	c, _ := newCursor(&fakeCommitter{})
	c.Do(context.Background(), ActionIncrease)

	lines := c.Lines()
	if len(lines) != len(numerics)+len(colours) {
		t.Fatalf("lines = %d, want %d", len(lines), len(numerics)+len(colours))
	}
	if lines[0] != "> flatness         1.1*" {
		t.Errorf("selected line = %q", lines[0])
	}
	if lines[3] != "  count            100000" {
		t.Errorf("count line = %q", lines[3])
	}
	if !strings.Contains(lines[len(numerics)], "#ff6030") {
		t.Errorf("inside colour line = %q", lines[len(numerics)])
	}
}
