package panel

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"galaxy-server/internal/galaxy"
)

// Action is a keyboard command understood by every front end
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrev
	ActionIncrease
	ActionDecrease
	ActionCommit
	ActionRevert
	ActionReseed
)

// Cursor is the keyboard view of a panel: one selected numeric field that
// Increase/Decrease nudge by a step. Commits run in the background so the
// caller's frame loop keeps drawing the previous galaxy meanwhile.
type Cursor struct {
	panel  *Panel
	names  []string
	logger *slog.Logger
	wg     sync.WaitGroup

	mu       sync.Mutex
	selected int
	busy     bool
	status   string
}

func NewCursor(p *Panel, logger *slog.Logger) *Cursor {
	return &Cursor{
		panel:  p,
		names:  NumericNames(),
		logger: logger.With("component", "cursor"),
	}
}

func (c *Cursor) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.names[c.selected]
}

// Busy reports whether a commit is still generating
func (c *Cursor) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Status is the outcome of the last commit, or the last edit error
func (c *Cursor) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Do applies an action. Commit and reseed return immediately; call Wait to
// block until the generation finishes.
func (c *Cursor) Do(ctx context.Context, action Action) {
	switch action {
	case ActionNext:
		c.move(1)
	case ActionPrev:
		c.move(-1)
	case ActionIncrease:
		c.nudge(1)
	case ActionDecrease:
		c.nudge(-1)
	case ActionRevert:
		c.panel.Revert()
		c.setStatus("reverted")
	case ActionCommit:
		c.commit(ctx, c.panel.Commit)
	case ActionReseed:
		c.commit(ctx, c.panel.Reseed)
	}
}

// Wait blocks until no commit started by Do is running
func (c *Cursor) Wait() {
	c.wg.Wait()
}

func (c *Cursor) move(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.names)
	c.selected = ((c.selected+delta)%n + n) % n
}

func (c *Cursor) nudge(steps int) {
	if _, err := c.panel.Nudge(c.Selected(), steps); err != nil {
		c.setStatus(err.Error())
	}
}

func (c *Cursor) commit(ctx context.Context, fn func(context.Context) (*galaxy.Summary, error)) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return
	}
	c.busy = true
	c.status = "generating..."
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		summary, err := fn(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.busy = false
		if err != nil {
			c.logger.Warn("Commit rejected", "operation", "commit", "error", err)
			c.status = "rejected: " + err.Error()
			return
		}
		c.status = summary.String()
	}()
}

func (c *Cursor) setStatus(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
}

// Lines renders the panel as text, one field per line. The selected field is
// marked with '>' and edited but uncommitted fields with '*'.
func (c *Cursor) Lines() []string {
	draft := c.panel.Draft()
	committed := c.panel.Committed()
	selected := c.Selected()

	lines := make([]string, 0, len(numerics)+len(colours)+1)
	for _, n := range numerics {
		marker := " "
		if n.name == selected {
			marker = ">"
		}
		v := n.get(&draft)
		edited := ""
		if v != n.get(&committed) {
			edited = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %-16s %s%s", marker, n.name, formatValue(n.kind, v), edited))
	}
	for _, col := range colours {
		edited := ""
		if col.get(&draft) != col.get(&committed) {
			edited = "*"
		}
		lines = append(lines, fmt.Sprintf("  %-16s %s%s", col.name, col.get(&draft).Hex(), edited))
	}
	if status := c.Status(); status != "" {
		lines = append(lines, status)
	}
	return lines
}

func formatValue(kind Kind, v float64) string {
	if kind == KindInteger {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
