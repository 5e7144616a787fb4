package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/panel"
	"galaxy-server/internal/scene"

	"github.com/gdamore/tcell/v2"
)

const (
	orbitStep  = 0.1 // radians per key press
	zoomStep   = 1.1
	halfBlock  = '▀'
	panelStyle = tcell.AttrBold
)

// Preview renders the installed galaxy with half-block characters, two
// vertical pixels per cell, redrawing on a timer so installs show up on
// the next frame without any notification.
type Preview struct {
	screen    tcell.Screen
	stage     *scene.Stage
	cursor    *panel.Cursor
	camera    scene.Camera
	frameRate int
	logger    *slog.Logger

	showPanel bool
	acc       *scene.Accumulation
	points    []scene.ScreenPoint
}

func NewPreview(screen tcell.Screen, stage *scene.Stage, p *panel.Panel, camera scene.Camera, frameRate int, logger *slog.Logger) *Preview {
	return &Preview{
		screen:    screen,
		stage:     stage,
		cursor:    panel.NewCursor(p, logger),
		camera:    camera,
		frameRate: max(1, frameRate),
		logger:    logger.With("component", "terminal"),
		showPanel: true,
	}
}

// Run draws frames until ctx ends or the user quits. The screen must already
// be initialised; Run does not finalise it.
func (p *Preview) Run(ctx context.Context) error {
	logger := p.logger.With("operation", "run")
	logger.Info("Preview started", "frame_rate", p.frameRate)

	ctx, cancel := context.WithCancel(ctx)

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	// a commit still generating must not install after the caller clears the stage
	defer func() {
		cancel()
		p.cursor.Wait()
	}()

	interval := time.Second / time.Duration(p.frameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !p.handleEvent(ctx, ev) {
				logger.Info("Preview stopped by user")
				return nil
			}
		case now := <-ticker.C:
			p.camera.Update(now.Sub(last).Seconds())
			last = now
			p.draw()
		}
	}
}

// handleEvent reports false when the preview should stop
func (p *Preview) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		p.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyTab:
			p.cursor.Do(ctx, panel.ActionNext)
		case tcell.KeyBacktab:
			p.cursor.Do(ctx, panel.ActionPrev)
		case tcell.KeyEnter:
			p.cursor.Do(ctx, panel.ActionCommit)
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			p.cursor.Do(ctx, panel.ActionRevert)
		case tcell.KeyLeft:
			p.camera.Orbit(-orbitStep, 0)
		case tcell.KeyRight:
			p.camera.Orbit(orbitStep, 0)
		case tcell.KeyUp:
			p.camera.Orbit(0, orbitStep)
		case tcell.KeyDown:
			p.camera.Orbit(0, -orbitStep)
		case tcell.KeyRune:
			return p.handleRune(ctx, ev.Rune())
		}
	}
	return true
}

func (p *Preview) handleRune(ctx context.Context, r rune) bool {
	switch r {
	case 'q':
		return false
	case '+', '=':
		p.cursor.Do(ctx, panel.ActionIncrease)
	case '-', '_':
		p.cursor.Do(ctx, panel.ActionDecrease)
	case 'r':
		p.cursor.Do(ctx, panel.ActionReseed)
	case 'h':
		p.showPanel = !p.showPanel
	case 'z':
		p.camera.Zoom(1 / zoomStep)
	case 'x':
		p.camera.Zoom(zoomStep)
	}
	return true
}

func (p *Preview) draw() {
	cols, rows := p.screen.Size()
	if cols <= 0 || rows <= 0 {
		return
	}
	if p.acc == nil || p.acc.Width != cols || p.acc.Height != rows*2 {
		p.acc = scene.NewAccumulation(cols, rows*2)
	}
	p.acc.Reset()

	var count int
	var generation uint64
	p.stage.Frame(func(ps *galaxy.PointSet, gen uint64) {
		p.points = p.camera.Project(ps, cols, rows*2, p.points)
		count, generation = ps.Len(), gen
	})
	p.acc.Add(p.points)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			style := tcell.StyleDefault.
				Foreground(cellColor(p.acc.At(x, y*2))).
				Background(cellColor(p.acc.At(x, y*2+1)))
			p.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}

	if p.showPanel {
		for i, line := range p.cursor.Lines() {
			p.drawText(0, i, line)
		}
	}
	p.drawText(0, rows-1, fmt.Sprintf("galaxy #%d  %d points", generation, count))

	p.screen.Show()
}

func (p *Preview) drawText(x, y int, s string) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack).Attributes(panelStyle)
	for _, r := range s {
		p.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func cellColor(r, g, b float64) tcell.Color {
	return tcell.NewRGBColor(int32(r*255+0.5), int32(g*255+0.5), int32(b*255+0.5))
}
