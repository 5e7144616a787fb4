package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"sync/atomic"

	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/panel"
	"galaxy-server/internal/scene"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/ncruces/zenity"
)

const (
	dragSpeed  = 0.005 // radians per pixel
	keySpeed   = 1.5   // radians per second
	wheelZoom  = 0.9
	panelX     = 8
	panelY     = 8
	lineHeight = 16
)

// Game draws whatever the stage holds every frame and edits the panel
// from the keyboard
type Game struct {
	ctx    context.Context
	stage  *scene.Stage
	panel  *panel.Panel
	cursor *panel.Cursor
	camera scene.Camera
	logger *slog.Logger
	white  *ebiten.Image

	width, height int
	showPanel     bool
	dragging      bool
	lastX, lastY  int
	dialogOpen    atomic.Bool

	points   []scene.ScreenPoint
	quads    []scene.Quad
	vertices []ebiten.Vertex
	indices  []uint16
}

func NewGame(ctx context.Context, stage *scene.Stage, p *panel.Panel, camera scene.Camera, logger *slog.Logger) *Game {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)

	return &Game{
		white:     white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		ctx:       ctx,
		stage:     stage,
		panel:     p,
		cursor:    panel.NewCursor(p, logger),
		camera:    camera,
		logger:    logger.With("component", "viewer"),
		showPanel: true,
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || g.ctx.Err() != nil {
		return ebiten.Termination
	}

	g.cursor.Do(g.ctx, keyAction())

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.showPanel = !g.showPanel
	case inpututil.IsKeyJustPressed(ebiten.KeyI):
		g.pickColour("insideColor")
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.pickColour("outsideColor")
	}

	dt := 1 / float64(ebiten.TPS())
	g.orbit(dt)
	g.camera.Update(dt)
	return nil
}

func keyAction() panel.Action {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyTab) && shift:
		return panel.ActionPrev
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		return panel.ActionNext
	case repeating(ebiten.KeyEqual) || repeating(ebiten.KeyKPAdd):
		return panel.ActionIncrease
	case repeating(ebiten.KeyMinus) || repeating(ebiten.KeyKPSubtract):
		return panel.ActionDecrease
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyKPEnter):
		return panel.ActionCommit
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		return panel.ActionRevert
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		return panel.ActionReseed
	}
	return panel.ActionNone
}

// repeating fires on press and then every few ticks while held
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d > 30 && d%4 == 0)
}

func (g *Game) orbit(dt float64) {
	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if g.dragging {
			g.camera.Orbit(float64(x-g.lastX)*dragSpeed, float64(y-g.lastY)*dragSpeed)
		}
		g.dragging = true
	} else {
		g.dragging = false
	}
	g.lastX, g.lastY = x, y

	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.camera.Orbit(-keySpeed*dt, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.camera.Orbit(keySpeed*dt, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.camera.Orbit(0, keySpeed*dt)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.camera.Orbit(0, -keySpeed*dt)
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		factor := wheelZoom
		if wy < 0 {
			factor = 1 / wheelZoom
		}
		g.camera.Zoom(factor)
	}
}

// pickColour opens the native colour dialog without blocking the frame loop.
// The choice lands in the draft; Enter commits it.
func (g *Game) pickColour(name string) {
	if !g.dialogOpen.CompareAndSwap(false, true) {
		return
	}
	current, err := g.panel.Color(name)
	if err != nil {
		g.dialogOpen.Store(false)
		return
	}

	go func() {
		defer g.dialogOpen.Store(false)

		picked, err := zenity.SelectColor(
			zenity.Title("Select "+name),
			zenity.Color(colorful.Color{R: current.R, G: current.G, B: current.B}.Clamped()),
		)
		if err != nil {
			if !errors.Is(err, zenity.ErrCanceled) {
				g.logger.Warn("Colour dialog failed", "operation", "pick_colour", "field", name, "error", err)
			}
			return
		}

		c, ok := colorful.MakeColor(picked)
		if !ok {
			return
		}
		if err := g.panel.SetColor(name, galaxy.RGB{R: c.R, G: c.G, B: c.B}); err != nil {
			g.logger.Warn("Colour rejected", "operation", "pick_colour", "field", name, "error", err)
		}
	}()
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	var count int
	var generation uint64
	g.stage.Frame(func(ps *galaxy.PointSet, gen uint64) {
		g.points = g.camera.Project(ps, g.width, g.height, g.points)
		count, generation = ps.Len(), gen
	})

	g.quads = scene.Quads(g.points, g.quads)
	g.drawQuads(screen)

	if g.showPanel {
		ebitenutil.DebugPrintAt(screen, strings.Join(g.cursor.Lines(), "\n"), panelX, panelY)
	}
	footer := fmt.Sprintf("galaxy #%d  %d points  %.0f fps", generation, count, ebiten.ActualFPS())
	ebitenutil.DebugPrintAt(screen, footer, panelX, g.height-lineHeight-panelY)
}

// drawQuads issues one additive DrawTriangles call per batch of quads
func (g *Game) drawQuads(screen *ebiten.Image) {
	op := &ebiten.DrawTrianglesOptions{Blend: ebiten.BlendLighter}

	for start := 0; start < len(g.quads); start += scene.MaxQuadsPerBatch {
		batch := g.quads[start:min(start+scene.MaxQuadsPerBatch, len(g.quads))]

		g.vertices = g.vertices[:0]
		g.indices = g.indices[:0]
		for i, q := range batch {
			base := uint16(i * 4)
			g.vertices = append(g.vertices,
				vertex(q.X0, q.Y0, q), vertex(q.X1, q.Y0, q),
				vertex(q.X0, q.Y1, q), vertex(q.X1, q.Y1, q))
			g.indices = append(g.indices, base, base+1, base+2, base+1, base+3, base+2)
		}
		screen.DrawTriangles(g.vertices, g.indices, g.white, op)
	}
}

func vertex(x, y float32, q scene.Quad) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   x,
		DstY:   y,
		SrcX:   1,
		SrcY:   1,
		ColorR: q.R,
		ColorG: q.G,
		ColorB: q.B,
		ColorA: 1,
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
