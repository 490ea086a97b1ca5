package thicket

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	ShowFPS    bool
	ClearColor Color
	Overlay    OverlayOptions
}

// OverlayOptions controls what DrawOverlay paints.
type OverlayOptions struct {
	// Fill is the base color of every visible node, filtered by its resolved
	// HSV filter and faded by its resolved opacity.
	Fill Color
	// ContentBoxes strokes each node's content box.
	ContentBoxes bool
	// Highlight strokes this node's bounds in a contrasting color.
	Highlight NodeID
	// SkipRoot leaves the root unpainted, for roots covering the window.
	SkipRoot bool
}

// DefaultOverlay fills nodes white and strokes content boxes.
var DefaultOverlay = OverlayOptions{Fill: ColorWhite, ContentBoxes: true}

type gameShell struct {
	scene *Scene
	cfg   RunConfig
}

func (g *gameShell) Update() error { return g.scene.Update() }

func (g *gameShell) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.ClearColor.toRGBA())
	DrawOverlay(screen, g.scene, g.cfg.Overlay)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.0f  nodes: %d  frame: %d",
			ebiten.ActualFPS(), g.scene.tree.Len(), g.scene.Frame()))
	}
}

func (g *gameShell) Layout(_, _ int) (int, int) { return g.cfg.Width, g.cfg.Height }

// Run opens a window and drives the scene: Update resolves it every tick and
// the resolved state is drawn with DrawOverlay.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("thicket: invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	return ebiten.RunGame(&gameShell{scene: scene, cfg: cfg})
}

// DrawOverlay paints every visible attached node's world bounds in painter's
// order, as of the last Resolve.
func DrawOverlay(screen *ebiten.Image, s *Scene, opts OverlayOptions) {
	for id := range s.tree.Descendants(s.tree.Root()) {
		if opts.SkipRoot && id == s.tree.Root() {
			continue
		}
		v, ok := s.show.get(id)
		if !ok || !v.Visible {
			continue
		}
		b, ok := s.bounds.get(id.Index)
		if !ok {
			continue
		}
		op, _ := s.opacity.get(id)
		f, _ := s.filter.get(id)
		c := f.Apply(opts.Fill)
		c.A *= op
		if c.A > 0 && b.Width() > 0 && b.Height() > 0 {
			vector.DrawFilledRect(screen, float32(b.MinX), float32(b.MinY),
				float32(b.Width()), float32(b.Height()), c.toRGBA(), false)
		}
		if opts.ContentBoxes {
			if cb, ok := s.content.get(id); ok {
				vector.StrokeRect(screen, float32(cb.MinX), float32(cb.MinY),
					float32(cb.Width()), float32(cb.Height()), 1, overlayStroke.toRGBA(), false)
			}
		}
		if id == opts.Highlight {
			vector.StrokeRect(screen, float32(b.MinX), float32(b.MinY),
				float32(b.Width()), float32(b.Height()), 2, overlayHighlight.toRGBA(), false)
		}
	}
}

var (
	overlayStroke    = Color{R: 0.3, G: 0.8, B: 1, A: 0.8}
	overlayHighlight = Color{R: 1, G: 0.8, B: 0.2, A: 1}
)
