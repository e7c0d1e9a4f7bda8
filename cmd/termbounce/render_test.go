package main

import (
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/ringbounce/obj"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	screen.SetSize(w, h)
	return screen
}

func TestRendererCell(t *testing.T) {
	screen := newScreen(t, 80, 41)
	r := newRenderer(screen, 640, 640)

	cases := []struct {
		name   string
		x, y   float64
		cx, cy int
	}{
		{"origin", 0, 0, 0, 1},
		{"center", 320, 320, 40, 21},
		{"last", 639, 639, 79, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if x, y := r.cell(tc.x, tc.y); x != tc.cx || y != tc.cy {
				t.Fatalf("cell(%v, %v) = (%d, %d), want (%d, %d)", tc.x, tc.y, x, y, tc.cx, tc.cy)
			}
		})
	}
}

func TestRendererDraw(t *testing.T) {
	screen := newScreen(t, 80, 41)
	defer screen.Fini()
	r := newRenderer(screen, 640, 640)

	visuals := []obj.Visual{
		{Kind: obj.KindRing, Position: cp.Vector{X: 320, Y: 320}, Radius: 300, OutlineThickness: 5, PointCount: 256, Outline: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{Kind: obj.KindBall, Position: cp.Vector{X: 320, Y: 320}, Radius: 15, OutlineThickness: 5, PointCount: 100, Outline: color.RGBA{R: 200, G: 10, B: 10, A: 255}},
	}
	r.draw(visuals, "status")

	if c, _, _, _ := screen.GetContent(40, 21); c != ballRune {
		t.Fatalf("expected ball at center, got %q", c)
	}
	ringCells := 0
	for y := 1; y < 41; y++ {
		for x := 0; x < 80; x++ {
			if c, _, _, _ := screen.GetContent(x, y); c == ringRune {
				ringCells++
			}
		}
	}
	if ringCells < 40 {
		t.Fatalf("expected the ring outline drawn, found %d cells", ringCells)
	}

	var status strings.Builder
	for x := 0; x < len("status"); x++ {
		c, _, _, _ := screen.GetContent(x, 0)
		status.WriteRune(c)
	}
	if status.String() != "status" {
		t.Fatalf("status line %q", status.String())
	}
}

func TestRendererClipsOffscreen(t *testing.T) {
	screen := newScreen(t, 20, 10)
	defer screen.Fini()
	r := newRenderer(screen, 640, 640)

	r.draw([]obj.Visual{{Kind: obj.KindBall, Position: cp.Vector{X: -500, Y: 2000}, Radius: 10, PointCount: 16}}, "")
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			if c, _, _, _ := screen.GetContent(x, y); c == ballRune {
				t.Fatalf("offscreen ball drawn at (%d, %d)", x, y)
			}
		}
	}
}

func TestHandleInput(t *testing.T) {
	screen := newScreen(t, 20, 10)
	defer screen.Fini()
	a := &app{screen: screen}

	cases := []struct {
		name   string
		ev     tcell.Event
		keep   bool
		paused bool
	}{
		{"pause", tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone), true, true},
		{"resume", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), true, false},
		{"other_rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), true, false},
		{"quit", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), false, false},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.handleInput(tc.ev); got != tc.keep {
				t.Fatalf("handleInput = %v, want %v", got, tc.keep)
			}
			if a.paused != tc.paused {
				t.Fatalf("paused = %v, want %v", a.paused, tc.paused)
			}
		})
	}
}

func TestRunReportsSetupErrors(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "termbounce.log")
	badScene := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badScene, []byte("ring: {size: huge}\n"), 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}
	defer log.SetOutput(os.Stderr)

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"invalid_scene", []string{"-mute", "-log", logPath, "-scene", badScene}, "load scene"},
		{"unknown_flag", []string{"-log", logPath, "-bogus"}, "bogus"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := run(tc.args)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("run(%v) = %v, want an error mentioning %q", tc.args, err, tc.want)
			}
		})
	}
}
