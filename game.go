package main

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/ringbounce/config"
	"github.com/milk9111/ringbounce/obj"
	"github.com/milk9111/ringbounce/sandbox"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

type Game struct {
	frames int
	debug  bool

	width, height int

	sceneName string
	scene     *config.Scene
	rng       *rand.Rand
	sandbox   *sandbox.Sandbox
	sink      *audioSink
	watcher   *config.Watcher

	paused  bool
	restart bool
	quit    bool
	pauseUI *ebitenui.UI

	clipboardReady bool
}

func NewGame(sceneName string, scene *config.Scene, sink *audioSink, rng *rand.Rand, debug bool) (*Game, error) {
	g := &Game{
		debug:     debug,
		width:     scene.Window.Width,
		height:    scene.Window.Height,
		sceneName: sceneName,
		rng:       rng,
		sink:      sink,
	}
	if err := g.load(scene); err != nil {
		return nil, err
	}
	g.pauseUI = NewPauseUI(g)

	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable, snapshot copy disabled: %v", err)
	} else {
		g.clipboardReady = true
	}
	return g, nil
}

// Watch rebuilds the sandbox whenever a scene file under dir changes.
func (g *Game) Watch(dir string) error {
	w, err := config.NewWatcher(dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	g.watcher = w
	return nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) load(scene *config.Scene) error {
	sb, err := sandbox.New(scene, g.sink, g.rng)
	if err != nil {
		return err
	}
	sb.SetStrict(g.debug)
	g.scene = scene
	g.sandbox = sb
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	select {
	case err := <-g.watcher.Errors:
		log.Printf("scene watcher: %v", err)
	default:
	}
	name, ok := g.watcher.Poll()
	if !ok {
		return
	}
	scene, err := config.LoadScene(g.sceneName)
	if err != nil {
		log.Printf("scene %s changed but did not load: %v", name, err)
		return
	}
	if err := g.load(scene); err != nil {
		log.Printf("scene %s changed but did not build: %v", name, err)
		return
	}
	log.Printf("reloaded scene from %s", name)
}

func (g *Game) copySnapshot() {
	if !g.clipboardReady {
		return
	}
	data, err := g.sandbox.SnapshotYAML()
	if err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	log.Printf("copied scene snapshot (%d bytes)", len(data))
}

func (g *Game) Update() error {
	if g.quit || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.sink.muted = !g.sink.muted
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copySnapshot()
	}

	g.pollWatcher()
	if g.restart {
		g.restart = false
		if err := g.load(g.scene); err != nil {
			log.Printf("restart: %v", err)
		}
	}
	g.sink.Prune()

	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.frames++
	g.sandbox.Tick()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	for _, v := range g.sandbox.Visuals() {
		drawOutline(screen, v)
	}

	if g.debug {
		g.sandbox.World().DebugDraw(&colliderDrawer{screen: screen})
		st := g.sandbox.Stats()
		w := g.sandbox.World()
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"Frames: %d    FPS: %.2f\nBodies: %d  Colliders: %d  Substeps: %d\nSounds: %d  Reactions: %d  Skipped: %d  Active: %d",
			g.frames, ebiten.ActualFPS(),
			w.BodyCount(), w.ColliderCount(), w.Substeps(),
			st.Sounds, st.Reactions, st.SkippedRemoved, g.sink.Active(),
		))
	}

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// drawOutline strokes the entity as a closed polygon of PointCount sides,
// with the outline extending outward from the radius.
func drawOutline(screen *ebiten.Image, v obj.Visual) {
	n := max(v.PointCount, 3)
	r := v.Radius + v.OutlineThickness/2
	point := func(i int) (float32, float32) {
		a := v.Angle + 2*math.Pi*float64(i)/float64(n)
		return float32(v.Position.X + r*math.Cos(a)), float32(v.Position.Y + r*math.Sin(a))
	}
	px, py := point(0)
	for i := 1; i <= n; i++ {
		x, y := point(i)
		vector.StrokeLine(screen, px, py, x, y, float32(v.OutlineThickness), v.Outline, true)
		px, py = x, y
	}
}
