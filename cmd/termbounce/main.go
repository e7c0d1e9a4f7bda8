// Command termbounce runs the ring sandbox in a terminal.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/ringbounce/config"
	"github.com/milk9111/ringbounce/reaction"
	"github.com/milk9111/ringbounce/sandbox"
	"github.com/milk9111/ringbounce/sound"
)

type app struct {
	screen  tcell.Screen
	render  *renderer
	sandbox *sandbox.Sandbox
	paused  bool
}

// handleInput reports false when the app should exit.
func (a *app) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case 'p', ' ':
				a.paused = !a.paused
			}
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *app) status() string {
	st := a.sandbox.Stats()
	state := "running"
	if a.paused {
		state = "paused"
	}
	return fmt.Sprintf(" ringbounce  %s  frame %d  sounds %d  reactions %d  [p]ause [q]uit ",
		state, a.sandbox.Frames(), st.Sounds, st.Reactions)
}

func (a *app) run(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !a.handleInput(ev) {
				return
			}
		case <-ticker.C:
			if !a.paused {
				a.sandbox.Tick()
			}
			a.render.draw(a.sandbox.Visuals(), a.status())
		}
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run owns every resource so the deferred cleanups execute before main exits.
func run(args []string) error {
	fs := flag.NewFlagSet("termbounce", flag.ContinueOnError)
	sceneName := fs.String("scene", "", "scene file (defaults to config/scene.yaml, embedded copy if missing)")
	seed := fs.Uint64("seed", 0, "random seed for outline colors (0 picks one from the clock)")
	debug := fs.Bool("debug", false, "panic on collisions with no owning entity")
	mute := fs.Bool("mute", false, "disable audio")
	logPath := fs.String("log", "termbounce.log", "log file, since the terminal is taken by the screen")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	scene, err := config.LoadScene(*sceneName)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}

	var sink reaction.Sink
	if !*mute {
		registry := sound.NewRegistry(sound.SampleRate)
		registry.Preload()
		if scene.Audio.Bounce != "" {
			if err := registry.Load(sound.CueBounce, scene.Audio.Bounce); err != nil {
				log.Printf("keeping built-in bounce cue: %v", err)
			}
		}
		if s, err := newSpeakerSink(registry, scene.Audio.Volume); err != nil {
			log.Printf("audio initialization failed: %v", err)
		} else {
			sink = s
			defer s.Close()
		}
	}

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	sb, err := sandbox.New(scene, sink, rand.New(rand.NewPCG(*seed, *seed>>1|1)))
	if err != nil {
		return fmt.Errorf("build sandbox: %w", err)
	}
	sb.SetStrict(*debug)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	defer screen.Fini()

	a := &app{
		screen:  screen,
		render:  newRenderer(screen, scene.Window.Width, scene.Window.Height),
		sandbox: sb,
	}
	a.run(time.Duration(scene.Physics.TimeStep * float64(time.Second)))
	return nil
}
