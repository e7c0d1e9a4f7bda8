package main

import (
	"flag"
	"log"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/ringbounce/config"
	"github.com/milk9111/ringbounce/sound"
)

func main() {
	sceneName := flag.String("scene", "", "scene file (defaults to config/scene.yaml, embedded copy if missing)")
	debug := flag.Bool("debug", false, "show the debug overlay and panic on unowned collisions")
	watch := flag.Bool("watch", false, "reload the scene when its file changes")
	seed := flag.Uint64("seed", 0, "random seed for outline colors (0 picks one from the clock)")
	mute := flag.Bool("mute", false, "start with audio muted (M toggles)")
	flag.Parse()

	scene, err := config.LoadScene(*sceneName)
	if err != nil {
		log.Fatalf("load scene: %v", err)
	}

	registry := sound.NewRegistry(sound.SampleRate)
	registry.Preload()
	if scene.Audio.Bounce != "" {
		if err := registry.Load(sound.CueBounce, scene.Audio.Bounce); err != nil {
			log.Printf("keeping built-in bounce cue: %v", err)
		}
	}

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(*seed, *seed>>1|1))

	sink := newAudioSink(registry, scene.Audio.Volume)
	sink.muted = *mute

	game, err := NewGame(*sceneName, scene, sink, rng, *debug)
	if err != nil {
		log.Fatalf("build sandbox: %v", err)
	}
	defer game.Close()

	if *watch {
		if err := game.Watch(filepath.Dir(config.DiskPath(*sceneName))); err != nil {
			log.Printf("scene watch disabled: %v", err)
		}
	}

	ebiten.SetWindowSize(scene.Window.Width, scene.Window.Height)
	ebiten.SetWindowTitle(scene.Window.Title)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
