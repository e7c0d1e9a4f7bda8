package config

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/ringbounce/common"
	"github.com/milk9111/ringbounce/obj"
	"github.com/milk9111/ringbounce/physics"
	"github.com/milk9111/ringbounce/reaction"
	"github.com/milk9111/ringbounce/sound"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScene = errors.New("config: invalid scene")

type Scene struct {
	Window   WindowSpec   `yaml:"window"`
	Physics  PhysicsSpec  `yaml:"physics"`
	Reaction ReactionSpec `yaml:"reaction"`
	Audio    AudioSpec    `yaml:"audio"`
	Ring     RingSpec     `yaml:"ring"`
	Balls    []BallSpec   `yaml:"balls"`
}

type WindowSpec struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type PhysicsSpec struct {
	// Gravity of 0 falls back to the default downward pull.
	Gravity     float64 `yaml:"gravity"`
	TimeStep    float64 `yaml:"time_step"`
	Iterations  uint    `yaml:"iterations"`
	MaxSubsteps int     `yaml:"max_substeps"`
	MaxSpeed    float64 `yaml:"max_speed"`
}

type ReactionSpec struct {
	Mode string `yaml:"mode"`
}

type AudioSpec struct {
	Volume float64 `yaml:"volume"`
	// Bounce optionally points at a WAV file used instead of the built-in cue.
	Bounce string `yaml:"bounce"`
}

type RingSpec struct {
	Size string  `yaml:"size"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

type BallSpec struct {
	Size string  `yaml:"size"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	// Radius overrides the size class when positive.
	Radius float64 `yaml:"radius"`
}

// LoadScene loads, parses and validates a scene by name or path.
func LoadScene(name string) (*Scene, error) {
	data, err := Load(name)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", name, err)
	}
	scene, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", name, err)
	}
	return scene, nil
}

func Parse(data []byte) (*Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	scene.applyDefaults()
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return &scene, nil
}

func (s *Scene) applyDefaults() {
	if s.Window.Width == 0 {
		s.Window.Width = common.BaseWidth
	}
	if s.Window.Height == 0 {
		s.Window.Height = common.BaseHeight
	}
	if s.Window.Title == "" {
		s.Window.Title = "ringbounce"
	}
	def := physics.DefaultConfig()
	if s.Physics.Gravity == 0 {
		s.Physics.Gravity = common.Gravity
	}
	if s.Physics.TimeStep == 0 {
		s.Physics.TimeStep = def.TimeStep
	}
	if s.Physics.Iterations == 0 {
		s.Physics.Iterations = def.Iterations
	}
	if s.Physics.MaxSubsteps == 0 {
		s.Physics.MaxSubsteps = def.MaxSubsteps
	}
	if s.Physics.MaxSpeed == 0 {
		s.Physics.MaxSpeed = def.MaxSpeed
	}
	if s.Audio.Volume == 0 {
		s.Audio.Volume = sound.DefaultVolume
	}
}

// Validate checks the scene can be built: known sizes and mode, sane
// physics values and every ball starting inside the ring.
func (s *Scene) Validate() error {
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("%w: window %dx%d", ErrInvalidScene, s.Window.Width, s.Window.Height)
	}
	if s.Physics.TimeStep <= 0 || s.Physics.MaxSubsteps <= 0 || s.Physics.MaxSpeed <= 0 {
		return fmt.Errorf("%w: physics step settings must be positive", ErrInvalidScene)
	}
	if _, err := reaction.ParseMode(s.Reaction.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if s.Audio.Volume < 0 || s.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio volume %v outside [0, 1]", ErrInvalidScene, s.Audio.Volume)
	}

	ringSize, err := obj.ParseRingSize(s.Ring.Size)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	ringCenter := cp.Vector{X: s.Ring.X, Y: s.Ring.Y}
	for i, b := range s.Balls {
		r, err := b.VisualRadius()
		if err != nil {
			return fmt.Errorf("%w: ball %d: %w", ErrInvalidScene, i, err)
		}
		reach := ringCenter.Distance(cp.Vector{X: b.X, Y: b.Y}) + r + common.OutlineThickness
		if reach > ringSize.Radius() {
			return fmt.Errorf("%w: ball %d does not fit inside the ring", ErrInvalidScene, i)
		}
	}
	return nil
}

// VisualRadius resolves the ball radius from Radius or the size class.
func (b BallSpec) VisualRadius() (float64, error) {
	if b.Radius < 0 {
		return 0, fmt.Errorf("negative radius %v", b.Radius)
	}
	if b.Radius > 0 {
		return b.Radius, nil
	}
	size, err := obj.ParseBallSize(b.Size)
	if err != nil {
		return 0, err
	}
	return size.Radius(), nil
}

// PhysicsConfig converts the physics section into world settings.
func (s *Scene) PhysicsConfig() physics.Config {
	return physics.Config{
		Gravity:     cp.Vector{X: 0, Y: s.Physics.Gravity},
		TimeStep:    s.Physics.TimeStep,
		Iterations:  s.Physics.Iterations,
		MaxSubsteps: s.Physics.MaxSubsteps,
		MaxSpeed:    s.Physics.MaxSpeed,
	}
}

func (s *Scene) Mode() reaction.Mode {
	m, _ := reaction.ParseMode(s.Reaction.Mode)
	return m
}
