package sandbox

import (
	"github.com/milk9111/ringbounce/config"
	"github.com/milk9111/ringbounce/obj"
	"gopkg.in/yaml.v3"
)

// Snapshot describes the current layout as a scene that rebuilds it, with
// every ball at its present position and radius.
func (s *Sandbox) Snapshot() *config.Scene {
	scene := *s.scene
	scene.Balls = nil
	for _, b := range s.bodies {
		v := b.Visual()
		switch v.Kind {
		case obj.KindRing:
			scene.Ring.X, scene.Ring.Y = v.Position.X, v.Position.Y
		case obj.KindBall:
			scene.Balls = append(scene.Balls, config.BallSpec{X: v.Position.X, Y: v.Position.Y, Radius: v.Radius})
		}
	}
	return &scene
}

// SnapshotYAML encodes Snapshot in the scene file format.
func (s *Sandbox) SnapshotYAML() ([]byte, error) {
	return yaml.Marshal(s.Snapshot())
}
