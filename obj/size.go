package obj

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownSize = errors.New("obj: unknown size")

type Kind int

const (
	KindBall Kind = iota + 1
	KindRing
)

func (k Kind) String() string {
	switch k {
	case KindBall:
		return "ball"
	case KindRing:
		return "ring"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type BallSize int

const (
	BallSmall BallSize = iota
	BallMedium
	BallLarge
)

// Radius is the visual radius, not counting the outline.
func (s BallSize) Radius() float64 {
	switch s {
	case BallMedium:
		return 100
	case BallLarge:
		return 150
	default:
		return 15
	}
}

func ParseBallSize(s string) (BallSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "small":
		return BallSmall, nil
	case "medium":
		return BallMedium, nil
	case "large":
		return BallLarge, nil
	}
	return 0, fmt.Errorf("%w: ball %q", ErrUnknownSize, s)
}

type RingSize int

const (
	RingSmall RingSize = iota
	RingMedium
	RingLarge
)

func (s RingSize) Radius() float64 {
	switch s {
	case RingMedium:
		return 200
	case RingLarge:
		return 300
	default:
		return 30
	}
}

func ParseRingSize(s string) (RingSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "small":
		return RingSmall, nil
	case "medium":
		return RingMedium, nil
	case "large":
		return RingLarge, nil
	}
	return 0, fmt.Errorf("%w: ring %q", ErrUnknownSize, s)
}
