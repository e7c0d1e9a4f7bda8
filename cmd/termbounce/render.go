package main

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/ringbounce/obj"
)

const (
	ballRune = 'o'
	ringRune = '#'
)

// renderer maps world pixels onto terminal cells, stretching the world to
// fill the screen below the status line.
type renderer struct {
	screen         tcell.Screen
	worldW, worldH float64
}

func newRenderer(screen tcell.Screen, worldW, worldH int) *renderer {
	return &renderer{screen: screen, worldW: float64(worldW), worldH: float64(worldH)}
}

// cell converts a world position into a screen cell.
func (r *renderer) cell(x, y float64) (int, int) {
	cols, rows := r.screen.Size()
	rows--
	cx := int(math.Floor(x / r.worldW * float64(cols)))
	cy := int(math.Floor(y/r.worldH*float64(rows))) + 1
	return cx, cy
}

func (r *renderer) draw(visuals []obj.Visual, status string) {
	r.screen.Clear()
	cols, rows := r.screen.Size()

	for _, v := range visuals {
		ch := rune(ringRune)
		if v.Kind == obj.KindBall {
			ch = ballRune
		}
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(v.Outline.R), int32(v.Outline.G), int32(v.Outline.B)))

		n := max(v.PointCount, 3)
		radius := v.Radius + v.OutlineThickness/2
		for i := 0; i < n; i++ {
			a := v.Angle + 2*math.Pi*float64(i)/float64(n)
			x, y := r.cell(v.Position.X+radius*math.Cos(a), v.Position.Y+radius*math.Sin(a))
			if x < 0 || x >= cols || y < 1 || y >= rows {
				continue
			}
			r.screen.SetContent(x, y, ch, nil, style)
		}
		if v.Kind == obj.KindBall {
			if x, y := r.cell(v.Position.X, v.Position.Y); x >= 0 && x < cols && y >= 1 && y < rows {
				r.screen.SetContent(x, y, ch, nil, style)
			}
		}
	}

	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	for i, c := range []rune(status) {
		if i >= cols {
			break
		}
		r.screen.SetContent(i, 0, c, nil, statusStyle)
	}
	r.screen.Show()
}
