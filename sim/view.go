package sim

import (
	"github.com/lucasb-eyer/go-colorful"

	"go-tombola/geometry"
	"go-tombola/midi"
	"go-tombola/tombola"
)

// PadView is a pad as front-ends draw it
type PadView struct {
	Index    int
	Note     midi.Note
	A, B     geometry.Vec2
	Color    colorful.Color
	Sounding []int
}

// BallView is a ball as front-ends draw it
type BallView struct {
	Position geometry.Vec2
	Size     tombola.Size
	Bounces  int
}

// Radius returns the ball's radius in world units
func (b BallView) Radius() float64 {
	return b.Size.Radius()
}

// Pads returns the current pads in index order
func (w *World) Pads() []PadView {
	if !w.built {
		return nil
	}

	housing := w.tombolas.Get(w.housing)
	views := make([]PadView, 0, len(housing.Pads))
	for _, e := range housing.Pads {
		if !w.pads.Has(e) {
			continue
		}
		pad := w.pads.Get(e)
		a, b, ok := w.space.PadEndpoints(e)
		if !ok {
			continue
		}
		c, _ := w.colors.Color(pad.Material)
		views = append(views, PadView{
			Index:    pad.Index,
			Note:     pad.Note,
			A:        a,
			B:        b,
			Color:    c,
			Sounding: pad.Octaves(),
		})
	}
	return views
}

// Balls returns every live ball
func (w *World) Balls() []BallView {
	var views []BallView
	query := w.ballFilter.Query()
	for query.Next() {
		ball := query.Get()
		pos, _ := w.space.Position(query.Entity())
		views = append(views, BallView{
			Position: pos,
			Size:     ball.Size,
			Bounces:  ball.Bounces,
		})
	}
	return views
}

// NumBalls returns the number of live balls
func (w *World) NumBalls() int {
	return w.space.NumBalls()
}
