package tombola

import (
	"go-tombola/config"
	"go-tombola/geometry"
)

// Tombola dimensions in world units
const (
	Apothem   = 225.0
	Thickness = 5.0

	GravityScale = 700.0
)

// PadLayout places one pad of a freshly built tombola
type PadLayout struct {
	Index     int
	Placement geometry.Placement
	Length    float64
}

// Endpoints returns the two ends of the pad's centre line
func (l PadLayout) Endpoints() (a, b geometry.Vec2) {
	return l.Placement.Endpoints(l.Length)
}

// Layout computes the pads of shape around centre. Pads overlap by half a
// thickness so the corners are closed.
func Layout(shape geometry.Shape, centre geometry.Vec2) []PadLayout {
	n := shape.NumSides()
	length := geometry.SideLength(Apothem, n) + Thickness/2

	placements := shape.SideTransforms(centre, Apothem)
	pads := make([]PadLayout, len(placements))
	for i, p := range placements {
		pads[i] = PadLayout{Index: i, Placement: p, Length: length}
	}
	return pads
}

// PrepareRebuild resizes the note list for shape and returns the new layout.
// Callers discard the old pads, including their sounding notes, first.
func PrepareRebuild(s *config.Settings, centre geometry.Vec2) []PadLayout {
	s.ResizeNotes(s.Shape.NumSides())
	return Layout(s.Shape, centre)
}

// RefreshNotes applies the live note list to pads by index
func RefreshNotes(pads []*Pad, s *config.Settings) {
	for _, p := range pads {
		p.Note = s.NoteFor(p.Index)
	}
}

// AngularVelocity is the tombola spin in radians per second
func AngularVelocity(s *config.Settings) float64 {
	return -s.Spin
}

// Gravity is the world gravity vector for the settings
func Gravity(s *config.Settings) geometry.Vec2 {
	return geometry.Vec2{X: 0, Y: -GravityScale * s.Gravity}
}
