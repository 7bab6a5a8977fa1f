package tui

import (
	"fmt"
	"math"

	"go-tombola/config"
	"go-tombola/midi"
	"go-tombola/widgets"
)

// field is one editable row of the settings panel
type field int

const (
	fieldShape field = iota
	fieldSpin
	fieldBounciness
	fieldGravity
	fieldMaxBalls
	fieldMaxBounces
	fieldVelocity
	fieldLength
	fieldNotes
	numFields
)

var fieldLabels = [numFields]string{
	"Shape", "Spin", "Bounciness", "Gravity",
	"Max balls", "Max bounces", "Velocity", "Length", "Notes",
}

func (f field) String() string {
	if f < 0 || f >= numFields {
		return "?"
	}
	return fieldLabels[f]
}

// slider ranges
const (
	spinMin, spinMax, spinStep             = -2.0, 2.0, 0.1
	bounceMin, bounceMax, bounceStep       = 0.0, 1.0, 0.05
	gravityMin, gravityMax, gravityStep    = 0.0, 1.5, 0.05
	maxBallsMin, maxBallsMax               = 1, 20
	maxBouncesMin, maxBouncesMax           = 1, 10
	lengthMin, lengthMax, lengthStep       = 10, 1000, 10
	velocityMin, velocityMax         uint8 = 0, 127
)

// stepFloat moves v by dir steps, clamps it, and rounds away float drift
func stepFloat(v float64, dir int, step, lo, hi float64) float64 {
	v += float64(dir) * step
	v = math.Round(v/step) * step
	return math.Max(lo, math.Min(hi, v))
}

func stepInt(v, dir, step, lo, hi int) int {
	return max(lo, min(hi, v+dir*step))
}

// adjust changes the value of f by dir (+1 or -1). cursor selects the pad
// note when f is the note list.
func adjust(s *config.Settings, f field, dir, cursor int) {
	switch f {
	case fieldShape:
		if dir > 0 {
			s.Shape = s.Shape.Next()
		} else {
			s.Shape = s.Shape.Prev()
		}
		s.ResizeNotes(s.Shape.NumSides())
	case fieldSpin:
		s.Spin = stepFloat(s.Spin, dir, spinStep, spinMin, spinMax)
	case fieldBounciness:
		s.Bounciness = stepFloat(s.Bounciness, dir, bounceStep, bounceMin, bounceMax)
	case fieldGravity:
		s.Gravity = stepFloat(s.Gravity, dir, gravityStep, gravityMin, gravityMax)
	case fieldMaxBalls:
		s.MaxBalls.Value = stepInt(s.MaxBalls.Value, dir, 1, maxBallsMin, maxBallsMax)
	case fieldMaxBounces:
		s.MaxBounces.Value = stepInt(s.MaxBounces.Value, dir, 1, maxBouncesMin, maxBouncesMax)
	case fieldVelocity:
		v := stepInt(int(s.FixedVelocity.Value), dir, 1, int(velocityMin), int(velocityMax))
		s.FixedVelocity.Value = uint8(v)
	case fieldLength:
		s.FixedLength.Millis = stepInt(s.FixedLength.Millis, dir, lengthStep, lengthMin, lengthMax)
	case fieldNotes:
		if cursor < 0 || cursor >= len(s.Notes) {
			return
		}
		n := (int(s.Notes[cursor]) + dir + midi.NotesPerOctave) % midi.NotesPerOctave
		s.Notes[cursor] = midi.Note(n)
	}
}

// toggle flips the enable box of f, if it has one
func toggle(s *config.Settings, f field) {
	switch f {
	case fieldMaxBalls:
		s.MaxBalls.Enabled = !s.MaxBalls.Enabled
	case fieldMaxBounces:
		s.MaxBounces.Enabled = !s.MaxBounces.Enabled
	case fieldVelocity:
		s.FixedVelocity.Enabled = !s.FixedVelocity.Enabled
	case fieldLength:
		s.FixedLength.Enabled = !s.FixedLength.Enabled
	}
}

// rows builds the settings panel from the live settings
func rows(s *config.Settings, cursor int, selected field, st widgets.Styles) []widgets.Row {
	return []widgets.Row{
		{Label: fieldShape.String(), Value: s.Shape.String()},
		{Label: fieldSpin.String(), Value: fmt.Sprintf("%+.1f", s.Spin)},
		{Label: fieldBounciness.String(), Value: fmt.Sprintf("%.2f", s.Bounciness)},
		{Label: fieldGravity.String(), Value: fmt.Sprintf("%.2f", s.Gravity)},
		{Label: fieldMaxBalls.String(), Value: fmt.Sprint(s.MaxBalls.Value), Toggle: &s.MaxBalls.Enabled},
		{Label: fieldMaxBounces.String(), Value: fmt.Sprint(s.MaxBounces.Value), Toggle: &s.MaxBounces.Enabled},
		{Label: fieldVelocity.String(), Value: fmt.Sprint(s.FixedVelocity.Value), Toggle: &s.FixedVelocity.Enabled},
		{Label: fieldLength.String(), Value: fmt.Sprintf("%d ms", s.FixedLength.Millis), Toggle: &s.FixedLength.Enabled},
		{Label: fieldNotes.String(), Value: widgets.RenderNoteRow(s.Notes, cursor, selected == fieldNotes, st)},
	}
}
