package tombola

import (
	"sort"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"go-tombola/midi"
	"go-tombola/render"
)

var (
	PadIdleColor = colorful.LinearRgb(0.3, 0.3, 0.3)
	PadHitColor  = colorful.LinearRgb(5.0/30, 5.0/30, 1)
)

// Ball is one dropped ball
type Ball struct {
	Size      Size
	Bounces   int
	SpawnTime time.Duration // simulation clock; strictly increasing per spawn
}

// Pad is one side of the tombola. Sounding holds at most one countdown per
// octave.
type Pad struct {
	Index    int
	Note     midi.Note
	Material render.Handle
	Sounding map[int]*Countdown
}

func NewPad(index int, note midi.Note, material render.Handle) *Pad {
	return &Pad{
		Index:    index,
		Note:     note,
		Material: material,
		Sounding: make(map[int]*Countdown),
	}
}

// Octaves returns the sounding octaves in ascending order
func (p *Pad) Octaves() []int {
	octaves := make([]int, 0, len(p.Sounding))
	for o := range p.Sounding {
		octaves = append(octaves, o)
	}
	sort.Ints(octaves)
	return octaves
}
