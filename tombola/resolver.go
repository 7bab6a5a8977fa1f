package tombola

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"go-tombola/config"
	"go-tombola/debug"
	"go-tombola/midi"
	"go-tombola/render"
)

// Renderer accepts colour change requests for pad materials
type Renderer interface {
	SetColor(h render.Handle, c colorful.Color)
}

// Resolver turns pad/ball contacts into queued note events
type Resolver struct {
	Queue    *midi.Queue
	Renderer Renderer
}

// Collide handles the start of one contact between pad and ball moving at
// speed. A note already sounding in the ball's octave is stopped and
// restarted.
func (r *Resolver) Collide(pad *Pad, ball *Ball, speed float64, s *config.Settings) {
	octave := ball.Size.Octave()
	velocity := NoteVelocity(speed, s)
	length := NoteLength(speed, s)

	if prev, ok := pad.Sounding[octave]; ok {
		r.Queue.NoteOff(prev.Note, octave)
	}
	r.Queue.NoteOn(pad.Note, octave, velocity)
	pad.Sounding[octave] = NewCountdown(pad.Note, length)

	if r.Renderer != nil {
		r.Renderer.SetColor(pad.Material, PadHitColor)
	}
	ball.Bounces++

	debug.LogEvery(20, "collide", "pad %d %s%d vel=%d len=%v", pad.Index, pad.Note, octave, velocity, length)
}

// NoteVelocity is the fixed velocity when enabled, otherwise derived from speed
func NoteVelocity(speed float64, s *config.Settings) uint8 {
	if s != nil && s.FixedVelocity.Enabled {
		return s.FixedVelocity.Value
	}
	return midi.ToVelocity(speed)
}

// NoteLength is the fixed length when enabled, otherwise derived from speed
func NoteLength(speed float64, s *config.Settings) time.Duration {
	if s != nil && s.FixedLength.Enabled {
		return s.FixedLength.Duration()
	}
	return midi.ToNoteDuration(speed)
}

// Sweep advances every countdown on pad by dt and queues a note off for
// each one that finishes
func Sweep(pad *Pad, dt time.Duration, q *midi.Queue) {
	for _, octave := range pad.Octaves() {
		c := pad.Sounding[octave]
		if c.Tick(dt) {
			q.NoteOff(c.Note, octave)
			delete(pad.Sounding, octave)
		}
	}
}
