package tombola

import (
	"time"

	"go-tombola/midi"
)

// Countdown times one sounding note. It does not advance on the sweep of
// the frame it was started in, and it finishes exactly once.
type Countdown struct {
	Note      midi.Note // the note that was sent, so the note off matches it
	Remaining time.Duration

	pending bool
	done    bool
}

func NewCountdown(note midi.Note, d time.Duration) *Countdown {
	return &Countdown{Note: note, Remaining: d, pending: true}
}

// Tick advances the countdown and reports whether it just finished
func (c *Countdown) Tick(dt time.Duration) bool {
	if c.done {
		return false
	}
	if c.pending {
		c.pending = false
		return false
	}
	c.Remaining -= dt
	if c.Remaining <= 0 {
		c.Remaining = 0
		c.done = true
		return true
	}
	return false
}

func (c *Countdown) Done() bool {
	return c.done
}
