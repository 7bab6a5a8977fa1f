package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

const (
	// AllNotesOff is the channel mode controller sent by Panic
	AllNotesOff uint8 = 0x7B

	// NoteOffVelocity is the release velocity sent with every note off
	NoteOffVelocity uint8 = 0x7F
)

// Event is a note event emitted by the tombola, queued until the frame flushes
type Event struct {
	Type     uint8 // NoteOn, NoteOff
	Note     Note
	Octave   int
	Velocity uint8
}

// On builds a note on event
func On(note Note, octave int, velocity uint8) Event {
	return Event{Type: NoteOn, Note: note, Octave: octave, Velocity: velocity}
}

// Off builds a note off event
func Off(note Note, octave int) Event {
	return Event{Type: NoteOff, Note: note, Octave: octave}
}

// Key returns the encoded MIDI note number
func (e Event) Key() uint8 {
	return Encode(e.Note, e.Octave)
}

func (e Event) String() string {
	switch e.Type {
	case NoteOn:
		return fmt.Sprintf("on %s%d vel=%d", e.Note, e.Octave, e.Velocity)
	case NoteOff:
		return fmt.Sprintf("off %s%d", e.Note, e.Octave)
	}
	return fmt.Sprintf("event 0x%02X %s%d", e.Type, e.Note, e.Octave)
}

// Wire encodings (channel 1)

func noteOnMsg(key, velocity uint8) gomidi.Message {
	return gomidi.NoteOn(0, key&0x7F, velocity&0x7F)
}

func noteOffMsg(key uint8) gomidi.Message {
	return gomidi.NoteOffVelocity(0, key&0x7F, NoteOffVelocity)
}

func panicMsg() gomidi.Message {
	return gomidi.ControlChange(0, AllNotesOff, 0)
}
