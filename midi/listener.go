package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// NoteEvent is a note played on an input device
type NoteEvent struct {
	Key      uint8
	Velocity uint8
	Channel  uint8
}

// Note returns the pitch class of the played key
func (e NoteEvent) Note() Note {
	return Note(e.Key % NotesPerOctave)
}

// Octave returns the octave of the played key, C3 = 0x3C
func (e NoteEvent) Octave() int {
	return int(e.Key)/NotesPerOctave - (int(C3)/NotesPerOctave - ReferenceOctave)
}

// Listener forwards note-ons from a MIDI input
type Listener struct {
	name     string
	stopFunc func()
	noteChan chan NoteEvent
}

func newListener(name string) *Listener {
	return &Listener{
		name:     name,
		noteChan: make(chan NoteEvent, 32),
	}
}

// Listen opens the named input port, or the first input not matching
// excluded when name is empty
func Listen(name string, excluded []string) (*Listener, error) {
	for _, in := range gomidi.GetInPorts() {
		if name != "" && in.String() != name {
			continue
		}
		if name == "" && matchesAny(in.String(), excluded) {
			continue
		}

		l := newListener(in.String())
		stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
			l.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input %q: %w", in.String(), err)
		}
		l.stopFunc = stop
		return l, nil
	}
	if name == "" {
		return nil, fmt.Errorf("no input port available")
	}
	return nil, fmt.Errorf("input port %q not found", name)
}

func (l *Listener) handle(msg gomidi.Message) {
	var channel, key, velocity uint8
	if msg.GetNoteOn(&channel, &key, &velocity) && velocity > 0 {
		select {
		case l.noteChan <- NoteEvent{Key: key, Velocity: velocity, Channel: channel}:
		default:
		}
	}
}

func (l *Listener) Name() string {
	return l.name
}

func (l *Listener) Notes() <-chan NoteEvent {
	return l.noteChan
}

func (l *Listener) Close() error {
	if l.stopFunc != nil {
		l.stopFunc()
		l.stopFunc = nil
	}
	return nil
}
