package midi

import (
	"sync"

	"go-tombola/debug"
)

// Transport is a MIDI output. Sends are fire-and-forget: implementations
// swallow their own errors so a missing device never stalls the simulation.
type Transport interface {
	NoteOn(key, velocity uint8)
	NoteOff(key uint8)
	Panic() // all notes off
}

// Send dispatches a queued event to t
func Send(t Transport, e Event) {
	switch e.Type {
	case NoteOn:
		t.NoteOn(e.Key(), e.Velocity)
	case NoteOff:
		t.NoteOff(e.Key())
	}
}

// Nop discards everything
type Nop struct{}

func (Nop) NoteOn(key, velocity uint8) {}
func (Nop) NoteOff(key uint8)          {}
func (Nop) Panic()                     {}

// Fanout sends every message to each of its transports in order
type Fanout []Transport

func (f Fanout) NoteOn(key, velocity uint8) {
	for _, t := range f {
		t.NoteOn(key, velocity)
	}
}

func (f Fanout) NoteOff(key uint8) {
	for _, t := range f {
		t.NoteOff(key)
	}
}

func (f Fanout) Panic() {
	for _, t := range f {
		t.Panic()
	}
}

// Connector is a transport that may or may not currently reach a device
type Connector interface {
	Transport
	Connected() bool
}

// Fallback routes to Primary while it is connected and to Secondary
// otherwise. On every switch-over the transport being left gets a Panic, so a
// note started on one side is never left waiting for a note off that went to
// the other. Panic always goes to both.
type Fallback struct {
	Primary   Connector
	Secondary Transport

	mu   sync.Mutex
	last Transport
}

func (f *Fallback) active() Transport {
	var next Transport = Nop{}
	switch {
	case f.Primary != nil && f.Primary.Connected():
		next = f.Primary
	case f.Secondary != nil:
		next = f.Secondary
	}

	if f.last != nil && f.last != next {
		debug.Log("midi-out", "switching output, silencing previous")
		f.last.Panic()
	}
	f.last = next
	return next
}

func (f *Fallback) NoteOn(key, velocity uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active().NoteOn(key, velocity)
}

func (f *Fallback) NoteOff(key uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active().NoteOff(key)
}

func (f *Fallback) Panic() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Primary != nil {
		f.Primary.Panic()
	}
	if f.Secondary != nil {
		f.Secondary.Panic()
	}
}
