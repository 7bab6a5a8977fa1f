package midi

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go-tombola/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
)

var sendErrors uint64

// PortTransport sends to a single opened output port. It is safe to Close
// while another goroutine is sending.
type PortTransport struct {
	name string

	mu    sync.Mutex // guards send, close
	send  func(msg gomidi.Message) error
	close func() error
}

// NewPortTransport wraps an already opened sender
func NewPortTransport(name string, send func(msg gomidi.Message) error, close func() error) *PortTransport {
	return &PortTransport{name: name, send: send, close: close}
}

// OpenPort finds an output port by name and opens it
func OpenPort(name string) (*PortTransport, error) {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() != name {
			continue
		}
		send, err := gomidi.SendTo(port)
		if err != nil {
			return nil, fmt.Errorf("open output %q: %w", name, err)
		}
		return NewPortTransport(name, send, port.Close), nil
	}
	return nil, fmt.Errorf("output port %q not found", name)
}

// OutPortNames lists the names of the available output ports
func OutPortNames() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}

func (p *PortTransport) Name() string {
	return p.name
}

func (p *PortTransport) write(msg gomidi.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.send == nil {
		return
	}
	if err := p.send(msg); err != nil {
		n := atomic.AddUint64(&sendErrors, 1)
		debug.LogEvery(50, "midi-out", "send to %s failed: %v (errors=%d)", p.name, err, n)
	}
}

func (p *PortTransport) NoteOn(key, velocity uint8) {
	p.write(noteOnMsg(key, velocity))
}

func (p *PortTransport) NoteOff(key uint8) {
	p.write(noteOffMsg(key))
}

func (p *PortTransport) Panic() {
	p.write(panicMsg())
}

// Close releases the port. Sends after Close are dropped.
func (p *PortTransport) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.send = nil
	if p.close == nil {
		return nil
	}
	closeFn := p.close
	p.close = nil
	return closeFn()
}
