package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-tombola/debug"
)

// DeviceEvent is emitted when the output port connects/disconnects
type DeviceEvent struct {
	Type DeviceEventType
	Name string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceOptions selects which output port the manager connects to
type DeviceOptions struct {
	PortName  string   // exact port; empty = pick automatically
	Preferred []string // substrings picked first when PortName is empty
	Excluded  []string // substrings never auto-connected
	PollRate  time.Duration
}

// DeviceManager keeps one MIDI output connected across hot-plug and acts as
// a Transport for it. Messages sent while nothing is connected are dropped.
type DeviceManager struct {
	opts DeviceOptions

	mu   sync.RWMutex
	port *PortTransport

	events chan DeviceEvent

	listPorts func() []string
	open      func(name string) (*PortTransport, error)
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(opts DeviceOptions) *DeviceManager {
	if opts.PollRate <= 0 {
		opts.PollRate = time.Second
	}
	return &DeviceManager{
		opts:      opts,
		events:    make(chan DeviceEvent, 16),
		listPorts: OutPortNames,
		open:      OpenPort,
	}
}

// Events returns a channel of connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Connected reports whether an output port is open
func (dm *DeviceManager) Connected() bool {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.port != nil
}

// Name returns the connected port name, or ""
func (dm *DeviceManager) Name() string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	if dm.port == nil {
		return ""
	}
	return dm.port.Name()
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.opts.PollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// Port enumeration can hang on some backends - give up on this scan if so
	ch := make(chan []string, 1)
	go func() {
		ch <- dm.listPorts()
	}()

	var names []string
	select {
	case names = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("midi-dev", "port scan timed out")
		return
	}

	dm.mu.RLock()
	current := dm.port
	dm.mu.RUnlock()

	if current != nil {
		for _, n := range names {
			if n == current.Name() {
				return // still there
			}
		}
		debug.Log("midi-dev", "output disappeared: %s", current.Name())
		dm.mu.Lock()
		dm.port = nil
		dm.mu.Unlock()
		// best effort, the device may already be gone
		current.Panic()
		current.Close()
		dm.emit(DeviceEvent{Type: DeviceDisconnected, Name: current.Name()})
	}

	name, ok := pickPort(names, dm.opts)
	if !ok {
		return
	}

	port, err := dm.open(name)
	if err != nil {
		debug.Log("midi-dev", "connect %s failed: %v", name, err)
		return
	}

	dm.mu.Lock()
	dm.port = port
	dm.mu.Unlock()

	debug.Log("midi-dev", "connected: %s", name)
	dm.emit(DeviceEvent{Type: DeviceConnected, Name: name})
}

func (dm *DeviceManager) emit(e DeviceEvent) {
	select {
	case dm.events <- e:
	default:
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	port := dm.port
	dm.port = nil
	dm.mu.Unlock()

	if port != nil {
		port.Panic()
		port.Close()
	}
}

func (dm *DeviceManager) current() *PortTransport {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.port
}

func (dm *DeviceManager) NoteOn(key, velocity uint8) {
	if p := dm.current(); p != nil {
		p.NoteOn(key, velocity)
	}
}

func (dm *DeviceManager) NoteOff(key uint8) {
	if p := dm.current(); p != nil {
		p.NoteOff(key)
	}
}

func (dm *DeviceManager) Panic() {
	if p := dm.current(); p != nil {
		p.Panic()
	}
}

// pickPort chooses the port to connect to: the configured name if present,
// otherwise the first preferred match, otherwise the first port not excluded
func pickPort(names []string, opts DeviceOptions) (string, bool) {
	if opts.PortName != "" {
		for _, n := range names {
			if n == opts.PortName {
				return n, true
			}
		}
		return "", false
	}

	var candidates []string
	for _, n := range names {
		if !matchesAny(n, opts.Excluded) {
			candidates = append(candidates, n)
		}
	}

	for _, pattern := range opts.Preferred {
		for _, n := range candidates {
			if matchesAny(n, []string{pattern}) {
				return n, true
			}
		}
	}

	if len(candidates) > 0 {
		return candidates[0], true
	}
	return "", false
}

func matchesAny(name string, patterns []string) bool {
	name = strings.ToLower(name)
	for _, p := range patterns {
		if p != "" && strings.Contains(name, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
