package midi

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// recorded is a transport that remembers what it was sent
type recorded struct {
	msgs      []string
	connected bool
}

func (r *recorded) NoteOn(key, velocity uint8) {
	r.msgs = append(r.msgs, On(Note(key%12), int(key)/12-2, velocity).String())
}

func (r *recorded) NoteOff(key uint8) {
	r.msgs = append(r.msgs, Off(Note(key%12), int(key)/12-2).String())
}

func (r *recorded) Panic() {
	r.msgs = append(r.msgs, "panic")
}

func (r *recorded) Connected() bool {
	return r.connected
}

func TestEncodeReference(t *testing.T) {
	if got := Encode(C, 3); got != 0x3C {
		t.Errorf("Encode(C, 3): got 0x%02X, want 0x3C", got)
	}
	if got := Encode(A, 4); got != 69 {
		t.Errorf("Encode(A, 4): got %d, want 69", got)
	}
}

func TestEncodeOctaveStep(t *testing.T) {
	for _, n := range Notes() {
		for octave := -1; octave < 9; octave++ {
			lo, hi := int(Encode(n, octave)), int(Encode(n, octave+1))
			if hi > 127-12 || lo < 12 {
				continue // folded near the edges
			}
			if hi != lo+12 {
				t.Errorf("%s: octave %d -> %d, octave %d -> %d", n, octave, lo, octave+1, hi)
			}
		}
	}
}

func TestEncodeFoldsOutOfRange(t *testing.T) {
	for _, n := range Notes() {
		for _, octave := range []int{-10, -3, 9, 12, 40} {
			got := Encode(n, octave)
			if got > 127 {
				t.Errorf("Encode(%s, %d) = %d out of range", n, octave, got)
			}
			if Note(got%12) != n {
				t.Errorf("Encode(%s, %d) = %d changed pitch class", n, octave, got)
			}
		}
	}
}

func TestNoteNames(t *testing.T) {
	tests := []struct {
		note Note
		want string
	}{
		{C, "C"},
		{CSharp, "C#"},
		{DSharp, "Eb"},
		{GSharp, "Ab"},
		{ASharp, "Bb"},
		{B, "B"},
	}
	for _, tt := range tests {
		if got := tt.note.String(); got != tt.want {
			t.Errorf("Note(%d): got %q, want %q", tt.note, got, tt.want)
		}
		parsed, err := ParseNote(tt.want)
		if err != nil || parsed != tt.note {
			t.Errorf("ParseNote(%q): got %v, %v", tt.want, parsed, err)
		}
	}

	if n, err := ParseNote("A#"); err != nil || n != ASharp {
		t.Errorf("ParseNote(A#): got %v, %v", n, err)
	}
	if _, err := ParseNote("H"); err == nil {
		t.Error("ParseNote(H): expected error")
	}
	if B.Next() != C || C.Prev() != B {
		t.Error("note cycling does not wrap")
	}
}

func TestVelocityClamp(t *testing.T) {
	tests := []struct {
		speed float64
		want  uint8
	}{
		{-100, 0},
		{0, 0},
		{50, 0},
		{400, 63},
		{750, 127},
		{2000, 127},
	}
	for _, tt := range tests {
		if got := ToVelocity(tt.speed); got != tt.want {
			t.Errorf("ToVelocity(%v): got %d, want %d", tt.speed, got, tt.want)
		}
	}
}

func TestVelocityMonotonic(t *testing.T) {
	prev := ToVelocity(MinSpeed)
	for s := MinSpeed; s <= MaxSpeed; s += 0.5 {
		v := ToVelocity(s)
		if v < prev {
			t.Fatalf("ToVelocity(%v) = %d, less than %d", s, v, prev)
		}
		prev = v
	}
}

func TestNoteDuration(t *testing.T) {
	tests := []struct {
		speed float64
		want  time.Duration
	}{
		{10, 0},
		{400, 200 * time.Millisecond},
		{750, 400 * time.Millisecond},
		{5000, 400 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := ToNoteDuration(tt.speed); got != tt.want {
			t.Errorf("ToNoteDuration(%v): got %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestWireEncoding(t *testing.T) {
	if got := []byte(noteOnMsg(0x3C, 100)); !bytes.Equal(got, []byte{0x90, 0x3C, 100}) {
		t.Errorf("note on: got % X", got)
	}
	if got := []byte(noteOffMsg(0x3C)); !bytes.Equal(got, []byte{0x80, 0x3C, 0x7F}) {
		t.Errorf("note off: got % X", got)
	}
	if got := []byte(panicMsg()); !bytes.Equal(got, []byte{0xB0, 0x7B, 0x00}) {
		t.Errorf("panic: got % X", got)
	}
}

func TestQueueFlushOrder(t *testing.T) {
	var q Queue
	q.NoteOn(G, 2, 63)
	q.NoteOff(G, 2)
	q.NoteOn(G, 2, 90)

	if q.Len() != 3 {
		t.Fatalf("queued: got %d, want 3", q.Len())
	}

	out := &recorded{}
	q.Flush(out)

	want := []string{"on G2 vel=63", "off G2", "on G2 vel=90"}
	if len(out.msgs) != len(want) {
		t.Fatalf("flushed %v, want %v", out.msgs, want)
	}
	for i := range want {
		if out.msgs[i] != want[i] {
			t.Errorf("msg %d: got %q, want %q", i, out.msgs[i], want[i])
		}
	}
	if q.Len() != 0 {
		t.Errorf("queue not cleared after flush")
	}

	q.NoteOn(C, 3, 1)
	q.Flush(nil)
	if q.Len() != 0 {
		t.Errorf("nil transport flush should still drain")
	}
}

func TestFanoutAndFallback(t *testing.T) {
	a, b := &recorded{}, &recorded{}
	Fanout{a, b}.NoteOn(Encode(C, 3), 10)
	if len(a.msgs) != 1 || len(b.msgs) != 1 {
		t.Errorf("fanout: got %v and %v", a.msgs, b.msgs)
	}

	port, synth := &recorded{}, &recorded{}
	fb := &Fallback{Primary: port, Secondary: synth}

	fb.NoteOn(Encode(C, 3), 10)
	if len(port.msgs) != 0 || len(synth.msgs) != 1 {
		t.Errorf("disconnected primary: port=%v synth=%v", port.msgs, synth.msgs)
	}

	port.connected = true
	fb.NoteOff(Encode(C, 3))
	if len(port.msgs) != 1 || len(synth.msgs) != 2 {
		t.Errorf("connected primary: port=%v synth=%v", port.msgs, synth.msgs)
	}

	fb.Panic()
	if port.msgs[len(port.msgs)-1] != "panic" || synth.msgs[len(synth.msgs)-1] != "panic" {
		t.Errorf("panic should reach both transports")
	}
}

func TestFallbackSilencesOnSwitch(t *testing.T) {
	port, synth := &recorded{}, &recorded{}
	fb := &Fallback{Primary: port, Secondary: synth}
	key := Encode(C, 3)

	// note starts on the synth, the port appears before it ends
	fb.NoteOn(key, 90)
	port.connected = true
	fb.NoteOff(key)

	want := []string{On(C, 3, 90).String(), "panic"}
	if len(synth.msgs) != 2 || synth.msgs[0] != want[0] || synth.msgs[1] != want[1] {
		t.Errorf("synth: got %v, want %v", synth.msgs, want)
	}
	if len(port.msgs) != 1 || port.msgs[0] != Off(C, 3).String() {
		t.Errorf("port: got %v", port.msgs)
	}

	// and back again when the port goes away
	fb.NoteOn(key, 90)
	port.connected = false
	fb.NoteOff(key)
	if got := port.msgs[len(port.msgs)-1]; got != "panic" {
		t.Errorf("port should be silenced on disconnect, last message %q", got)
	}
	if got := synth.msgs[len(synth.msgs)-1]; got != Off(C, 3).String() {
		t.Errorf("synth last message: got %q", got)
	}

	// no switch, no extra panic
	n := len(synth.msgs)
	fb.NoteOn(key, 90)
	fb.NoteOff(key)
	if len(synth.msgs) != n+2 {
		t.Errorf("steady state sent %v", synth.msgs[n:])
	}
}

func TestPortTransportConcurrentClose(t *testing.T) {
	ports := []string{"USB Synth"}
	var portsMu sync.Mutex

	dm := NewDeviceManager(DeviceOptions{})
	dm.listPorts = func() []string {
		portsMu.Lock()
		defer portsMu.Unlock()
		return append([]string(nil), ports...)
	}
	dm.open = func(name string) (*PortTransport, error) {
		return NewPortTransport(name, func(gomidi.Message) error { return nil }, nil), nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			dm.NoteOn(60, 100)
			dm.NoteOff(60)
		}
	}()

	for i := 0; i < 200; i++ {
		portsMu.Lock()
		if i%2 == 0 {
			ports = nil
		} else {
			ports = []string{"USB Synth"}
		}
		portsMu.Unlock()
		dm.scan()
		// drain so emit never has to drop
		select {
		case <-dm.Events():
		default:
		}
	}
	<-done
}

func TestPortTransport(t *testing.T) {
	var sent [][]byte
	closed := false
	p := NewPortTransport("test", func(msg gomidi.Message) error {
		sent = append(sent, []byte(msg))
		return nil
	}, func() error {
		closed = true
		return nil
	})

	p.NoteOn(60, 100)
	p.NoteOff(60)
	p.Panic()
	if len(sent) != 3 {
		t.Fatalf("sent %d messages, want 3", len(sent))
	}
	if sent[1][0] != NoteOff {
		t.Errorf("second message status: got 0x%02X", sent[1][0])
	}

	p.Close()
	if !closed {
		t.Error("close func not called")
	}
	p.NoteOn(60, 100)
	if len(sent) != 3 {
		t.Error("send after close should be dropped")
	}

	failing := NewPortTransport("broken", func(gomidi.Message) error {
		return errors.New("unplugged")
	}, nil)
	failing.NoteOn(60, 100) // must not panic
}

func TestPickPort(t *testing.T) {
	names := []string{"Midi Through Port-0", "USB Synth", "IAC Driver Bus 1"}

	tests := []struct {
		name string
		opts DeviceOptions
		want string
		ok   bool
	}{
		{"first non excluded", DeviceOptions{Excluded: []string{"through"}}, "USB Synth", true},
		{"preferred", DeviceOptions{Preferred: []string{"iac"}, Excluded: []string{"through"}}, "IAC Driver Bus 1", true},
		{"exact", DeviceOptions{PortName: "USB Synth"}, "USB Synth", true},
		{"exact missing", DeviceOptions{PortName: "Nope"}, "", false},
		{"all excluded", DeviceOptions{Excluded: []string{"through", "usb", "iac"}}, "", false},
	}
	for _, tt := range tests {
		got, ok := pickPort(names, tt.opts)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s: got %q %v, want %q %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDeviceManagerHotPlug(t *testing.T) {
	ports := []string{"USB Synth"}
	var sent int

	dm := NewDeviceManager(DeviceOptions{})
	dm.listPorts = func() []string { return ports }
	dm.open = func(name string) (*PortTransport, error) {
		return NewPortTransport(name, func(gomidi.Message) error {
			sent++
			return nil
		}, nil), nil
	}

	dm.NoteOn(60, 1) // nothing connected yet
	if sent != 0 {
		t.Fatalf("sent before connect")
	}

	dm.scan()
	if !dm.Connected() || dm.Name() != "USB Synth" {
		t.Fatalf("expected connection, got %q", dm.Name())
	}
	if e := <-dm.Events(); e.Type != DeviceConnected {
		t.Errorf("event: got %v, want connected", e.Type)
	}

	dm.NoteOn(60, 1)
	if sent != 1 {
		t.Errorf("sent: got %d, want 1", sent)
	}

	ports = nil
	dm.scan()
	if dm.Connected() {
		t.Error("still connected after port disappeared")
	}
	if sent != 2 {
		t.Errorf("disconnect should send all-notes-off: sent %d, want 2", sent)
	}
	if e := <-dm.Events(); e.Type != DeviceDisconnected || e.Name != "USB Synth" {
		t.Errorf("event: got %+v, want disconnect", e)
	}
}

func TestListenerForwardsNoteOns(t *testing.T) {
	l := newListener("test")
	l.handle(gomidi.NoteOn(0, 48, 90))
	l.handle(gomidi.NoteOn(0, 50, 0)) // note-on with zero velocity is a release
	l.handle(gomidi.NoteOff(0, 48))

	select {
	case e := <-l.Notes():
		if e.Key != 48 || e.Velocity != 90 {
			t.Errorf("got %+v", e)
		}
		if e.Note() != C || e.Octave() != 2 {
			t.Errorf("key 48: got %s%d, want C2", e.Note(), e.Octave())
		}
	default:
		t.Fatal("no note forwarded")
	}

	select {
	case e := <-l.Notes():
		t.Errorf("unexpected event %+v", e)
	default:
	}
}

func TestRecorderWritesFile(t *testing.T) {
	clock := time.Unix(100, 0)
	r := newRecorder(func() time.Time { return clock })

	r.NoteOn(Encode(G, 2), 63)
	clock = clock.Add(200 * time.Millisecond)
	r.NoteOff(Encode(G, 2))
	r.Panic()

	if r.Len() != 3 {
		t.Errorf("recorded %d, want 3", r.Len())
	}
	if r.lastTick != recordTicksPerSecond/5 {
		t.Errorf("last tick: got %d, want %d", r.lastTick, recordTicksPerSecond/5)
	}

	path := filepath.Join(t.TempDir(), "take.mid")
	if err := r.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("MThd")) {
		t.Errorf("not a standard midi file: % X", data[:4])
	}

	s, err := smf.ReadFile(path)
	if err != nil {
		t.Fatalf("smf.ReadFile: %v", err)
	}
	if len(s.Tracks) != 1 {
		t.Errorf("tracks: got %d, want 1", len(s.Tracks))
	}
}

func TestVoiceReleaseEnds(t *testing.T) {
	v := newVoice(440, 1, synthRate)
	buf := make([][2]float64, 512)

	n, ok := v.Stream(buf)
	if n != len(buf) || !ok {
		t.Fatalf("held voice: got %d %v", n, ok)
	}

	v.release()
	total := 0
	for i := 0; i < 1000; i++ {
		n, ok = v.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	if ok {
		t.Fatal("released voice never finished")
	}
	if limit := synthRate.N(voiceRelease); total > limit {
		t.Errorf("release streamed %d samples, want at most %d", total, limit)
	}
}

func TestKeyFrequency(t *testing.T) {
	if f := KeyFrequency(69); f != 440 {
		t.Errorf("A4: got %v", f)
	}
	if f := KeyFrequency(81); f < 879.99 || f > 880.01 {
		t.Errorf("A5: got %v", f)
	}
}
