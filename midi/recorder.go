package midi

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	recordTicksPerQuarter = 960
	recordBPM             = 120
	recordTicksPerSecond  = recordTicksPerQuarter * recordBPM / 60
)

// Recorder captures everything sent to it as a single-track Standard MIDI
// File, timestamped by wall clock from the first message
type Recorder struct {
	mu       sync.Mutex
	now      func() time.Time
	start    time.Time
	lastTick uint32
	track    smf.Track
	events   int
}

// NewRecorder creates an empty recording
func NewRecorder() *Recorder {
	return newRecorder(time.Now)
}

func newRecorder(now func() time.Time) *Recorder {
	r := &Recorder{now: now}
	r.track.Add(0, []byte(smf.MetaTempo(recordBPM)))
	return r
}

func (r *Recorder) add(msg gomidi.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.now()
	if r.start.IsZero() {
		r.start = t
	}

	tick := uint32(t.Sub(r.start).Milliseconds() * recordTicksPerSecond / 1000)
	if tick < r.lastTick {
		tick = r.lastTick
	}
	r.track.Add(tick-r.lastTick, []byte(msg))
	r.lastTick = tick
	r.events++
}

func (r *Recorder) NoteOn(key, velocity uint8) {
	r.add(noteOnMsg(key, velocity))
}

func (r *Recorder) NoteOff(key uint8) {
	r.add(noteOffMsg(key))
}

func (r *Recorder) Panic() {
	r.add(panicMsg())
}

// Len returns the number of recorded messages
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events
}

// WriteFile saves the recording as a format 0 SMF
func (r *Recorder) WriteFile(path string) error {
	r.mu.Lock()
	track := make(smf.Track, len(r.track))
	copy(track, r.track)
	r.mu.Unlock()

	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(recordTicksPerQuarter)
	if err := s.Add(track); err != nil {
		return fmt.Errorf("add track: %w", err)
	}
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
