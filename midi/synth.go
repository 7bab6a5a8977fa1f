package midi

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	synthRate = beep.SampleRate(44100)

	voiceAttack  = 5 * time.Millisecond
	voiceRelease = 80 * time.Millisecond
	voiceDecay   = 1.5 // amplitude falls by e every 1/voiceDecay seconds while held
	voiceGain    = 0.2
)

// Synth is a small software instrument used when no MIDI output is
// connected. Each key gets a plucked sine voice mixed into the speaker.
type Synth struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	voices      map[uint8]*voice
	initialized bool
}

// NewSynth creates a synth; call Init before it makes any sound
func NewSynth() *Synth {
	return &Synth{
		mixer:  &beep.Mixer{},
		voices: make(map[uint8]*voice),
	}
}

// Init opens the audio device
func (s *Synth) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if err := speaker.Init(synthRate, synthRate.N(50*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Close silences all voices
func (s *Synth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}

	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.voices = make(map[uint8]*voice)
	s.initialized = false
}

func (s *Synth) NoteOn(key, velocity uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || velocity == 0 {
		return
	}

	v := newVoice(KeyFrequency(key), float64(velocity)/float64(MaxVelocity), synthRate)

	speaker.Lock()
	if old := s.voices[key]; old != nil {
		old.release()
	}
	s.mixer.Add(v)
	speaker.Unlock()

	s.voices[key] = v
}

func (s *Synth) NoteOff(key uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.voices[key]
	if v == nil {
		return
	}
	delete(s.voices, key)

	if s.initialized {
		speaker.Lock()
		v.release()
		speaker.Unlock()
	}
}

func (s *Synth) Panic() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		speaker.Lock()
		for _, v := range s.voices {
			v.release()
		}
		speaker.Unlock()
	}
	s.voices = make(map[uint8]*voice)
}

// KeyFrequency returns the equal-tempered frequency of a MIDI key, A4 = 440Hz
func KeyFrequency(key uint8) float64 {
	return 440 * math.Pow(2, (float64(key)-69)/12)
}

// voice is a sine oscillator with attack, exponential decay and release
type voice struct {
	freq  float64
	phase float64
	gain  float64
	rate  beep.SampleRate

	position     int
	attack       int
	releaseLen   int
	releaseAt    int // -1 while held
	decayPerStep float64
	level        float64
}

func newVoice(freq, gain float64, rate beep.SampleRate) *voice {
	return &voice{
		freq:         freq,
		gain:         gain * voiceGain,
		rate:         rate,
		attack:       rate.N(voiceAttack),
		releaseLen:   rate.N(voiceRelease),
		releaseAt:    -1,
		decayPerStep: math.Exp(-voiceDecay / float64(rate)),
		level:        1,
	}
}

func (v *voice) release() {
	if v.releaseAt < 0 {
		v.releaseAt = v.position
	}
}

func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		env := v.level
		if v.position < v.attack {
			env *= float64(v.position) / float64(v.attack)
		}
		if v.releaseAt >= 0 {
			done := v.position - v.releaseAt
			if done >= v.releaseLen {
				return i, false
			}
			env *= 1 - float64(done)/float64(v.releaseLen)
		}

		val := v.gain * env * math.Sin(2*math.Pi*v.phase)
		samples[i][0] = val
		samples[i][1] = val

		v.phase += v.freq / float64(v.rate)
		v.phase -= math.Floor(v.phase)
		v.level *= v.decayPerStep
		v.position++
	}
	return len(samples), true
}

func (v *voice) Err() error { return nil }
