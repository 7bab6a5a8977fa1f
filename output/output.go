package output

import (
	"context"
	"fmt"

	"go-tombola/config"
	"go-tombola/debug"
	"go-tombola/midi"
)

// Output is the set of MIDI destinations and sources opened from config
type Output struct {
	Transport midi.Transport

	Devices  *midi.DeviceManager
	Synth    *midi.Synth
	Recorder *midi.Recorder
	Listener *midi.Listener

	recordPath string
	cancel     context.CancelFunc
}

// Open builds the transport described by cfg. Device polling runs until ctx
// is cancelled or Close is called.
func Open(ctx context.Context, cfg config.OutputConfig) (*Output, error) {
	ctx, cancel := context.WithCancel(ctx)
	o := &Output{cancel: cancel, recordPath: cfg.RecordPath}

	var targets midi.Fanout

	switch cfg.Mode {
	case config.OutputAuto, "":
		o.Devices = o.startDevices(ctx, cfg)
		o.Synth = midi.NewSynth()
		var fallback midi.Transport = o.Synth
		if err := o.Synth.Init(); err != nil {
			debug.Log("output", "synth unavailable: %v", err)
			fallback = midi.Nop{}
		}
		targets = append(targets, &midi.Fallback{Primary: o.Devices, Secondary: fallback})

	case config.OutputPort:
		o.Devices = o.startDevices(ctx, cfg)
		targets = append(targets, o.Devices)

	case config.OutputSynth:
		o.Synth = midi.NewSynth()
		if err := o.Synth.Init(); err != nil {
			cancel()
			return nil, fmt.Errorf("start synth: %w", err)
		}
		targets = append(targets, o.Synth)

	case config.OutputNone:

	default:
		cancel()
		return nil, fmt.Errorf("unknown output mode %q", cfg.Mode)
	}

	if cfg.RecordPath != "" {
		o.Recorder = midi.NewRecorder()
		targets = append(targets, o.Recorder)
	}

	if cfg.Input {
		l, err := midi.Listen(cfg.InputPort, cfg.Excluded)
		if err != nil {
			debug.Log("output", "no midi input: %v", err)
		} else {
			debug.Log("output", "listening on %s", l.Name())
			o.Listener = l
		}
	}

	o.Transport = targets
	return o, nil
}

func (o *Output) startDevices(ctx context.Context, cfg config.OutputConfig) *midi.DeviceManager {
	dm := midi.NewDeviceManager(midi.DeviceOptions{
		PortName:  cfg.PortName,
		Preferred: cfg.Preferred,
		Excluded:  cfg.Excluded,
	})
	go dm.Run(ctx)
	return dm
}

// Notes returns note-ons from the MIDI input, or nil when there is none
func (o *Output) Notes() <-chan midi.NoteEvent {
	if o.Listener == nil {
		return nil
	}
	return o.Listener.Notes()
}

// DeviceEvents returns output port changes, or nil when no port is used
func (o *Output) DeviceEvents() <-chan midi.DeviceEvent {
	if o.Devices == nil {
		return nil
	}
	return o.Devices.Events()
}

// Describe names where notes are going right now
func (o *Output) Describe() string {
	switch {
	case o.Devices != nil && o.Devices.Connected():
		return o.Devices.Name()
	case o.Synth != nil:
		return "built-in synth"
	case o.Devices != nil:
		return "waiting for MIDI port"
	}
	return "muted"
}

// Close silences every destination, stops polling and writes the recording
func (o *Output) Close() error {
	if o.Transport != nil {
		o.Transport.Panic()
	}
	o.cancel()

	if o.Listener != nil {
		o.Listener.Close()
	}
	if o.Synth != nil {
		o.Synth.Close()
	}

	if o.Recorder != nil && o.Recorder.Len() > 0 {
		if err := o.Recorder.WriteFile(o.recordPath); err != nil {
			return fmt.Errorf("save recording: %w", err)
		}
		debug.Log("output", "recorded %d messages to %s", o.Recorder.Len(), o.recordPath)
	}
	return nil
}
