package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-tombola/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "note":
		playNote(os.Args[2:], false)
	case "synth":
		playNote(os.Args[2:], true)
	case "panic":
		panicPort(os.Args[2:])
	case "listen":
		listen(os.Args[2:])
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI port tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                - List all MIDI ports")
	fmt.Println("  note <port> [key]   - Play a note on an output port (default C3)")
	fmt.Println("  synth [key]         - Play a note on the built-in synth")
	fmt.Println("  panic <port>        - Send all-notes-off to an output port")
	fmt.Println("  listen [port]       - Print note-ons from an input port")
	fmt.Println("  poll                - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := gomidi.GetInPorts()
		outs := gomidi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI driver is not responding.")
	}
}

// parseKey reads an optional key number or name like "C3" or "F#2"
func parseKey(args []string) (uint8, error) {
	if len(args) == 0 {
		return midi.C3, nil
	}
	if n, err := strconv.Atoi(args[0]); err == nil {
		if n < 0 || n > 127 {
			return 0, fmt.Errorf("key %d out of range", n)
		}
		return uint8(n), nil
	}

	s := args[0]
	i := strings.IndexAny(s, "-0123456789")
	if i <= 0 {
		return 0, fmt.Errorf("bad key %q", s)
	}
	note, err := midi.ParseNote(s[:i])
	if err != nil {
		return 0, err
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0, fmt.Errorf("bad octave in %q", s)
	}
	return midi.Encode(note, octave), nil
}

func playNote(args []string, synth bool) {
	var t midi.Transport
	var label string

	if synth {
		s := midi.NewSynth()
		if err := s.Init(); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		defer s.Close()
		t, label = s, "built-in synth"
	} else {
		if len(args) == 0 {
			usage()
			return
		}
		p, err := midi.OpenPort(args[0])
		if err != nil {
			fmt.Printf("Error opening port: %v\n", err)
			return
		}
		defer p.Close()
		t, label = p, p.Name()
		args = args[1:]
	}

	key, err := parseKey(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Playing key %d on %s\n", key, label)
	t.NoteOn(key, 100)
	time.Sleep(500 * time.Millisecond)
	t.NoteOff(key)
	// let the release tail finish
	time.Sleep(200 * time.Millisecond)
	fmt.Println("Done!")
}

func panicPort(args []string) {
	if len(args) == 0 {
		usage()
		return
	}
	p, err := midi.OpenPort(args[0])
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}
	defer p.Close()

	p.Panic()
	fmt.Printf("Sent all-notes-off to %s\n", p.Name())
}

func listen(args []string) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	l, err := midi.Listen(name, []string{"Midi Through", "Through Port"})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer l.Close()

	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", l.Name())
	for n := range l.Notes() {
		fmt.Printf("  %s%d  key=%d vel=%d ch=%d\n", n.Note(), n.Octave(), n.Key, n.Velocity, n.Channel)
	}
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect devices to test. Ctrl+C to exit.")

	last := ""
	for {
		names := midi.OutPortNames()
		current := strings.Join(names, ",")

		if current != last {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Outputs: %v\n", names)
			last = current
		}

		time.Sleep(2 * time.Second)
	}
}
