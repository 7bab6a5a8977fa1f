package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-tombola/config"
	"go-tombola/debug"
	"go-tombola/output"
	"go-tombola/sim"
	"go-tombola/theme"
	"go-tombola/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-tombola/config.json)")
	record := flag.String("record", "", "write the performance to this .mid file on exit")
	mode := flag.String("output", "", "output mode: auto, port, synth or none")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if *record != "" {
		cfg.Output.RecordPath = *record
	}
	if *mode != "" {
		cfg.Output.Mode = config.OutputMode(*mode)
	}

	if cfg.Debug || debug.Requested() {
		if err := debug.Enable(); err != nil {
			fmt.Printf("Warning: debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	// Load theme
	palette := theme.Default()
	if cfg.UI.Palette != "" {
		if p, err := theme.LoadGPL(cfg.UI.Palette); err != nil {
			debug.Log("main", "palette: %v", err)
		} else {
			palette = p
		}
	}
	th := theme.New(palette)

	// Output transports (device manager handles hot-plug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := output.Open(ctx, cfg.Output)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	world := sim.New(out.Transport)

	m := tui.NewModel(world, cfg, th)
	m.Devices = out.DeviceEvents()
	m.Notes = out.Notes()
	m.Describe = out.Describe

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := p.Run()

	// Silence everything before saving
	if err := out.Close(); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
	if err := saveConfig(cfg, *configPath); err != nil {
		fmt.Printf("Warning: saving config: %v\n", err)
	}

	if runErr != nil {
		fmt.Printf("Error: %v\n", runErr)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func saveConfig(cfg *config.Config, path string) error {
	if path != "" {
		return cfg.SaveTo(path)
	}
	return cfg.Save()
}
