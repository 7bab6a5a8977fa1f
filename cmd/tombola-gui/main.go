package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-tombola/config"
	"go-tombola/debug"
	"go-tombola/geometry"
	"go-tombola/midi"
	"go-tombola/output"
	"go-tombola/sim"
	"go-tombola/tombola"
)

const (
	frameRate = 60
	padWidth  = 5
)

var bgColor = color.RGBA{R: 18, G: 18, B: 24, A: 255}

var errQuit = errors.New("quit")

type game struct {
	world *sim.World
	cfg   *config.Config
	out   *output.Output

	devices <-chan midi.DeviceEvent
	notes   <-chan midi.NoteEvent

	size   tombola.Size
	status string
}

func newGame(world *sim.World, cfg *config.Config, out *output.Output) *game {
	size := tombola.Medium
	if cfg.UI.BallSize != "" {
		if err := size.UnmarshalText([]byte(cfg.UI.BallSize)); err != nil {
			size = tombola.Medium
		}
	}
	return &game{
		world:   world,
		cfg:     cfg,
		out:     out,
		devices: out.DeviceEvents(),
		notes:   out.Notes(),
		size:    size,
		status:  out.Describe(),
	}
}

func (g *game) Update() error {
	g.pollEvents()
	if err := g.handleKeys(); err != nil {
		return err
	}
	g.handleMouse()
	g.world.Step(time.Second/frameRate, &g.cfg.Settings)
	return nil
}

// toScreen flips the y-up world into screen pixels
func (g *game) toScreen(p geometry.Vec2) (float32, float32) {
	b := g.world.Bounds()
	return float32(p.X - b.Min.X), float32(b.Max.Y - p.Y)
}

func (g *game) toWorld(x, y int) geometry.Vec2 {
	b := g.world.Bounds()
	return geometry.Vec2{X: float64(x) + b.Min.X, Y: b.Max.Y - float64(y)}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)

	for _, pad := range g.world.Pads() {
		x0, y0 := g.toScreen(pad.A)
		x1, y1 := g.toScreen(pad.B)
		vector.StrokeLine(screen, x0, y0, x1, y1, padWidth, pad.Color.Clamped(), true)
	}
	for _, ball := range g.world.Balls() {
		x, y := g.toScreen(ball.Position)
		vector.DrawFilledCircle(screen, x, y, float32(ball.Radius()), ball.Size.Color(), true)
	}

	msg := fmt.Sprintf("%s  balls:%d  size:%s  %s\nclick:drop  right:clear  wheel/+-:size  S:shape  C:clear  Esc:quit",
		g.cfg.Settings.Shape, g.world.NumBalls(), g.size, g.status)
	ebitenutil.DebugPrint(screen, msg)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	b := g.world.Bounds()
	return int(b.Width()), int(b.Height())
}

func (g *game) pollEvents() {
	for {
		select {
		case ev, ok := <-g.devices:
			if !ok {
				g.devices = nil
				continue
			}
			g.status = g.out.Describe()
			debug.Log("gui", "device %s %v", ev.Name, ev.Type)
		case note, ok := <-g.notes:
			if !ok {
				g.notes = nil
				continue
			}
			g.world.SpawnBall(geometry.Vec2{X: 0, Y: 100}, tombola.SizeForKey(note.Key))
		default:
			return
		}
	}
}

func (g *game) handleKeys() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return errQuit
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.world.ClearBalls()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		s := &g.cfg.Settings
		s.Shape = s.Shape.Next()
		s.ResizeNotes(s.Shape.NumSides())
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.setSize(g.size.Increment())
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.setSize(g.size.Decrement())
	}
	return nil
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.world.SpawnBall(g.toWorld(mx, my), g.size)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.world.ClearBalls()
	}

	_, wy := ebiten.Wheel()
	switch {
	case wy > 0:
		g.setSize(g.size.Increment())
	case wy < 0:
		g.setSize(g.size.Decrement())
	}
}

func (g *game) setSize(s tombola.Size) {
	g.size = s
	g.cfg.UI.BallSize = s.String()
}

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-tombola/config.json)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Debug || debug.Requested() {
		if err := debug.Enable(); err != nil {
			log.Printf("debug log: %v", err)
		}
		defer debug.Disable()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := output.Open(ctx, cfg.Output)
	if err != nil {
		log.Fatal(err)
	}

	g := newGame(sim.New(out.Transport), cfg, out)

	b := g.world.Bounds()
	ebiten.SetWindowSize(int(b.Width()), int(b.Height()))
	ebiten.SetWindowTitle("go-tombola")
	ebiten.SetTPS(frameRate)

	runErr := ebiten.RunGame(g)

	if err := out.Close(); err != nil {
		log.Printf("output: %v", err)
	}
	if *configPath != "" {
		err = cfg.SaveTo(*configPath)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		log.Printf("saving config: %v", err)
	}

	if runErr != nil && !errors.Is(runErr, errQuit) {
		log.Fatal(runErr)
	}
}
