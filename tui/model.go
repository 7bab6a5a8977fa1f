package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-tombola/config"
	"go-tombola/debug"
	"go-tombola/geometry"
	"go-tombola/midi"
	"go-tombola/sim"
	"go-tombola/theme"
	"go-tombola/tombola"
	"go-tombola/widgets"
)

const (
	frameRate = 60
	maxFrame  = 100 * time.Millisecond

	// canvasTop is the first terminal row of the canvas: blank line, header
	canvasTop   = 2
	panelWidth  = 44
	footerLines = 3
)

// inputSpawn is where balls triggered from a MIDI keyboard appear
var inputSpawn = geometry.Vec2{X: 0, Y: 100}

type Model struct {
	World  *sim.World
	Config *config.Config
	Theme  *theme.Theme

	// Devices and Notes are optional; nil channels are never read
	Devices <-chan midi.DeviceEvent
	Notes   <-chan midi.NoteEvent

	// Describe names where notes go, shown in the header
	Describe func() string

	size         tombola.Size
	showSettings bool
	field        field
	noteCursor   int
	width        int
	height       int
	last         time.Time
	status       string
	quitting     bool
}

type TickMsg time.Time

type DeviceEventMsg midi.DeviceEvent

type NoteMsg midi.NoteEvent

func NewModel(world *sim.World, cfg *config.Config, th *theme.Theme) Model {
	size := tombola.Medium
	if cfg.UI.BallSize != "" {
		if err := size.UnmarshalText([]byte(cfg.UI.BallSize)); err != nil {
			debug.Log("tui", "ball size %q: %v", cfg.UI.BallSize, err)
			size = tombola.Medium
		}
	}
	return Model{
		World:  world,
		Config: cfg,
		Theme:  th,
		size:   size,
		width:  80,
		height: 24,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func ListenForDevices(events <-chan midi.DeviceEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func ListenForNotes(notes <-chan midi.NoteEvent) tea.Cmd {
	if notes == nil {
		return nil
	}
	return func() tea.Msg {
		note, ok := <-notes
		if !ok {
			return nil
		}
		return NoteMsg(note)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(),
		ListenForDevices(m.Devices),
		ListenForNotes(m.Notes),
	)
}

// Size returns the ball size new balls are spawned with
func (m Model) Size() tombola.Size {
	return m.size
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case TickMsg:
		now := time.Time(msg)
		dt := time.Second / frameRate
		if !m.last.IsZero() {
			dt = min(max(now.Sub(m.last), 0), maxFrame)
		}
		m.last = now
		m.World.Step(dt, &m.Config.Settings)
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case tea.MouseMsg:
		m.handleMouse(msg)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.status = "connected " + event.Name
		case midi.DeviceDisconnected:
			m.status = "disconnected " + event.Name
		}
		debug.Log("tui", "%s", m.status)
		return m, ListenForDevices(m.Devices)

	case NoteMsg:
		note := midi.NoteEvent(msg)
		m.World.SpawnBall(inputSpawn, tombola.SizeForKey(note.Key))
		return m, ListenForNotes(m.Notes)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	s := &m.Config.Settings

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.showSettings = !m.showSettings
		return m, nil

	case "c":
		m.World.ClearBalls()
		return m, nil

	case "+", "=":
		m.setSize(m.size.Increment())
		return m, nil

	case "-", "_":
		m.setSize(m.size.Decrement())
		return m, nil

	case "s":
		adjust(s, fieldShape, 1, 0)
		m.noteCursor = min(m.noteCursor, len(s.Notes)-1)
		return m, nil

	case " ", "enter":
		// drop a ball above the centre
		m.World.SpawnBall(inputSpawn, m.size)
		return m, nil
	}

	if !m.showSettings {
		return m, nil
	}

	switch key {
	case "up", "k":
		m.field = (m.field + numFields - 1) % numFields
	case "down", "j":
		m.field = (m.field + 1) % numFields
	case "left", "h":
		adjust(s, m.field, -1, m.noteCursor)
	case "right", "l":
		adjust(s, m.field, 1, m.noteCursor)
	case "[":
		m.noteCursor = max(m.noteCursor-1, 0)
	case "]":
		m.noteCursor = min(m.noteCursor+1, len(s.Notes)-1)
	case "t":
		toggle(s, m.field)
	}
	m.noteCursor = max(min(m.noteCursor, len(s.Notes)-1), 0)
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		v := m.viewport()
		col, row := msg.X, msg.Y-canvasTop
		if col < 0 || col >= v.cols || row < 0 || row >= v.rows {
			return
		}
		m.World.SpawnBall(v.toWorld(col, row), m.size)
	case tea.MouseButtonRight:
		m.World.ClearBalls()
	case tea.MouseButtonWheelUp:
		m.setSize(m.size.Increment())
	case tea.MouseButtonWheelDown:
		m.setSize(m.size.Decrement())
	}
}

func (m *Model) setSize(s tombola.Size) {
	m.size = s
	m.Config.UI.BallSize = s.String()
}

// viewport fits the world bounds into the space left for the canvas
func (m Model) viewport() viewport {
	cols := m.width
	if m.showSettings {
		cols -= panelWidth
	}
	rows := m.height - canvasTop - footerLines
	return newViewport(m.World.Bounds(), cols, rows)
}

func (m Model) styles() widgets.Styles {
	return widgets.Styles{
		Label:    lipgloss.NewStyle().Foreground(m.Theme.FG()),
		Value:    lipgloss.NewStyle().Foreground(m.Theme.Accent()),
		Selected: lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(m.Theme.Muted()),
		Cursor:   m.Theme.Symbols.Cursor,
		Checked:  m.Theme.Symbols.Checked,
		Blank:    m.Theme.Symbols.Blank,
		Ball:     m.Theme.Symbols.Ball,
	}
}

func (m Model) renderCanvas() string {
	sym := m.Theme.Symbols
	c := newCanvas(m.viewport(), sym.Empty)

	for _, pad := range m.World.Pads() {
		c.line(pad.A, pad.B, sym.Pad, theme.Lipgloss(pad.Color))
		if len(pad.Sounding) > 0 {
			mid := pad.A.Add(pad.B).Scale(0.5)
			c.point(mid, sym.Sound, m.Theme.Warning())
		}
	}
	for _, ball := range m.World.Balls() {
		c.point(ball.Position, sym.Ball, theme.Lipgloss(ball.Size.Color()))
	}
	return c.String()
}

func (m Model) renderPanel() string {
	st := m.styles()
	s := &m.Config.Settings

	var out strings.Builder
	out.WriteString(RenderTitle("Settings", m.Theme))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderRows(rows(s, m.noteCursor, m.field, st), int(m.field), st))
	out.WriteString("\n\n")
	out.WriteString(st.Muted.Render(widgets.RenderKeyHelp([]widgets.KeySection{{
		Keys: []widgets.KeyBinding{
			{Key: "up/down", Desc: "select"},
			{Key: "left/right", Desc: "change"},
			{Key: "t", Desc: "enable/disable"},
			{Key: "[ ]", Desc: "pick pad note"},
		},
	}})))
	return lipgloss.NewStyle().Width(panelWidth).PaddingLeft(2).Render(out.String())
}

// RenderTitle renders a section title in the accent colour
func RenderTitle(title string, th *theme.Theme) string {
	return lipgloss.NewStyle().Foreground(th.Accent()).Bold(true).Render(title)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	dest := "muted"
	if m.Describe != nil {
		dest = m.Describe()
	}
	shape := m.Config.Settings.Shape
	header := headerStyle.Render(fmt.Sprintf("go-tombola  %s  balls:%d  %s",
		shape, m.World.NumBalls(), dest))
	if m.status != "" {
		header += dimStyle.Render("  " + m.status)
	}

	body := m.renderCanvas()
	if m.showSettings {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderPanel())
	}

	var recent []string
	for _, e := range m.World.Recent() {
		recent = append(recent, e.String())
	}

	help := dimStyle.Render("click:drop  right:clear  wheel/+-:size  s:shape  tab:settings  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(body)
	out.WriteString("\n")
	out.WriteString(widgets.RenderBallSelector(m.size, m.styles()))
	out.WriteString("  ")
	out.WriteString(dimStyle.Render(strings.Join(recent, "  ")))
	out.WriteString("\n")
	out.WriteString(help)

	return out.String()
}
