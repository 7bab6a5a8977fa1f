package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Ball    rune // ● ball centre
	Pad     rune // █ pad segment
	Sound   rune // ♪ pad sounding marker
	Empty   rune // canvas background
	Cursor  rune // ▸ selected settings row
	Checked rune // ■ enabled toggle
	Blank   rune // □ disabled toggle
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Default()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Ball:    '●',
			Pad:     '█',
			Sound:   '♪',
			Empty:   ' ',
			Cursor:  '▸',
			Checked: '■',
			Blank:   '□',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.2
	RoleFG      = 1.0
	RoleAccent  = 0.4
	RoleCursor  = 0.5
	RoleActive  = 0.6
	RoleWarning = 0.8
	RoleSuccess = 0.7
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return t.Color(RoleBG)
}

func (t *Theme) Surface() lipgloss.Color {
	return t.Color(RoleSurface)
}

func (t *Theme) FG() lipgloss.Color {
	return t.Color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.Color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.Color(RoleMuted)
}

func (t *Theme) Active() lipgloss.Color {
	return t.Color(RoleActive)
}

func (t *Theme) Cursor() lipgloss.Color {
	return t.Color(RoleCursor)
}

func (t *Theme) Warning() lipgloss.Color {
	return t.Color(RoleWarning)
}

func (t *Theme) Success() lipgloss.Color {
	return t.Color(RoleSuccess)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return Lipgloss(t.Palette.Lookup(norm))
}

// Lipgloss converts a simulation colour for terminal output
func Lipgloss(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Clamped().Hex())
}
