package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"go-tombola/midi"
	"go-tombola/tombola"
)

// Styles is the lipgloss styling shared by the settings widgets
type Styles struct {
	Label    lipgloss.Style
	Value    lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style

	Cursor  rune
	Checked rune
	Blank   rune
	Ball    rune
}

// Row is one line of the settings panel
type Row struct {
	Label string
	Value string

	// Toggle is nil when the row has no enable box
	Toggle *bool
}

// RenderRows renders the settings panel rows, highlighting the selected one
func RenderRows(rows []Row, selected int, st Styles) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.Label))
	}

	var lines []string
	for i, r := range rows {
		cursor := " "
		if i == selected {
			cursor = string(st.Cursor)
		}

		box := "  "
		if r.Toggle != nil {
			if *r.Toggle {
				box = string(st.Checked) + " "
			} else {
				box = string(st.Blank) + " "
			}
		}

		label := fmt.Sprintf("%-*s", width, r.Label)
		value := st.Value.Render(r.Value)
		if r.Toggle != nil && !*r.Toggle {
			value = st.Muted.Render(r.Value)
		}

		line := fmt.Sprintf("%s %s%s  %s", cursor, box, st.Label.Render(label), value)
		if i == selected {
			line = fmt.Sprintf("%s %s%s  %s", st.Selected.Render(cursor), box, st.Selected.Render(label), value)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// RenderBall renders a single ball glyph in the given colour
func RenderBall(c colorful.Color, glyph rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Clamped().Hex()))
	return style.Render(string(glyph))
}

// RenderBallSelector renders every ball size, bracketing the selected one
func RenderBallSelector(selected tombola.Size, st Styles) string {
	var out strings.Builder
	for i, size := range tombola.Sizes() {
		if i > 0 {
			out.WriteString(" ")
		}
		ball := RenderBall(size.Color(), st.Ball)
		if size == selected {
			out.WriteString(st.Selected.Render("[") + ball + " " + st.Selected.Render(size.String()+"]"))
		} else {
			out.WriteString(" " + ball + " " + st.Muted.Render(size.String()) + " ")
		}
	}
	return out.String()
}

// RenderNoteRow renders the pad note list, bracketing the note under the
// cursor when the row is active
func RenderNoteRow(notes []midi.Note, cursor int, active bool, st Styles) string {
	var out strings.Builder
	for i, n := range notes {
		if i > 0 {
			out.WriteString(" ")
		}
		name := fmt.Sprintf("%-2s", n.String())
		if active && i == cursor {
			out.WriteString(st.Selected.Render("[" + name + "]"))
		} else {
			out.WriteString(st.Value.Render(" " + name + " "))
		}
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
