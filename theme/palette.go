package theme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type Palette struct {
	Name   string
	Colors []colorful.Color
}

// defaultHex is the built-in palette, dark to bright
var defaultHex = []string{
	"#1a1c2c", "#29366f", "#3b5dc9", "#41a6f6", "#73eff7",
	"#a7f070", "#38b764", "#ffcd75", "#ef7d57", "#f4f4f4",
}

// Default returns the built-in palette
func Default() *Palette {
	p := &Palette{Name: "tombola"}
	for _, h := range defaultHex {
		c, _ := colorful.Hex(h)
		p.Colors = append(p.Colors, c)
	}
	return p
}

func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// ParseGPL reads a GIMP palette
func ParseGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// Parse RGB values (first 3 fields are R G B)
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			r, err1 := strconv.Atoi(fields[0])
			g, err2 := strconv.Atoi(fields[1])
			b, err3 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil && err3 == nil {
				p.Colors = append(p.Colors, colorful.Color{
					R: float64(r) / 255,
					G: float64(g) / 255,
					B: float64(b) / 255,
				})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found")
	}

	return p, nil
}

// Lookup returns interpolated color for normalized value 0-1
func (p *Palette) Lookup(norm float64) colorful.Color {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	// Find the two colors to interpolate between
	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	return p.Colors[i].BlendLab(p.Colors[i+1], frac).Clamped()
}

// Index returns color at specific index (no interpolation)
func (p *Palette) Index(i int) colorful.Color {
	if i < 0 {
		return p.Colors[0]
	}
	if i >= len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[i]
}
