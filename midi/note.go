package midi

import "fmt"

// Note is a pitch class, independent of octave
type Note uint8

const (
	C Note = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

const (
	// ReferenceOctave is the octave the base note values are defined at
	ReferenceOctave = 3
	NotesPerOctave  = 12

	C3 uint8 = 0x3C
)

// display names, flats where a keyboard player would expect them
var noteNames = [NotesPerOctave]string{
	"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B",
}

// alternative spellings accepted when parsing
var noteAliases = map[string]Note{
	"Db": CSharp,
	"D#": DSharp,
	"Gb": FSharp,
	"G#": GSharp,
	"A#": ASharp,
}

// Notes returns the twelve pitch classes in chromatic order
func Notes() []Note {
	notes := make([]Note, NotesPerOctave)
	for i := range notes {
		notes[i] = Note(i)
	}
	return notes
}

func (n Note) String() string {
	if int(n) >= len(noteNames) {
		return fmt.Sprintf("Note(%d)", uint8(n))
	}
	return noteNames[n]
}

// Next steps up a semitone, wrapping B to C
func (n Note) Next() Note {
	return Note((int(n) + 1) % NotesPerOctave)
}

// Prev steps down a semitone, wrapping C to B
func (n Note) Prev() Note {
	return Note((int(n) + NotesPerOctave - 1) % NotesPerOctave)
}

// Encode returns the MIDI note number of this pitch class at octave.
func (n Note) Encode(octave int) uint8 {
	return Encode(n, octave)
}

// Encode maps a pitch class and octave to a MIDI note number: the pitch
// class's value at ReferenceOctave shifted by 12 per octave. Results that
// would fall outside 0-127 are folded back by whole octaves so the pitch
// class is kept.
func Encode(n Note, octave int) uint8 {
	value := int(C3) + int(n)%NotesPerOctave + (octave-ReferenceOctave)*NotesPerOctave
	for value < 0 {
		value += NotesPerOctave
	}
	for value > 127 {
		value -= NotesPerOctave
	}
	return uint8(value)
}

// ParseNote accepts display names and the sharp/flat aliases
func ParseNote(name string) (Note, error) {
	for i, n := range noteNames {
		if n == name {
			return Note(i), nil
		}
	}
	if n, ok := noteAliases[name]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("unknown note %q", name)
}

func (n Note) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Note) UnmarshalText(text []byte) error {
	parsed, err := ParseNote(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
