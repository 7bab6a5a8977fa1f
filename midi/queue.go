package midi

// Queue collects events during a frame so the simulation never touches the
// transport directly
type Queue struct {
	events []Event
}

func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

func (q *Queue) NoteOn(note Note, octave int, velocity uint8) {
	q.Push(On(note, octave, velocity))
}

func (q *Queue) NoteOff(note Note, octave int) {
	q.Push(Off(note, octave))
}

// Len returns the number of pending events
func (q *Queue) Len() int {
	return len(q.events)
}

// Events returns the pending events without removing them
func (q *Queue) Events() []Event {
	return q.events
}

// Drain removes and returns all pending events
func (q *Queue) Drain() []Event {
	events := q.events
	q.events = nil
	return events
}

// Flush sends pending events to t in emission order, then clears the queue.
// A nil transport drops them.
func (q *Queue) Flush(t Transport) {
	for _, e := range q.Drain() {
		if t != nil {
			Send(t, e)
		}
	}
}
