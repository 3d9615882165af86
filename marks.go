package alphableed

// marks flags positions that are opaque or already scheduled into a frontier.
type marks struct {
	w   int
	set []bool // len = w*h
}

func newMarks(w, h int) marks {
	return marks{w: w, set: make([]bool, w*h)}
}

func (m marks) has(p Position) bool {
	return m.set[p.Y*m.w+p.X]
}

func (m marks) mark(p Position) {
	m.set[p.Y*m.w+p.X] = true
}
