package alphableed

// Neighbors returns the in-bounds 8-connected neighbors of p on a w x h grid.
func Neighbors(p Position, w, h int) []Position {
	return appendNeighbors(make([]Position, 0, 8), p, w, h)
}

func appendNeighbors(dst []Position, p Position, w, h int) []Position {
	for dy := -1; dy <= 1; dy++ {
		ny := p.Y + dy
		if ny < 0 || ny >= h {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			nx := p.X + dx
			if (dx == 0 && dy == 0) || nx < 0 || nx >= w {
				continue
			}
			dst = append(dst, Position{X: nx, Y: ny})
		}
	}
	return dst
}
