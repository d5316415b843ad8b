package glyph

import "github.com/katalvlaran/omredit/geom"

// Connectivity selects neighbor connectivity: orthogonal (Conn4) or including diagonals (Conn8).
type Connectivity int

const (
	// Conn4 uses N, E, S, W neighbours.
	Conn4 Connectivity = iota
	// Conn8 adds the diagonals.
	Conn8
)

var (
	conn4 = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	conn8 = [][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
)

// Components finds every connected foreground region of buf and returns one
// glyph per region, ordered by the row-major position of their first pixel.
//
// Time:   O(W·H·d), where d = 4 or 8.
// Memory: O(W·H) for visited flags.
func Components(buf *Buffer, conn Connectivity) []*Glyph {
	r := buf.Bounds()
	if r.Empty() {
		return nil
	}
	offsets := conn4
	if conn == Conn8 {
		offsets = conn8
	}
	seen := make([]bool, r.W*r.H)
	var comps []*Glyph

	for y := r.Y; y < r.MaxY(); y++ {
		for x := r.X; x < r.MaxX(); x++ {
			i0, _ := buf.index(x, y)
			if !buf.bits[i0] || seen[i0] {
				continue
			}
			// BFS to collect component
			queue := []geom.Point{{X: x, Y: y}}
			seen[i0] = true
			for qi := 0; qi < len(queue); qi++ {
				u := queue[qi]
				for _, d := range offsets {
					vx, vy := u.X+d[0], u.Y+d[1]
					vi, ok := buf.index(vx, vy)
					if !ok || !buf.bits[vi] || seen[vi] {
						continue
					}
					seen[vi] = true
					queue = append(queue, geom.Point{X: vx, Y: vy})
				}
			}
			g, err := New(queue)
			if err == nil {
				comps = append(comps, g)
			}
		}
	}

	return comps
}
