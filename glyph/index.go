package glyph

import (
	"slices"
	"sync"

	"github.com/katalvlaran/omredit/geom"
)

// Publisher receives glyphs the editor wants to show as selected.
type Publisher interface {
	PublishGlyph(g *Glyph)
}

// Index is the per-sheet registry of original glyphs.
//
// Glyphs are deduplicated by signature: registering a pixel set already
// present returns the held instance. A glyph keeps its id across
// remove/register cycles so undo restores it unchanged.
//
// All methods are safe for concurrent use.
type Index struct {
	mu        sync.RWMutex
	byID      map[int]*Glyph
	bySig     map[string]*Glyph
	nextID    int
	publisher Publisher
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byID: make(map[int]*Glyph), bySig: make(map[string]*Glyph)}
}

// SetPublisher installs the selection sink used by Publish.
func (x *Index) SetPublisher(p Publisher) {
	x.mu.Lock()
	x.publisher = p
	x.mu.Unlock()
}

// RegisterOriginal stores g and returns the indexed instance, which is an
// existing glyph when one with the same pixels is already held.
func (x *Index) RegisterOriginal(g *Glyph) *Glyph {
	x.mu.Lock()
	defer x.mu.Unlock()

	if held, ok := x.bySig[g.signature]; ok {
		return held
	}
	if g.id == 0 {
		x.nextID++
		g.id = x.nextID
	} else if g.id > x.nextID {
		x.nextID = g.id
	}
	x.byID[g.id] = g
	x.bySig[g.signature] = g

	return g
}

// Remove drops g from the index.
func (x *Index) Remove(g *Glyph) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if held, ok := x.byID[g.id]; !ok || held != g {
		return ErrUnknownGlyph
	}
	delete(x.byID, g.id)
	delete(x.bySig, g.signature)

	return nil
}

// Contains reports whether g is currently held.
func (x *Index) Contains(g *Glyph) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return g != nil && x.byID[g.id] == g
}

// Lookup returns the held glyph with the given signature.
func (x *Index) Lookup(signature string) (*Glyph, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	g, ok := x.bySig[signature]

	return g, ok
}

// Len returns the number of held glyphs.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return len(x.byID)
}

// All returns held glyphs sorted by id.
func (x *Index) All() []*Glyph {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return x.sortedLocked(func(*Glyph) bool { return true })
}

// IntersectedEntities returns held glyphs whose bounds intersect r, sorted by id.
func (x *Index) IntersectedEntities(r geom.Rect) []*Glyph {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return x.sortedLocked(func(g *Glyph) bool { return g.bounds.Intersects(r) })
}

// Publish forwards g to the publisher, if any.
func (x *Index) Publish(g *Glyph) {
	x.mu.RLock()
	p := x.publisher
	x.mu.RUnlock()
	if p != nil {
		p.PublishGlyph(g)
	}
}

func (x *Index) sortedLocked(keep func(*Glyph) bool) []*Glyph {
	var out []*Glyph
	for _, g := range x.byID {
		if keep(g) {
			out = append(out, g)
		}
	}
	slices.SortFunc(out, func(a, b *Glyph) int { return a.id - b.id })

	return out
}
