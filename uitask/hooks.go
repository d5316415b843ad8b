package uitask

import (
	"context"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/sig"
)

// Hooks let the inter kinds take part in editing decisions.
// A hook returns ErrCancelled to veto the whole operation.
type Hooks interface {
	// PreAdd returns the tasks inserting inter (and whatever it drags along).
	PreAdd(ctx context.Context, g *sig.SIG, inter *sig.Inter, links []sig.Link) ([]Task, error)
	// PreRemove returns the inters to remove together with inter, inter included.
	PreRemove(ctx context.Context, inter *sig.Inter) ([]*sig.Inter, error)
	// PreEdit returns the tasks applying new bounds to inter.
	PreEdit(ctx context.Context, inter *sig.Inter, bounds geom.Rect) ([]Task, error)
}

// DefaultHooks implements the standard behavior of every kind.
type DefaultHooks struct{}

var _ Hooks = DefaultHooks{}

func (DefaultHooks) PreAdd(_ context.Context, g *sig.SIG, inter *sig.Inter, links []sig.Link) ([]Task, error) {
	return []Task{NewAdditionTask(g, inter, inter.Bounds(), links)}, nil
}

// PreRemove extends a head chord with its notes and with its stem when no
// other chord uses it, and an ensemble with its members.
func (DefaultHooks) PreRemove(_ context.Context, inter *sig.Inter) ([]*sig.Inter, error) {
	g := inter.SIG()
	out := []*sig.Inter{inter}
	if g == nil || !inter.Kind().IsEnsemble() {
		return out, nil
	}
	out = append(out, g.Members(inter)...)
	if inter.Kind() == sig.KindHeadChord {
		if stem := g.ChordStem(inter); stem != nil && len(g.StemChords(stem)) <= 1 {
			out = append(out, stem)
		}
	}

	return out, nil
}

func (DefaultHooks) PreEdit(_ context.Context, inter *sig.Inter, bounds geom.Rect) ([]Task, error) {
	return []Task{NewEditingTask(inter, bounds)}, nil
}
