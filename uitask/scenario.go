package uitask

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/katalvlaran/omredit/sig"
)

// RemovalScenario turns a user deletion into a consistent closure:
//   - a non-empty ensemble drags its members along;
//   - an ensemble whose members all get removed is removed as well;
//   - ensembles are removed before plain inters.
type RemovalScenario struct {
	hooks     Hooks
	ensembles []*sig.Inter
	inters    []*sig.Inter
	watched   []*sig.Inter
}

// NewRemovalScenario returns a scenario consulting hooks for every
// requested inter; nil means DefaultHooks.
func NewRemovalScenario(hooks Hooks) *RemovalScenario {
	if hooks == nil {
		hooks = DefaultHooks{}
	}

	return &RemovalScenario{hooks: hooks}
}

// Populate appends to seq the removal tasks for inters. When a hook vetoes,
// seq is cancelled and nothing is added.
func (rs *RemovalScenario) Populate(ctx context.Context, inters []*sig.Inter, seq *List) error {
	for _, inter := range inters {
		if inter == nil || inter.IsRemoved() {
			continue
		}
		closure, err := rs.hooks.PreRemove(ctx, inter)
		switch {
		case errors.Is(err, ErrCancelled):
			if !seq.Has(Validated) {
				seq.Cancel()
				return nil
			}
			closure = []*sig.Inter{inter}
		case err != nil:
			return err
		}
		for _, other := range closure {
			rs.include(other)
		}
	}

	// Ensembles left empty go too
	for _, ens := range rs.watched {
		if slices.Contains(rs.ensembles, ens) || slices.Contains(rs.inters, ens) {
			continue
		}
		members := ens.SIG().Members(ens)
		if len(members) > 0 && rs.allRemoved(members) {
			rs.ensembles = append(rs.ensembles, ens)
		}
	}

	slices.SortFunc(rs.ensembles, membersFirst)
	slices.Reverse(rs.ensembles)
	for _, ens := range rs.ensembles {
		seq.Add(NewRemovalTask(ens))
	}
	for _, inter := range rs.inters {
		seq.Add(NewRemovalTask(inter))
	}

	return nil
}

func (rs *RemovalScenario) include(inter *sig.Inter) {
	if inter.IsRemoved() || slices.Contains(rs.ensembles, inter) {
		return
	}
	g := inter.SIG()
	if inter.Kind().IsEnsemble() {
		if members := g.Members(inter); len(members) > 0 {
			rs.ensembles = append(rs.ensembles, inter)
			rs.inters = slices.DeleteFunc(rs.inters, func(x *sig.Inter) bool { return x == inter })
			for _, m := range members {
				rs.addPlain(m)
			}
			return
		}
	}
	rs.addPlain(inter)
}

func (rs *RemovalScenario) addPlain(inter *sig.Inter) {
	if slices.Contains(rs.inters, inter) || slices.Contains(rs.ensembles, inter) {
		return
	}
	rs.inters = append(rs.inters, inter)
	if ens := inter.SIG().Ensemble(inter); ens != nil && !slices.Contains(rs.watched, ens) {
		rs.watched = append(rs.watched, ens)
	}
}

func (rs *RemovalScenario) allRemoved(members []*sig.Inter) bool {
	for _, m := range members {
		if !slices.Contains(rs.inters, m) && !slices.Contains(rs.ensembles, m) {
			return false
		}
	}

	return true
}

// membersFirst orders an ensemble after the ensembles it contains, then by id.
func membersFirst(a, b *sig.Inter) int {
	g := a.SIG()
	if g != nil {
		if g.Ensemble(a) == b {
			return -1
		}
		if g.Ensemble(b) == a {
			return 1
		}
	}

	return cmp.Compare(a.ID(), b.ID())
}
