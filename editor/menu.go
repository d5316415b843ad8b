package editor

import (
	"context"
	"fmt"

	"github.com/katalvlaran/omredit/sig"
)

// MenuItem is one contextual action.
type MenuItem struct {
	Label  string
	Action func(ctx context.Context) (*Outcome, error)
}

// BuildInterMenu assembles the contextual actions available on the
// selected inters.
func BuildInterMenu(c *InterController, inters []*sig.Inter) []MenuItem {
	var items []MenuItem
	var chords []*sig.Inter

	for _, inter := range inters {
		if inter == nil || inter.IsRemoved() {
			continue
		}
		items = append(items, MenuItem{
			Label: "Delete " + inter.String(),
			Action: func(ctx context.Context) (*Outcome, error) {
				return c.RemoveInters(ctx, []*sig.Inter{inter})
			},
		})

		g := inter.SIG()
		if g == nil {
			continue
		}
		for _, rel := range g.Relations(inter) {
			other := g.OppositeInter(inter, rel)
			items = append(items, MenuItem{
				Label: fmt.Sprintf("Unlink %s %v", rel.Kind(), other),
				Action: func(ctx context.Context) (*Outcome, error) {
					return c.Unlink(ctx, rel)
				},
			})
		}

		switch inter.Kind() {
		case sig.KindHeadChord:
			chords = append(chords, inter)
			if len(g.Members(inter)) >= 2 {
				items = append(items, MenuItem{
					Label: "Split chord " + inter.String(),
					Action: func(ctx context.Context) (*Outcome, error) {
						return c.SplitChord(ctx, inter)
					},
				})
			}
		case sig.KindSlur:
			items = append(items, MenuItem{
				Label: "Toggle tie",
				Action: func(ctx context.Context) (*Outcome, error) {
					return c.ToggleTie(ctx, inter)
				},
			})
		}
	}

	if len(chords) >= 2 {
		withStem := true
		for _, ch := range chords {
			if ch.SIG().ChordStem(ch) == nil {
				withStem = false
			}
		}
		items = append(items, MenuItem{
			Label: "Merge chords",
			Action: func(ctx context.Context) (*Outcome, error) {
				return c.MergeChords(ctx, chords, withStem)
			},
		})
	}

	return items
}
