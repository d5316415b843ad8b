package editor

import (
	"context"
	"fmt"

	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// sentenceRole returns the role carried by a sentence-like inter.
func sentenceRole(s *sig.Inter) sig.TextRole {
	switch s.Kind() {
	case sig.KindLyricLine:
		return sig.RoleLyrics
	case sig.KindMetronome:
		return sig.RoleMetronome
	default:
		return s.Role()
	}
}

// convertWord returns a manual copy of word as an inter of kind.
func convertWord(word *sig.Inter, kind sig.Kind, staffID int) *sig.Inter {
	w := sig.NewInterOfKind(kind, word.Bounds())
	w.SetText(word.Text())
	w.SetGlyph(word.Glyph())
	w.SetStaffID(staffID)
	w.SetManual(true)

	return w
}

// ChangeSentence gives sentence a new role. Converting to or from lyrics,
// chord names or metronome replaces the sentence and words by inters of the
// matching kinds; other role changes only set the role.
func (c *InterController) ChangeSentence(ctx context.Context, sentence *sig.Inter, role sig.TextRole) (*Outcome, error) {
	if !sentence.Kind().IsSentence() {
		return nil, fmt.Errorf("%w: %v is not a sentence", ErrBadArgument, sentence)
	}
	if err := c.completeEditing(ctx, sentence); err != nil {
		return nil, err
	}

	g := newGesture("changeSentence", uitask.Do, func(_ context.Context, g *gesture) error {
		graph := sentence.SIG()
		if graph == nil {
			return fmt.Errorf("%w: %v is not live", ErrBadArgument, sentence)
		}
		if sentenceRole(sentence) == role {
			return uitask.ErrCancelled
		}
		staffID := sentence.StaffID()
		members := graph.Members(sentence)

		switch role {
		case sig.RoleLyrics:
			line := sig.NewInterOfKind(sig.KindLyricLine, sentence.Bounds())
			line.SetRole(sig.RoleLyrics)
			line.SetStaffID(staffID)
			line.SetManual(true)
			g.seq.Add(uitask.NewAdditionTask(graph, line, line.Bounds(), graph.SearchLinks(line, c.linkParams)))

			for _, m := range members {
				if m.Kind() == sig.KindLyricItem {
					continue
				}
				item := convertWord(m, sig.KindLyricItem, staffID)
				links := []sig.Link{{Partner: line, Relation: sig.NewRelation(sig.RelContainment)}}
				links = append(links, graph.SearchLinks(item, c.linkParams)...)
				g.seq.Add(uitask.NewAdditionTask(graph, item, item.Bounds(), links))
				g.seq.Add(uitask.NewRemovalTask(m))
			}
			g.seq.Add(uitask.NewRemovalTask(sentence))
			g.selected = []*sig.Inter{line}

		case sig.RoleChordName:
			// Chord names live in a plain sentence with the ChordName role;
			// a lyric line or metronome is replaced by one.
			target := sentence
			if sentence.Kind() != sig.KindSentence {
				target = c.plainSentence(g.seq, graph, sentence, role)
			}
			for _, m := range members {
				if m.Kind() == sig.KindChordName {
					continue
				}
				name := convertWord(m, sig.KindChordName, staffID)
				links := []sig.Link{{Partner: target, Relation: sig.NewRelation(sig.RelContainment)}}
				links = append(links, graph.SearchLinks(name, c.linkParams)...)
				g.seq.Add(uitask.NewAdditionTask(graph, name, name.Bounds(), links))
				g.seq.Add(uitask.NewRemovalTask(m))
			}
			if target == sentence {
				g.seq.Add(uitask.NewSentenceRoleTask(sentence, role))
			} else {
				g.seq.Add(uitask.NewRemovalTask(sentence))
			}
			g.selected = []*sig.Inter{target}

		case sig.RoleMetronome:
			metro := sig.NewInterOfKind(sig.KindMetronome, sentence.Bounds())
			metro.SetRole(sig.RoleMetronome)
			metro.SetText(sentence.Text())
			metro.SetStaffID(staffID)
			metro.SetManual(true)
			g.seq.Add(uitask.NewAdditionTask(graph, metro, metro.Bounds(), graph.SearchLinks(metro, c.linkParams)))
			g.seq.Add(uitask.NewRemovalTask(sentence))
			c.attachWords(g.seq, graph, metro, members, staffID)
			g.selected = []*sig.Inter{metro}

		default:
			if sentence.Kind() == sig.KindSentence {
				c.attachWords(g.seq, graph, sentence, nonWords(members), staffID)
				g.seq.Add(uitask.NewSentenceRoleTask(sentence, role))
				g.selected = []*sig.Inter{sentence}
				break
			}
			plain := c.plainSentence(g.seq, graph, sentence, role)
			g.seq.Add(uitask.NewRemovalTask(sentence))
			c.attachWords(g.seq, graph, plain, members, staffID)
			g.selected = []*sig.Inter{plain}
		}
		return nil
	})

	return c.submit(ctx, g)
}

// plainSentence schedules a new basic sentence replacing sentence.
func (c *InterController) plainSentence(seq *uitask.List, graph *sig.SIG, sentence *sig.Inter, role sig.TextRole) *sig.Inter {
	plain := sig.NewInterOfKind(sig.KindSentence, sentence.Bounds())
	plain.SetRole(role)
	plain.SetStaffID(sentence.StaffID())
	plain.SetManual(true)
	seq.Add(uitask.NewAdditionTask(graph, plain, plain.Bounds(), graph.SearchLinks(plain, c.linkParams)))

	return plain
}

// attachWords makes members the words of ensemble. Plain words are linked
// as they are, other members are replaced by plain words.
func (c *InterController) attachWords(seq *uitask.List, graph *sig.SIG, ensemble *sig.Inter, members []*sig.Inter, staffID int) {
	for _, m := range members {
		if m.Kind() == sig.KindWord {
			seq.Add(uitask.NewLinkTask(graph, ensemble, m, sig.NewRelation(sig.RelContainment)))
			continue
		}
		word := convertWord(m, sig.KindWord, staffID)
		seq.Add(uitask.NewAdditionTask(graph, word, word.Bounds(),
			[]sig.Link{{Partner: ensemble, Relation: sig.NewRelation(sig.RelContainment)}}))
		seq.Add(uitask.NewRemovalTask(m))
	}
}

func nonWords(members []*sig.Inter) []*sig.Inter {
	var out []*sig.Inter
	for _, m := range members {
		if m.Kind() != sig.KindWord {
			out = append(out, m)
		}
	}

	return out
}
