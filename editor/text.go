package editor

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/katalvlaran/omredit/assign"
	"github.com/katalvlaran/omredit/cluster"
	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/glyph"
	"github.com/katalvlaran/omredit/peaks"
	"github.com/katalvlaran/omredit/sheet"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// TextWord is one word found by a scanner.
type TextWord struct {
	Bounds geom.Rect
	Value  string
	Buffer *glyph.Buffer // word pixels, absolute coordinates
}

// TextLine is one line of words.
type TextLine struct {
	Bounds geom.Rect
	Words  []TextWord
}

// Value returns the words of the line separated by spaces.
func (l TextLine) Value() string {
	vals := make([]string, len(l.Words))
	for i, w := range l.Words {
		vals[i] = w.Value
	}

	return strings.Join(vals, " ")
}

// ProjectionScanner splits a text image into lines and words from its pixel
// projections, and has each word read by an OCR engine.
type ProjectionScanner struct {
	ocr    OCR
	logger *slog.Logger

	// MinDerivative is the row count change that starts or ends a line.
	MinDerivative int
	// WordGap is the smallest blank width separating words, used when the
	// gaps of a line cannot be clustered.
	WordGap int
}

// NewProjectionScanner returns a scanner using ocr for word values.
func NewProjectionScanner(ocr OCR, logger *slog.Logger) *ProjectionScanner {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProjectionScanner{ocr: ocr, logger: logger, MinDerivative: 1, WordGap: 5}
}

// Scan returns the text lines of buf, top down.
func (s *ProjectionScanner) Scan(ctx context.Context, buf *glyph.Buffer) ([]TextLine, error) {
	if s.ocr == nil {
		return nil, fmt.Errorf("%w: no OCR engine", ErrBadArgument)
	}
	r := buf.Bounds()
	var lines []TextLine
	for _, rows := range s.lineRows(buf) {
		line := TextLine{}
		for _, span := range s.wordSpans(buf.ColumnProjection(r.Y+rows[0], r.Y+rows[1]+1)) {
			area := geom.R(r.X+span[0], r.Y+rows[0], span[1]-span[0]+1, rows[1]-rows[0]+1)
			crop := buf.Crop(area)
			if crop.Count() == 0 {
				continue
			}
			crop = buf.Crop(pointsBounds(crop.Points()))
			value, err := s.ocr.Recognize(ctx, crop)
			if err != nil {
				return nil, fmt.Errorf("recognize word at %v: %w", area, err)
			}
			value = strings.TrimSpace(value)
			if value == "" {
				s.logger.DebugContext(ctx, "no text in word", slog.String("bounds", area.String()))
				continue
			}
			line.Words = append(line.Words, TextWord{Bounds: crop.Bounds(), Value: value, Buffer: crop})
			line.Bounds = line.Bounds.Union(crop.Bounds())
		}
		if len(line.Words) > 0 {
			lines = append(lines, line)
		}
	}

	return lines, nil
}

// lineRows returns the [first, last] relative rows of each text line.
// Every hilo of the row projection seeds a line, which extends over the
// surrounding non-blank rows.
func (s *ProjectionScanner) lineRows(buf *glyph.Buffer) [][2]int {
	rows := buf.RowProjection()
	padded := make([]int, 0, len(rows)+3)
	padded = append(padded, 0)
	padded = append(padded, rows...)
	padded = append(padded, 0, 0)

	fn, err := peaks.FromValues(padded...)
	if err != nil {
		return nil
	}
	pf, err := peaks.NewFullHiLoPeakFinder("textLines", fn)
	if err != nil {
		return nil
	}
	pf.FindPeaks(peaks.Params{MinValue: 1, MinDerivative: s.MinDerivative, MinGainRatio: 0.1})

	var out [][2]int
	for _, hilo := range pf.HiLos() {
		main := hilo.Main - 1
		if main < 0 || main >= len(rows) || rows[main] == 0 {
			continue
		}
		first, last := main, main
		for first > 0 && rows[first-1] > 0 {
			first--
		}
		for last < len(rows)-1 && rows[last+1] > 0 {
			last++
		}
		if n := len(out); n > 0 && out[n-1] == [2]int{first, last} {
			continue
		}
		out = append(out, [2]int{first, last})
	}

	return out
}

// wordSpans returns the [first, last] columns of each word in a line
// column projection. Blank gaps are told apart as letter or word gaps by a
// two-law mixture.
func (s *ProjectionScanner) wordSpans(cols []int) [][2]int {
	var parts [][2]int
	start := -1
	for x, v := range cols {
		switch {
		case v > 0 && start < 0:
			start = x
		case v == 0 && start >= 0:
			parts = append(parts, [2]int{start, x - 1})
			start = -1
		}
	}
	if start >= 0 {
		parts = append(parts, [2]int{start, len(cols) - 1})
	}
	if len(parts) <= 1 {
		return parts
	}

	gaps := make([]float64, len(parts)-1)
	for i := range gaps {
		gaps[i] = float64(parts[i+1][0] - parts[i][1] - 1)
	}
	isWordGap := s.gapClassifier(gaps)

	spans := [][2]int{parts[0]}
	for i, g := range gaps {
		if isWordGap(g) {
			spans = append(spans, parts[i+1])
		} else {
			spans[len(spans)-1][1] = parts[i+1][1]
		}
	}

	return spans
}

// gapClassifier fits letter and word gap laws on gaps; with too few
// distinct gaps it falls back to the WordGap threshold.
func (s *ProjectionScanner) gapClassifier(gaps []float64) func(float64) bool {
	threshold := func(g float64) bool { return g >= float64(s.WordGap) }
	lo, hi := slices.Min(gaps), slices.Max(gaps)
	if hi-lo < 2 {
		return threshold
	}

	sigma := (hi - lo) / 4
	mix, err := cluster.EM(gaps, []float64{0.5, 0.5}, []cluster.Gaussian{
		{Mean: lo, Sigma: sigma},
		{Mean: hi, Sigma: sigma},
	})
	if err != nil {
		return threshold
	}
	word := 1
	if mix.Laws[0].Mean > mix.Laws[1].Mean {
		word = 0
	}

	return func(g float64) bool { return mix.Classify(g) == word }
}

func pointsBounds(pts []geom.Point) geom.Rect {
	var r geom.Rect
	for _, p := range pts {
		r = r.Union(geom.R(p.X, p.Y, 1, 1))
	}

	return r
}

var chordNamePattern = regexp.MustCompile(`^[A-G][#b]?(m|maj|min|dim|aug|sus)?[0-9]*(/[A-G][#b]?)?$`)

// isChordNameLine reports a line made only of chord names.
func isChordNameLine(line TextLine) bool {
	for _, w := range line.Words {
		if !chordNamePattern.MatchString(w.Value) {
			return false
		}
	}

	return len(line.Words) > 0
}

// addText recognizes the text lines of gl and creates one sentence per line.
func (c *InterController) addText(ctx context.Context, gl *glyph.Glyph, shape sig.Shape) (*Outcome, error) {
	g := newGesture("addText", uitask.Do, func(ctx context.Context, g *gesture) error {
		if c.ocr == nil {
			c.logger.InfoContext(ctx, "no OCR engine available", slog.String("shape", string(shape)))
			return uitask.ErrCancelled
		}
		centroid := gl.Centroid().Round()
		staves := c.sheet.ClosestStaves(centroid)
		if len(staves) == 0 {
			return fmt.Errorf("%w: at %v", ErrNoStaff, centroid)
		}
		sys := staves[0].System()
		graph := sys.SIG()

		lines, err := c.scanner.Scan(ctx, gl.Buffer())
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			c.logger.InfoContext(ctx, "no text found", slog.String("glyph", gl.String()))
			return uitask.ErrCancelled
		}

		var sentences []*sig.Inter
		for _, line := range lines {
			staffID := closestStaff(sys, line.Bounds.Center()).ID()
			sentence, wordKind, isNew := c.allocateSentence(graph, line, shape)
			if isNew {
				sentence.SetManual(true)
				sentence.SetStaffID(staffID)
				sentence.SetText(line.Value())
				g.seq.Add(uitask.NewAdditionTask(graph, sentence, line.Bounds, nil))
			}

			var words []*sig.Inter
			for _, tw := range line.Words {
				wg, err := glyph.FromBuffer(tw.Buffer)
				if err != nil {
					continue
				}
				w := sig.NewInterOfKind(wordKind, tw.Bounds)
				w.SetText(tw.Value)
				w.SetGlyph(c.heldGlyph(g.seq, wg))
				w.SetStaffID(staffID)
				w.SetManual(true)
				words = append(words, w)
			}

			var extra [][]sig.Link
			if wordKind == sig.KindLyricItem {
				extra = c.lyricsLinks(graph, words)
			}
			for i, w := range words {
				links := []sig.Link{{Partner: sentence, Relation: sig.NewRelation(sig.RelContainment)}}
				if extra != nil {
					links = append(links, extra[i]...)
				}
				g.seq.Add(uitask.NewAdditionTask(graph, w, w.Bounds(), links))
			}
			sentences = append(sentences, sentence)
		}
		g.selected = sentences[:1]
		return nil
	})

	return c.submit(ctx, g)
}

// allocateSentence returns the ensemble receiving the words of line and the
// kind of these words. A lyrics line joins an existing lyric line at the
// same height.
func (c *InterController) allocateSentence(graph *sig.SIG, line TextLine, shape sig.Shape) (*sig.Inter, sig.Kind, bool) {
	switch shape {
	case sig.ShapeLyrics:
		if existing := c.lookupLyricLine(graph, line); existing != nil {
			return existing, sig.KindLyricItem, false
		}
		s := sig.NewInterOfKind(sig.KindLyricLine, line.Bounds)
		s.SetRole(sig.RoleLyrics)
		return s, sig.KindLyricItem, true
	case sig.ShapeMetronome:
		s := sig.NewInterOfKind(sig.KindMetronome, line.Bounds)
		s.SetRole(sig.RoleMetronome)
		return s, sig.KindWord, true
	}

	s := sig.NewInterOfKind(sig.KindSentence, line.Bounds)
	if isChordNameLine(line) {
		s.SetRole(sig.RoleChordName)
		return s, sig.KindChordName, true
	}
	s.SetRole(sig.RoleDirection)

	return s, sig.KindWord, true
}

// lookupLyricLine returns a lyric line whose center is within half an
// interline of the line center.
func (c *InterController) lookupLyricLine(graph *sig.SIG, line TextLine) *sig.Inter {
	tolerance := c.sheet.Scale().Interline / 2
	y := line.Bounds.Center().Y
	for _, ll := range graph.Inters(sig.KindLyricLine) {
		if dy := ll.Center().Y - y; dy >= -tolerance && dy <= tolerance {
			return ll
		}
	}

	return nil
}

// lyricsLinks links each syllable to a head chord above it. Few syllables
// are matched to chords all at once, one chord per syllable at minimum
// horizontal distance; the others, or a failed match, use the nearest chord.
func (c *InterController) lyricsLinks(graph *sig.SIG, items []*sig.Inter) [][]sig.Link {
	out := make([][]sig.Link, len(items))

	if len(items) > 0 && len(items) <= c.EditorConfig().MaxLyricsInjection {
		lineY := interBounds(items).Y
		var chords []*sig.Inter
		for _, ch := range graph.Inters(sig.KindHeadChord) {
			if ch.Center().Y < lineY {
				chords = append(chords, ch)
			}
		}
		maxDx := float64(c.linkParams.MaxDx)
		cost := func(id, ir int) float64 {
			dx := math.Abs(float64(items[id].Center().X - chords[ir].Center().X))
			if dx > maxDx {
				return math.Inf(1)
			}
			return dx
		}
		if solver, err := assign.NewInjectionSolver(len(items), len(chords), cost); err == nil {
			if best, _, err := solver.Solve(); err == nil && best != nil {
				for id, ir := range best {
					out[id] = []sig.Link{{Partner: chords[ir], Relation: sig.NewRelation(sig.RelChordSyllable)}}
				}
				return out
			}
		}
	}

	for i, item := range items {
		out[i] = graph.SearchLinks(item, c.linkParams)
	}

	return out
}

// closestStaff returns the staff of sys closest to p.
func closestStaff(sys *sheet.System, p geom.Point) *sheet.Staff {
	staves := sys.Staves()
	slices.SortStableFunc(staves, func(a, b *sheet.Staff) int {
		return cmp.Compare(a.DistanceTo(p), b.DistanceTo(p))
	})

	return staves[0]
}
