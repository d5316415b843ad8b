package replay_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/omredit/editor"
	"github.com/katalvlaran/omredit/replay"
	"github.com/katalvlaran/omredit/sig"
)

const scenarioYAML = `
sheet:
  name: page-1
  interline: 20
  latest_step: RHYTHMS
  systems:
    - id: 1
      staves:
        - {id: 1, left: 0, right: 1000, top: 100, bottom: 180}
      measures: [[0, 499], [500, 1000]]
  inters:
    - {name: chord, kind: HeadChord, staff: 1, bounds: [100, 100, 10, 77]}
    - {name: low, shape: NOTEHEAD_BLACK, staff: 1, bounds: [100, 170, 8, 6]}
    - {name: high, shape: NOTEHEAD_BLACK, staff: 1, bounds: [100, 110, 8, 6]}
    - {name: stem, shape: STEM, staff: 1, bounds: [108, 100, 2, 77]}
    - {name: dot, shape: AUGMENTATION_DOT, staff: 1, bounds: [112, 171, 3, 3]}
    - {name: slur, shape: SLUR_ABOVE, staff: 1, bounds: [120, 90, 80, 10]}
  relations:
    - {source: chord, target: low, kind: Containment}
    - {source: chord, target: high, kind: Containment}
    - {source: low, target: stem, kind: HeadStem}
    - {source: high, target: stem, kind: HeadStem}
steps:
  - {op: link, source: dot, target: low, relation: Augmentation}
  - {op: voice, inters: [chord], value: "2"}
  - {op: tie, inters: [slur]}
  - {op: split, inters: [chord]}
  - {op: undo}
  - {op: redo}
  - {op: unlink, source: dot, target: low, relation: Augmentation}
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestReplay_Scenario(t *testing.T) {
	sc, err := replay.Load(writeScenario(t, scenarioYAML))
	require.NoError(t, err)
	require.Len(t, sc.Steps, 7)

	sh, named, err := replay.Build(sc.Sheet)
	require.NoError(t, err)
	assert.Equal(t, "page-1", sh.Name())
	require.Len(t, named, 6)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := editor.New(sh, editor.WithLogger(logger))
	outcomes, err := replay.NewPlayer(ctrl, named, logger).Play(context.Background(), sc.Steps)
	require.NoError(t, err)
	require.Len(t, outcomes, 7)
	for _, out := range outcomes {
		assert.False(t, out.Cancelled, out.Op)
	}

	g := named["chord"].SIG()
	assert.Equal(t, 2, named["chord"].VoiceID())
	assert.True(t, named["slur"].IsTie())
	assert.True(t, named["chord"].IsRemoved(), "split is redone")
	assert.Len(t, g.Inters(sig.KindHeadChord), 2)
	assert.Nil(t, g.Relation(named["dot"], named["low"], sig.RelAugmentation))
}

func TestReplay_BadScenario(t *testing.T) {
	_, err := replay.Load(writeScenario(t, "sheet: {name: x}\nsteps: []\n"))
	require.Error(t, err, "a sheet needs systems")

	_, err = replay.Load(writeScenario(t, `
sheet:
  name: x
  systems: [{id: 1, staves: [{id: 1, left: 0, right: 100, top: 10, bottom: 50}]}]
steps:
  - {op: fly}
`))
	require.Error(t, err)

	_, _, err = replay.Build(replay.SheetSpec{
		Name:      "x",
		Systems:   []replay.SystemSpec{{ID: 1, Staves: []replay.StaffSpec{{ID: 1, Right: 100, Top: 10, Bottom: 50}}}},
		Relations: []replay.RelationSpec{{Source: "a", Target: "b", Kind: "HeadStem"}},
	})
	require.ErrorIs(t, err, replay.ErrUnknownInter)
}

func TestStep_Validate(t *testing.T) {
	assert.NoError(t, (&replay.Step{Op: replay.OpUndo}).Validate())
	assert.Error(t, (&replay.Step{Op: replay.OpLink, Source: "a"}).Validate())
	assert.Error(t, (&replay.Step{Op: replay.OpVoice, Inters: []string{"c"}}).Validate(), "value required")
	assert.NoError(t, (&replay.Step{Op: replay.OpTime, Inters: []string{"t"}, Value: "6/8"}).Validate())
	assert.Error(t, (&replay.Step{Op: replay.OpMergeSystem}).Validate(), "system required")
	assert.NoError(t, (&replay.Step{Op: replay.OpMergeSystem, System: 1}).Validate())
}

const mergeYAML = `
sheet:
  name: page-2
  interline: 20
  latest_step: RHYTHMS
  systems:
    - id: 1
      staves:
        - {id: 1, left: 10, right: 1000, top: 100, bottom: 180}
    - id: 2
      staves:
        - {id: 2, left: 10, right: 1000, top: 400, bottom: 480}
  inters:
    - {name: up, shape: THIN_BARLINE, staff: 1, bounds: [10, 100, 3, 81]}
    - {name: down, shape: THIN_BARLINE, staff: 2, bounds: [10, 400, 3, 81]}
steps:
  - {op: mergeSystem, system: 1}
  - {op: undo}
  - {op: redo}
`

func TestReplay_MergeSystem(t *testing.T) {
	sc, err := replay.Load(writeScenario(t, mergeYAML))
	require.NoError(t, err)

	sh, named, err := replay.Build(sc.Sheet)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := editor.New(sh, editor.WithLogger(logger))
	_, err = replay.NewPlayer(ctrl, named, logger).Play(context.Background(), sc.Steps)
	require.NoError(t, err)

	require.Len(t, sh.Systems(), 1)
	g := named["up"].SIG()
	assert.Same(t, g, named["down"].SIG())
	assert.NotNil(t, g.Relation(named["up"], named["down"], sig.RelBarConnection))
	assert.Len(t, g.Inters(sig.KindBarConnector), 1)
}
