// Package replay builds a sheet from a YAML scenario and plays a sequence of
// editing gestures on it, the way a user session would.
package replay

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/katalvlaran/omredit/config"
	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/sheet"
	"github.com/katalvlaran/omredit/sig"
)

// Scenario is a sheet description followed by the gestures to play.
type Scenario struct {
	Sheet SheetSpec `yaml:"sheet"`
	Steps []Step    `yaml:"steps"`
}

// SheetSpec describes the recognized content of a sheet.
type SheetSpec struct {
	Name       string         `yaml:"name"`
	Interline  int            `yaml:"interline"`
	LatestStep string         `yaml:"latest_step"`
	Systems    []SystemSpec   `yaml:"systems"`
	Inters     []InterSpec    `yaml:"inters"`
	Relations  []RelationSpec `yaml:"relations"`
}

// SystemSpec describes one system, staves top down.
type SystemSpec struct {
	ID       int         `yaml:"id"`
	Staves   []StaffSpec `yaml:"staves"`
	Measures [][2]int    `yaml:"measures"`
}

// StaffSpec gives the ordinates of the first and last lines of a staff.
type StaffSpec struct {
	ID     int     `yaml:"id"`
	Left   int     `yaml:"left"`
	Right  int     `yaml:"right"`
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
}

// InterSpec is one named inter. Either Shape or Kind is set.
type InterSpec struct {
	Name   string  `yaml:"name"`
	Shape  string  `yaml:"shape"`
	Kind   string  `yaml:"kind"`
	Staff  int     `yaml:"staff"`
	Bounds [4]int  `yaml:"bounds"`
	Grade  float64 `yaml:"grade"`
	Text   string  `yaml:"text"`
	Role   string  `yaml:"role"`
}

// RelationSpec links two named inters.
type RelationSpec struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Kind   string `yaml:"kind"`
}

// Validate checks the scenario structure; names are resolved by Build.
func (s *Scenario) Validate() error {
	if err := validation.ValidateStruct(&s.Sheet,
		validation.Field(&s.Sheet.Name, validation.Required),
		validation.Field(&s.Sheet.Interline, validation.Min(0)),
		validation.Field(&s.Sheet.Systems, validation.Required),
	); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	for i := range s.Steps {
		if err := s.Steps[i].Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return nil
}

// Load reads and validates a scenario file.
func Load(filename string) (*Scenario, error) {
	sc := &Scenario{}
	if err := config.Load(filename, sc); err != nil {
		return nil, err
	}

	return sc, nil
}

// ErrUnknownInter is returned for a name no inter was declared with.
var ErrUnknownInter = errors.New("replay: unknown inter")

// Build creates the sheet and registers the declared inters and relations
// in their system graphs. It returns the inters by name.
func Build(spec SheetSpec, opts ...sheet.Option) (*sheet.Sheet, map[string]*sig.Inter, error) {
	il := spec.Interline
	if il == 0 {
		il = sheet.DefaultScale().Interline
	}
	scale := sheet.DefaultScale()
	scale.Interline = il
	opts = append([]sheet.Option{sheet.WithScale(scale)}, opts...)
	if spec.LatestStep != "" {
		step, err := sheet.ParseStep(spec.LatestStep)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, sheet.WithLatestStep(step))
	}

	ids := &sig.IDGenerator{}
	var systems []*sheet.System
	for _, ss := range spec.Systems {
		var staves []*sheet.Staff
		for _, st := range ss.Staves {
			staves = append(staves, sheet.NewStaff(st.ID, st.Left, st.Right, st.Top, st.Bottom, il))
		}
		if len(staves) == 0 {
			return nil, nil, fmt.Errorf("system %d has no staff", ss.ID)
		}
		sys := sheet.NewSystem(ss.ID, staves, ids)
		var measures []sheet.Measure
		for _, m := range ss.Measures {
			measures = append(measures, sheet.Measure{Left: m[0], Right: m[1]})
		}
		sys.SetMeasures(measures)
		systems = append(systems, sys)
	}
	sh := sheet.New(spec.Name, systems, opts...)

	named := make(map[string]*sig.Inter, len(spec.Inters))
	for _, is := range spec.Inters {
		inter, err := newInter(is)
		if err != nil {
			return nil, nil, fmt.Errorf("inter %q: %w", is.Name, err)
		}
		staff, ok := sh.Staff(is.Staff)
		if !ok {
			return nil, nil, fmt.Errorf("inter %q: unknown staff %d", is.Name, is.Staff)
		}
		if err := staff.System().SIG().AddVertex(inter); err != nil {
			return nil, nil, fmt.Errorf("inter %q: %w", is.Name, err)
		}
		if is.Name != "" {
			named[is.Name] = inter
		}
	}

	for _, rs := range spec.Relations {
		source, target := named[rs.Source], named[rs.Target]
		if source == nil || target == nil {
			return nil, nil, fmt.Errorf("%w: relation %s -> %s", ErrUnknownInter, rs.Source, rs.Target)
		}
		kind, err := sig.ParseRelationKind(rs.Kind)
		if err != nil {
			return nil, nil, err
		}
		if source.SIG() != target.SIG() {
			return nil, nil, fmt.Errorf("relation %s -> %s crosses systems", rs.Source, rs.Target)
		}
		if err := source.SIG().AddEdge(source, target, sig.NewRelation(kind)); err != nil {
			return nil, nil, fmt.Errorf("relation %s -> %s: %w", rs.Source, rs.Target, err)
		}
	}

	return sh, named, nil
}

func newInter(is InterSpec) (*sig.Inter, error) {
	b := geom.R(is.Bounds[0], is.Bounds[1], is.Bounds[2], is.Bounds[3])
	if b.Empty() {
		return nil, fmt.Errorf("empty bounds %v", b)
	}

	var inter *sig.Inter
	switch {
	case is.Shape != "":
		shape, err := sig.ParseShape(is.Shape)
		if err != nil {
			return nil, err
		}
		grade := is.Grade
		if grade == 0 {
			grade = 1
		}
		inter = sig.NewInter(shape, b, grade)
	case is.Kind != "":
		kind, err := sig.ParseKind(is.Kind)
		if err != nil {
			return nil, err
		}
		inter = sig.NewInterOfKind(kind, b)
	default:
		return nil, errors.New("shape or kind required")
	}

	inter.SetStaffID(is.Staff)
	inter.SetText(is.Text)
	if is.Role != "" {
		role, err := sig.ParseTextRole(is.Role)
		if err != nil {
			return nil, err
		}
		inter.SetRole(role)
	}

	return inter, nil
}
