// Package score models the recognized page as an explicit measure/part
// grid. Measure i of every part forms one "vertical measure": the set of
// part-local measures sharing a page position and therefore a time span.
package score

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/davidorman/scoremend/clef"
	"github.com/davidorman/scoremend/model"
	"github.com/davidorman/scoremend/rational"
)

var logger = log.With().Str("component", "score").Logger()

// Page is one scanned page of music.
type Page struct {
	ID    string
	Title string
	Parts []*Part

	measureCount int
}

// Part is one instrument line of the page.
type Part struct {
	Name     string
	Staves   []*Staff
	Measures []*Measure
}

// Staff carries the geometry needed to convert page locations into pitch
// positions, the recognized clef glyph if any, and the resolved clef.
type Staff struct {
	part  *Part
	index int

	MidlineY    float64
	LineSpacing float64

	ClefHypothesis *model.Glyph
	Clef           *clef.Clef
}

// PitchPositionOf converts a page location into a pitch position relative
// to this staff, in half-line units increasing downward.
func (s *Staff) PitchPositionOf(p model.Point) float64 {
	if s.LineSpacing == 0 {
		return 0
	}
	return 2 * (float64(p.Y) - s.MidlineY) / s.LineSpacing
}

// Index reports the staff position within its part.
func (s *Staff) Index() int {
	return s.index
}

// Measure is one measure of one part.
type Measure struct {
	part  *Part
	index int

	timeSigs []*TimeSignature
	voices   []*Voice
}

// ID is the 1-based vertical measure id, shared by all parts at the same
// page position.
func (m *Measure) ID() int {
	return m.index + 1
}

func (m *Measure) Part() *Part {
	return m.part
}

// TimeSignature reports the explicit signature on the given staff, or nil.
func (m *Measure) TimeSignature(staffIndex int) *TimeSignature {
	if staffIndex < 0 || staffIndex >= len(m.timeSigs) {
		return nil
	}
	return m.timeSigs[staffIndex]
}

func (m *Measure) Voices() []*Voice {
	return m.voices
}

// TimeSignature is a staff-scoped explicit signature. Manual signatures
// were entered by the user and are immune to automatic correction.
type TimeSignature struct {
	num    int
	den    int
	manual bool

	glyph       *model.Glyph
	diagnostics []string
}

// Rational reports the reduced signature value, failing on malformed
// recognizer output (non-positive numerator or denominator).
func (ts *TimeSignature) Rational() (rational.Rational, error) {
	if ts.num <= 0 || ts.den <= 0 {
		return rational.Rational{}, fmt.Errorf("malformed time signature %d/%d", ts.num, ts.den)
	}
	return rational.New(ts.num, ts.den)
}

// SetRational overwrites the signature value in place.
func (ts *TimeSignature) SetRational(r rational.Rational) {
	ts.num = r.Num
	ts.den = r.Den
}

func (ts *TimeSignature) IsManual() bool {
	return ts.manual
}

func (ts *TimeSignature) Glyph() *model.Glyph {
	return ts.glyph
}

// AttachDiagnostic records a human-readable problem against the
// signature's source glyph. Carried through to the score file output.
func (ts *TimeSignature) AttachDiagnostic(msg string) {
	ts.diagnostics = append(ts.diagnostics, msg)
	ev := logger.Warn().Str("diagnostic", msg)
	if ts.glyph != nil {
		ev = ev.Str("glyph", ts.glyph.ID)
	}
	ev.Msg("time signature flagged")
}

func (ts *TimeSignature) Diagnostics() []string {
	return ts.diagnostics
}

// Voice is one rhythmic line within a measure.
type Voice struct {
	id       int
	inferred *rational.Rational
}

func (v *Voice) ID() int {
	return v.id
}

// InferredTimeSignature reports the time signature the rhythm analysis
// derived from this voice, ok=false when the rhythm was inconclusive.
func (v *Voice) InferredTimeSignature() (rational.Rational, bool) {
	if v.inferred == nil {
		return rational.Rational{}, false
	}
	return *v.inferred, true
}

// MeasureCount reports the page-wide number of vertical measures (the
// longest part; ragged parts surface as slice errors).
func (p *Page) MeasureCount() int {
	return p.measureCount
}

// VerticalSlice reports measure index i of every part. It fails when the
// parts disagree on measure count at that index, so a broken chain
// poisons only the regions that touch it.
func (p *Page) VerticalSlice(i int) ([]*Measure, error) {
	slice := make([]*Measure, 0, len(p.Parts))
	for _, part := range p.Parts {
		if i >= len(part.Measures) {
			return nil, fmt.Errorf("part %q has %d measures, vertical measure %d does not exist",
				part.Name, len(part.Measures), i+1)
		}
		slice = append(slice, part.Measures[i])
	}
	return slice, nil
}

// ResolveClefs turns each staff's clef hypothesis into a concrete clef and
// replicates the previous staff's clef onto staves that lost their symbol.
// Reports the number of clefs attached.
func (p *Page) ResolveClefs() int {
	resolved := 0
	for _, part := range p.Parts {
		var prev *clef.Clef
		for _, staff := range part.Staves {
			if g := staff.ClefHypothesis; g != nil {
				if c := clef.Create(g, staff); c != nil {
					staff.Clef = c
					prev = c
					resolved++
					continue
				}
				logger.Warn().
					Str("glyph", g.ID).
					Str("shape", string(g.Shape)).
					Msg("clef hypothesis with non-clef shape, ignoring")
			}
			if staff.Clef == nil && prev != nil {
				staff.Clef = prev.Replicate(staff)
				resolved++
			}
			if staff.Clef != nil {
				prev = staff.Clef
			}
		}
	}
	return resolved
}
