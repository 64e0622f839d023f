// Package clef turns recognized clef glyphs into concrete clefs and maps
// staff pitch positions to note steps and octaves.
//
// Pitch positions are signed offsets from the staff middle line in
// half-line units, increasing downward: the treble reference line (the G
// line, second from the bottom) sits at +2.
package clef

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/davidorman/scoremend/model"
)

var logger = log.With().Str("component", "clef").Logger()

// Kind is the concrete clef family a glyph resolves to.
type Kind int

const (
	Treble Kind = iota
	Bass
	Alto
	Tenor
	Percussion
)

var kindNames = [...]string{"TREBLE", "BASS", "ALTO", "TENOR", "PERCUSSION"}

func (k Kind) String() string {
	if k < Treble || k > Percussion {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Shape reports the reference shape class of the kind, regardless of any
// ottava mark.
func (k Kind) Shape() model.Shape {
	switch k {
	case Treble:
		return model.ShapeGClef
	case Bass:
		return model.ShapeFClef
	case Alto, Tenor:
		return model.ShapeCClef
	default:
		return model.ShapePercClef
	}
}

// ReferencePitch reports the pitch position of the kind's reference line.
func (k Kind) ReferencePitch() int {
	switch k {
	case Treble:
		return 2
	case Bass, Tenor:
		return -2
	default:
		return 0
	}
}

// Step is a note step label, A through G.
type Step int

const (
	StepA Step = iota
	StepB
	StepC
	StepD
	StepE
	StepF
	StepG
)

func (s Step) String() string {
	if s < StepA || s > StepG {
		return "?"
	}
	return string(rune('A' + rune(s)))
}

// Reference pitch positions of the seven key-signature accidentals, one row
// per kind, in kind declaration order. Percussion has no row.
type referenceRow struct {
	kind    Kind
	pitches [7]int
}

var sharpRows = []referenceRow{
	{Treble, [7]int{-4, -1, -5, -2, 1, -3, 0}},
	{Bass, [7]int{-2, 1, -3, 0, 3, -1, 2}},
	{Alto, [7]int{-3, 0, -4, -1, 2, -2, 1}},
	{Tenor, [7]int{2, -2, 1, -3, 0, -4, -1}},
}

var flatRows = []referenceRow{
	{Treble, [7]int{0, -3, 1, -2, 2, -1, 3}},
	{Bass, [7]int{2, -1, 3, 0, 4, 1, 5}},
	{Alto, [7]int{1, -2, 2, -1, 3, 0, 4}},
	{Tenor, [7]int{-1, -4, 0, -3, 1, -2, 2}},
}

// GuessKind fits the measured accidental pitch positions against the
// reference row of every candidate kind and returns the kind with the
// lowest RMS error, together with the per-kind errors for diagnostics.
//
// Absent slots are nil and skipped; a kind is only a candidate when at
// least one slot is populated. On an exact error tie the first kind in
// declaration order wins. ok is false when no candidate produced a finite
// error.
func GuessKind(shape model.Shape, measured [7]*float64) (best Kind, errors map[Kind]float64, ok bool) {
	rows := sharpRows
	if shape == model.ShapeFlat {
		rows = flatRows
	}

	errors = make(map[Kind]float64)
	bestError := math.MaxFloat64

	for _, row := range rows {
		count := 0
		sum := 0.0
		for i, m := range measured {
			if m == nil {
				continue
			}
			count++
			diff := *m - float64(row.pitches[i])
			sum += diff * diff
		}
		if count == 0 {
			continue
		}
		rms := math.Sqrt(sum / float64(count))
		errors[row.kind] = rms
		if rms < bestError {
			bestError = rms
			best = row.kind
			ok = true
		}
	}

	logger.Debug().Stringer("best", best).Interface("errors", errors).Msg("guessed clef kind")
	return best, errors, ok
}

// Staff is the slice of the score hierarchy the clef logic needs.
type Staff interface {
	// PitchPositionOf converts a page location into a pitch position
	// relative to this staff.
	PitchPositionOf(p model.Point) float64
}

// KindOf resolves a clef glyph shape to a kind. The C-clef shape is
// ambiguous and is disambiguated by the glyph's vertical position on the
// staff: rounded pitch position >= -1 reads as Alto, below as Tenor.
func KindOf(shape model.Shape, staff Staff, location model.Point) (Kind, bool) {
	switch shape {
	case model.ShapeGClef, model.ShapeGClefSmall, model.ShapeGClef8va, model.ShapeGClef8vb:
		return Treble, true
	case model.ShapeCClef:
		pp := int(math.Round(staff.PitchPositionOf(location)))
		if pp >= -1 {
			return Alto, true
		}
		return Tenor, true
	case model.ShapeFClef, model.ShapeFClefSmall, model.ShapeFClef8va, model.ShapeFClef8vb:
		return Bass, true
	case model.ShapePercClef:
		return Percussion, true
	default:
		return 0, false
	}
}

// Clef is an immutable clef interpretation attached to a staff.
type Clef struct {
	Glyph *model.Glyph
	Shape model.Shape
	Grade float64
	Staff Staff
	Pitch int
	Kind  Kind
}

// defaultClef substitutes whenever no current clef is in context. Never
// mutated.
var defaultClef = &Clef{Shape: model.ShapeGClef, Grade: 1, Pitch: 2, Kind: Treble}

// Default reports the process-wide default clef (treble, reference line +2).
func Default() *Clef {
	return defaultClef
}

// Create interprets a recognized clef glyph on a staff. Returns nil when
// the glyph shape is not a clef shape.
func Create(glyph *model.Glyph, staff Staff) *Clef {
	kind, ok := KindOf(glyph.Shape, staff, glyph.Location)
	if !ok {
		return nil
	}
	pitch := kind.ReferencePitch()
	if kind == Alto || kind == Tenor {
		// C clefs keep the measured placement rather than the nominal one.
		pitch = int(math.Round(staff.PitchPositionOf(glyph.Location)))
	}
	return &Clef{
		Glyph: glyph,
		Shape: glyph.Shape,
		Grade: glyph.Grade,
		Staff: staff,
		Pitch: pitch,
		Kind:  kind,
	}
}

// Replicate copies this clef onto a target staff, for staves whose clef
// visually carries over without its own recognized symbol. The copy has no
// source glyph and no confidence of its own.
func (c *Clef) Replicate(target Staff) *Clef {
	return &Clef{
		Shape: c.Shape,
		Staff: target,
		Pitch: c.Pitch,
		Kind:  c.Kind,
	}
}

// NoteStepOf reports the note step for a note at the given pitch position
// under clef c, falling back to the default clef when c is nil. Undefined
// on percussion staves.
func NoteStepOf(c *Clef, pitchPosition int) (Step, bool) {
	if c == nil {
		c = defaultClef
	}
	return c.NoteStepOf(pitchPosition)
}

// OctaveOf reports the octave for a note at the given pitch position under
// clef c, falling back to the default clef when c is nil.
func OctaveOf(c *Clef, pitchPosition int) int {
	if c == nil {
		c = defaultClef
	}
	return c.OctaveOf(pitchPosition)
}

func (c *Clef) NoteStepOf(pitchPosition int) (Step, bool) {
	switch c.Shape {
	case model.ShapeGClef, model.ShapeGClefSmall, model.ShapeGClef8va, model.ShapeGClef8vb:
		return Step(posMod(71 - pitchPosition)), true
	case model.ShapeCClef:
		return Step(posMod(72 - c.Pitch - pitchPosition)), true
	case model.ShapeFClef, model.ShapeFClefSmall, model.ShapeFClef8va, model.ShapeFClef8vb:
		return Step(posMod(73 - pitchPosition)), true
	case model.ShapePercClef:
		return 0, false
	default:
		logger.Error().Str("shape", string(c.Shape)).Msg("no note step defined for shape")
		return 0, false
	}
}

func (c *Clef) OctaveOf(pitchPosition int) int {
	switch c.Shape {
	case model.ShapeGClef, model.ShapeGClefSmall:
		return (34 - pitchPosition) / 7
	case model.ShapeGClef8va:
		return ((34 - pitchPosition) / 7) + 1
	case model.ShapeGClef8vb:
		return ((34 - pitchPosition) / 7) - 1
	case model.ShapeCClef:
		return (28 - c.Pitch - pitchPosition) / 7
	case model.ShapeFClef, model.ShapeFClefSmall:
		return (22 - pitchPosition) / 7
	case model.ShapeFClef8va:
		return ((22 - pitchPosition) / 7) + 1
	case model.ShapeFClef8vb:
		return ((22 - pitchPosition) / 7) - 1
	case model.ShapePercClef:
		return 0
	default:
		logger.Error().Str("shape", string(c.Shape)).Msg("no octave defined for shape")
		return 0
	}
}

func posMod(v int) int {
	m := v % 7
	if m < 0 {
		m += 7
	}
	return m
}
