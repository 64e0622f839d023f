// Package model holds the plain data types shared across the pipeline:
// recognizer glyphs, the score file format, HTTP payloads and report
// artifacts.
package model

import "github.com/davidorman/scoremend/rational"

// ScoreFile is the JSON document produced by the recognition stage and
// rewritten by the audit pass.
type ScoreFile struct {
	ID    string    `json:"id"`
	Title string    `json:"title,omitempty"`
	Parts []PartDTO `json:"parts"`
}

type PartDTO struct {
	Name     string       `json:"name,omitempty"`
	Staves   []StaffDTO   `json:"staves"`
	Measures []MeasureDTO `json:"measures"`
}

// StaffDTO carries the staff geometry needed to convert a glyph location
// into a pitch position, plus the staff's recognized clef glyph if any.
// ResolvedClef is filled in by the clef resolution pass on the way out.
type StaffDTO struct {
	MidlineY     float64 `json:"midline_y"`
	LineSpacing  float64 `json:"line_spacing"`
	Clef         *Glyph  `json:"clef,omitempty"`
	ResolvedClef string  `json:"resolved_clef,omitempty"`
}

// MeasureDTO is one measure of one part. TimeSigs is positional per staff;
// entries may be nil (no explicit signature on that staff).
type MeasureDTO struct {
	TimeSigs []*TimeSigDTO `json:"time_signatures,omitempty"`
	Voices   []VoiceDTO    `json:"voices,omitempty"`
}

type TimeSigDTO struct {
	Num         int      `json:"num"`
	Den         int      `json:"den"`
	Manual      bool     `json:"manual,omitempty"`
	Glyph       *Glyph   `json:"glyph,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// VoiceDTO is one rhythmic line of a measure. Inferred is the time
// signature the rhythm analysis derived from the voice content, absent
// when inconclusive.
type VoiceDTO struct {
	ID       int                `json:"id"`
	Inferred *rational.Rational `json:"inferred,omitempty"`
}
