package model

import (
	"time"

	"github.com/davidorman/scoremend/rational"
)

// ScoreMetadata is the catalog record kept outside the pipeline, looked up
// by score id.
type ScoreMetadata struct {
	Title    string `json:"title"`
	Composer string `json:"composer"`
	Year     uint   `json:"year,omitempty"`
}

// Correction records one rewritten time signature.
type Correction struct {
	Measure int
	Part    string
	Staff   int
	From    rational.Rational
	To      rational.Rational
}

// AuditReport is the gob artifact written after each audit run.
type AuditReport struct {
	ScoreID       string
	Path          string
	Modified      bool
	ResolvedClefs int
	Corrections   []Correction
	When          time.Time
}
