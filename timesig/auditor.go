// Package timesig audits a page's explicit time signatures against the
// rhythmic evidence of its voices and corrects the ones the evidence
// contradicts.
package timesig

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/davidorman/scoremend/rational"
	"github.com/davidorman/scoremend/score"
)

var logger = log.With().Str("component", "timesig").Logger()

// Auditor scans a page's vertical measures, splits them into regions
// bounded by explicit signatures, infers the dominant signature per region
// and rewrites the explicit signatures that disagree with it. Signatures
// marked manual open a region but protect it from correction.
type Auditor struct {
	policy Policy
}

func NewAuditor(policy Policy) *Auditor {
	return &Auditor{policy: policy}
}

// Audit runs one pass over the page and reports whether any signature was
// rewritten. Running it again without intervening changes reports false.
//
// Correctness is judged across the vertical slice (all parts sharing a
// measure id), not part by part, so the walk follows vertical measure
// indices.
func (a *Auditor) Audit(page *score.Page) bool {
	modified := false

	// Vertical measure that opened the live region, -1 when none.
	start := -1
	startManual := false

	count := page.MeasureCount()
	for i := 0; i < count; i++ {
		slice, err := page.VerticalSlice(i)
		if err != nil {
			logger.Warn().Str("page", page.ID).Err(err).
				Msg("broken measure chain, abandoning region")
			start = -1
			continue
		}

		has, manual := sliceSignature(slice)
		if has {
			if start >= 0 && !startManual {
				if a.checkRegion(page, start, i-1) {
					modified = true
				}
			}
			start = i
			startManual = manual
		}
	}

	if start >= 0 && !startManual {
		if a.checkRegion(page, start, count-1) {
			modified = true
		}
	}

	return modified
}

// sliceSignature reports whether any staff of the vertical slice carries
// an explicit time signature, and whether any such signature is manual.
func sliceSignature(slice []*score.Measure) (has, manual bool) {
	for _, m := range slice {
		for si := range m.Part().Staves {
			sig := m.TimeSignature(si)
			if sig == nil {
				continue
			}
			has = true
			if sig.IsManual() {
				manual = true
			}
		}
	}
	return has, manual
}

// checkRegion audits the vertical measures in [start, stop]: it votes the
// voice-inferred signatures into a histogram, filters the winner through
// the plausibility policy and rewrites every differing explicit signature
// in the region's opening slice. Reports whether anything was rewritten.
func (a *Auditor) checkRegion(page *score.Page, start, stop int) bool {
	logger.Debug().Int("start", start+1).Int("stop", stop+1).Msg("checking region")

	best, ok := a.bestSignature(page, start, stop)
	if !ok {
		logger.Debug().Int("start", start+1).Msg("no inferred signature in region")
		return false
	}
	if !a.policy.Acceptable(best) {
		logger.Debug().Stringer("sig", best).Msg("dominant signature too uncommon, leaving region untouched")
		return false
	}

	slice, err := page.VerticalSlice(start)
	if err != nil {
		logger.Warn().Err(err).Msg("broken measure chain, abandoning region")
		return false
	}

	modified := false
	for _, m := range slice {
		for si := range m.Part().Staves {
			sig := m.TimeSignature(si)
			if sig == nil {
				continue
			}
			current, err := sig.Rational()
			if err != nil {
				sig.AttachDiagnostic(fmt.Sprintf("could not check time signature: %v", err))
				continue
			}
			if current != best {
				logger.Info().
					Int("measure", m.ID()).
					Str("part", m.Part().Name).
					Int("staff", si+1).
					Stringer("from", current).
					Stringer("to", best).
					Msg("correcting time signature")
				sig.SetRational(best)
				modified = true
			}
		}
	}
	return modified
}

// bestSignature histograms the voice-inferred signatures over the region
// and picks the most frequent one. Ties break toward the value seen first
// in scan order, which keeps the result deterministic for a given page.
func (a *Auditor) bestSignature(page *score.Page, start, stop int) (rational.Rational, bool) {
	counts := make(map[rational.Rational]int)
	var order []rational.Rational

	for i := start; i <= stop; i++ {
		slice, err := page.VerticalSlice(i)
		if err != nil {
			logger.Warn().Err(err).Msg("broken measure chain, abandoning region")
			return rational.Rational{}, false
		}
		for _, m := range slice {
			for _, voice := range m.Voices() {
				inferred, ok := voice.InferredTimeSignature()
				if !ok {
					continue
				}
				if counts[inferred] == 0 {
					order = append(order, inferred)
				}
				counts[inferred]++
			}
		}
	}

	if len(order) == 0 {
		return rational.Rational{}, false
	}
	best := order[0]
	for _, r := range order[1:] {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best, true
}
