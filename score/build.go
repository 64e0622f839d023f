package score

import (
	"fmt"

	"github.com/davidorman/scoremend/model"
)

// Build materializes the entity grid from a recognized score file.
// Ragged parts are allowed here; the auditor deals with them region by
// region.
func Build(f *model.ScoreFile) (*Page, error) {
	page := &Page{ID: f.ID, Title: f.Title}

	for pi := range f.Parts {
		pd := &f.Parts[pi]
		if len(pd.Staves) == 0 {
			return nil, fmt.Errorf("part %d (%q) has no staves", pi, pd.Name)
		}

		part := &Part{Name: pd.Name}
		for si, sd := range pd.Staves {
			staff := &Staff{
				part:        part,
				index:       si,
				MidlineY:    sd.MidlineY,
				LineSpacing: sd.LineSpacing,
			}
			if sd.Clef != nil {
				g := *sd.Clef
				staff.ClefHypothesis = &g
			}
			part.Staves = append(part.Staves, staff)
		}

		for mi := range pd.Measures {
			md := &pd.Measures[mi]
			if len(md.TimeSigs) > len(part.Staves) {
				return nil, fmt.Errorf("part %d measure %d has %d time signatures for %d staves",
					pi, mi+1, len(md.TimeSigs), len(part.Staves))
			}

			m := &Measure{
				part:     part,
				index:    mi,
				timeSigs: make([]*TimeSignature, len(part.Staves)),
			}
			for si, sig := range md.TimeSigs {
				if sig == nil {
					continue
				}
				ts := &TimeSignature{
					num:         sig.Num,
					den:         sig.Den,
					manual:      sig.Manual,
					diagnostics: append([]string(nil), sig.Diagnostics...),
				}
				if sig.Glyph != nil {
					g := *sig.Glyph
					ts.glyph = &g
				}
				m.timeSigs[si] = ts
			}
			for _, vd := range md.Voices {
				v := &Voice{id: vd.ID}
				if vd.Inferred != nil {
					r := *vd.Inferred
					v.inferred = &r
				}
				m.voices = append(m.voices, v)
			}
			part.Measures = append(part.Measures, m)
		}

		page.Parts = append(page.Parts, part)
		if len(part.Measures) > page.measureCount {
			page.measureCount = len(part.Measures)
		}
	}

	return page, nil
}

// DTO dumps the page back into the score file format, carrying corrected
// signatures, attached diagnostics and resolved clefs.
func (p *Page) DTO() model.ScoreFile {
	f := model.ScoreFile{ID: p.ID, Title: p.Title}

	for _, part := range p.Parts {
		pd := model.PartDTO{Name: part.Name}
		for _, staff := range part.Staves {
			sd := model.StaffDTO{
				MidlineY:    staff.MidlineY,
				LineSpacing: staff.LineSpacing,
			}
			if staff.ClefHypothesis != nil {
				g := *staff.ClefHypothesis
				sd.Clef = &g
			}
			if staff.Clef != nil {
				sd.ResolvedClef = staff.Clef.Kind.String()
			}
			pd.Staves = append(pd.Staves, sd)
		}

		for _, m := range part.Measures {
			md := model.MeasureDTO{}
			hasSig := false
			for _, ts := range m.timeSigs {
				if ts == nil {
					md.TimeSigs = append(md.TimeSigs, nil)
					continue
				}
				hasSig = true
				sig := &model.TimeSigDTO{
					Num:         ts.num,
					Den:         ts.den,
					Manual:      ts.manual,
					Diagnostics: append([]string(nil), ts.diagnostics...),
				}
				if ts.glyph != nil {
					g := *ts.glyph
					sig.Glyph = &g
				}
				md.TimeSigs = append(md.TimeSigs, sig)
			}
			if !hasSig {
				md.TimeSigs = nil
			}
			for _, v := range m.voices {
				vd := model.VoiceDTO{ID: v.id}
				if v.inferred != nil {
					r := *v.inferred
					vd.Inferred = &r
				}
				md.Voices = append(md.Voices, vd)
			}
			pd.Measures = append(pd.Measures, md)
		}

		f.Parts = append(f.Parts, pd)
	}

	return f
}
