package timesig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidorman/scoremend/model"
	"github.com/davidorman/scoremend/rational"
	"github.com/davidorman/scoremend/score"
)

func sig(num, den int, manual bool) *model.TimeSigDTO {
	return &model.TimeSigDTO{Num: num, Den: den, Manual: manual}
}

func voice(id, num, den int) model.VoiceDTO {
	r := rational.MustNew(num, den)
	return model.VoiceDTO{ID: id, Inferred: &r}
}

func buildPage(t *testing.T, parts ...model.PartDTO) *score.Page {
	t.Helper()
	page, err := score.Build(&model.ScoreFile{ID: "test-page", Parts: parts})
	require.NoError(t, err)
	return page
}

// onePart builds a single-staff part whose measures are given as DTOs.
func onePart(measures ...model.MeasureDTO) model.PartDTO {
	return model.PartDTO{
		Name:     "P1",
		Staves:   []model.StaffDTO{{MidlineY: 100, LineSpacing: 10}},
		Measures: measures,
	}
}

func sigValue(t *testing.T, page *score.Page, measure, staff int) rational.Rational {
	t.Helper()
	slice, err := page.VerticalSlice(measure)
	require.NoError(t, err)
	ts := slice[0].TimeSignature(staff)
	require.NotNil(t, ts)
	r, err := ts.Rational()
	require.NoError(t, err)
	return r
}

// Page of 4 vertical measures; measure 1 carries an explicit 4/4 and the
// voices vote 3/4 five times against 4/4 once.
func contradictedPage(t *testing.T, manual bool) *score.Page {
	return buildPage(t, onePart(
		model.MeasureDTO{
			TimeSigs: []*model.TimeSigDTO{sig(4, 4, manual)},
			Voices:   []model.VoiceDTO{voice(1, 3, 4)},
		},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 3, 4), voice(2, 3, 4)}},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 3, 4), voice(2, 4, 4)}},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 3, 4)}},
	))
}

func TestAuditCorrectsContradictedSignature(t *testing.T) {
	page := contradictedPage(t, false)
	aud := NewAuditor(DefaultPolicy())

	assert.True(t, aud.Audit(page))
	assert.Equal(t, rational.MustNew(3, 4), sigValue(t, page, 0, 0))
}

func TestAuditLeavesManualSignatureAlone(t *testing.T) {
	page := contradictedPage(t, true)
	aud := NewAuditor(DefaultPolicy())

	assert.False(t, aud.Audit(page))
	assert.Equal(t, rational.MustNew(1, 1), sigValue(t, page, 0, 0))
}

func TestAuditIsIdempotent(t *testing.T) {
	page := contradictedPage(t, false)
	aud := NewAuditor(DefaultPolicy())

	assert.True(t, aud.Audit(page))
	assert.False(t, aud.Audit(page))
	assert.Equal(t, rational.MustNew(3, 4), sigValue(t, page, 0, 0))
}

func TestAuditKeepsAgreeingSignature(t *testing.T) {
	page := buildPage(t, onePart(
		model.MeasureDTO{
			TimeSigs: []*model.TimeSigDTO{sig(3, 4, false)},
			Voices:   []model.VoiceDTO{voice(1, 3, 4)},
		},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 3, 4)}},
	))
	aud := NewAuditor(DefaultPolicy())

	assert.False(t, aud.Audit(page))
	assert.Equal(t, rational.MustNew(3, 4), sigValue(t, page, 0, 0))
}

func TestHistogramMajorityWins(t *testing.T) {
	// 2/4 three times, 3/4 once: 2/4 must win.
	page := buildPage(t, onePart(
		model.MeasureDTO{
			TimeSigs: []*model.TimeSigDTO{sig(4, 4, false)},
			Voices:   []model.VoiceDTO{voice(1, 2, 4), voice(2, 3, 4)},
		},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 2, 4), voice(2, 2, 4)}},
	))
	aud := NewAuditor(DefaultPolicy())

	assert.True(t, aud.Audit(page))
	assert.Equal(t, rational.MustNew(2, 4), sigValue(t, page, 0, 0))
}

func TestHistogramTieBreaksFirstSeen(t *testing.T) {
	page := buildPage(t, onePart(
		model.MeasureDTO{
			TimeSigs: []*model.TimeSigDTO{sig(4, 4, false)},
			Voices:   []model.VoiceDTO{voice(1, 3, 4), voice(2, 2, 4)},
		},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 3, 4), voice(2, 2, 4)}},
	))
	aud := NewAuditor(DefaultPolicy())

	assert.True(t, aud.Audit(page))
	assert.Equal(t, rational.MustNew(3, 4), sigValue(t, page, 0, 0))
}

func TestImplausibleSignatureRejected(t *testing.T) {
	page := buildPage(t, onePart(
		model.MeasureDTO{
			TimeSigs: []*model.TimeSigDTO{sig(4, 4, false)},
			Voices:   []model.VoiceDTO{voice(1, 5, 7), voice(2, 5, 7)},
		},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 5, 7)}},
	))
	aud := NewAuditor(DefaultPolicy())

	assert.False(t, aud.Audit(page))
	assert.Equal(t, rational.MustNew(1, 1), sigValue(t, page, 0, 0))
}

func TestSecondRegionAuditedIndependently(t *testing.T) {
	page := buildPage(t, onePart(
		// First region: explicit 4/4, evidence agrees.
		model.MeasureDTO{
			TimeSigs: []*model.TimeSigDTO{sig(4, 4, false)},
			Voices:   []model.VoiceDTO{voice(1, 4, 4)},
		},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 4, 4)}},
		// Second region: explicit 2/4, evidence says 3/4, correction expected.
		model.MeasureDTO{
			TimeSigs: []*model.TimeSigDTO{sig(2, 4, false)},
			Voices:   []model.VoiceDTO{voice(1, 3, 4)},
		},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 3, 4)}},
	))
	aud := NewAuditor(DefaultPolicy())

	assert.True(t, aud.Audit(page))
	assert.Equal(t, rational.MustNew(1, 1), sigValue(t, page, 0, 0))
	assert.Equal(t, rational.MustNew(3, 4), sigValue(t, page, 2, 0))
}

func TestManualRegionShieldsOnlyItself(t *testing.T) {
	page := buildPage(t, onePart(
		model.MeasureDTO{
			TimeSigs: []*model.TimeSigDTO{sig(4, 4, true)},
			Voices:   []model.VoiceDTO{voice(1, 3, 4)},
		},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 3, 4)}},
		model.MeasureDTO{
			TimeSigs: []*model.TimeSigDTO{sig(4, 4, false)},
			Voices:   []model.VoiceDTO{voice(1, 2, 4)},
		},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 2, 4)}},
	))
	aud := NewAuditor(DefaultPolicy())

	assert.True(t, aud.Audit(page))
	assert.Equal(t, rational.MustNew(1, 1), sigValue(t, page, 0, 0))
	assert.Equal(t, rational.MustNew(1, 2), sigValue(t, page, 2, 0))
}

func TestVotesCountedAcrossParts(t *testing.T) {
	p1 := onePart(
		model.MeasureDTO{
			TimeSigs: []*model.TimeSigDTO{sig(4, 4, false)},
			Voices:   []model.VoiceDTO{voice(1, 3, 4)},
		},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 4, 4)}},
	)
	p2 := model.PartDTO{
		Name:   "P2",
		Staves: []model.StaffDTO{{MidlineY: 300, LineSpacing: 10}},
		Measures: []model.MeasureDTO{
			{
				TimeSigs: []*model.TimeSigDTO{sig(4, 4, false)},
				Voices:   []model.VoiceDTO{voice(1, 3, 4)},
			},
			{Voices: []model.VoiceDTO{voice(1, 3, 4)}},
		},
	}
	page := buildPage(t, p1, p2)
	aud := NewAuditor(DefaultPolicy())

	// 3/4 wins 3 votes to 1 and both parts' opening signatures move.
	assert.True(t, aud.Audit(page))
	want := rational.MustNew(3, 4)
	slice, err := page.VerticalSlice(0)
	require.NoError(t, err)
	for _, m := range slice {
		r, err := m.TimeSignature(0).Rational()
		require.NoError(t, err)
		assert.Equal(t, want, r)
	}
}

func TestMalformedSignatureSkippedNotFatal(t *testing.T) {
	glyph := model.NewGlyph(model.ShapeSharp, 0.4, model.Point{})
	part := model.PartDTO{
		Name: "P1",
		Staves: []model.StaffDTO{
			{MidlineY: 100, LineSpacing: 10},
			{MidlineY: 200, LineSpacing: 10},
		},
		Measures: []model.MeasureDTO{
			{
				TimeSigs: []*model.TimeSigDTO{
					sig(4, 4, false),
					{Num: 0, Den: 0, Glyph: &glyph},
				},
				Voices: []model.VoiceDTO{voice(1, 3, 4)},
			},
			{Voices: []model.VoiceDTO{voice(1, 3, 4)}},
		},
	}
	page := buildPage(t, part)
	aud := NewAuditor(DefaultPolicy())

	assert.True(t, aud.Audit(page))
	// The healthy staff was corrected.
	assert.Equal(t, rational.MustNew(3, 4), sigValue(t, page, 0, 0))
	// The malformed one got a diagnostic instead of aborting the page.
	slice, err := page.VerticalSlice(0)
	require.NoError(t, err)
	bad := slice[0].TimeSignature(1)
	require.NotNil(t, bad)
	assert.NotEmpty(t, bad.Diagnostics())
}

func TestRaggedPartsAbandonRegion(t *testing.T) {
	p1 := onePart(
		model.MeasureDTO{
			TimeSigs: []*model.TimeSigDTO{sig(4, 4, false)},
			Voices:   []model.VoiceDTO{voice(1, 3, 4)},
		},
		model.MeasureDTO{Voices: []model.VoiceDTO{voice(1, 3, 4)}},
	)
	// Second part is one measure short: the vertical slice at index 1 is
	// broken, so the region must be dropped without corrections.
	p2 := model.PartDTO{
		Name:   "P2",
		Staves: []model.StaffDTO{{MidlineY: 300, LineSpacing: 10}},
		Measures: []model.MeasureDTO{
			{Voices: []model.VoiceDTO{voice(1, 3, 4)}},
		},
	}
	page := buildPage(t, p1, p2)
	aud := NewAuditor(DefaultPolicy())

	assert.False(t, aud.Audit(page))
	assert.Equal(t, rational.MustNew(1, 1), sigValue(t, page, 0, 0))
}

func TestNoInferenceNoCorrection(t *testing.T) {
	page := buildPage(t, onePart(
		model.MeasureDTO{TimeSigs: []*model.TimeSigDTO{sig(4, 4, false)}},
		model.MeasureDTO{Voices: []model.VoiceDTO{{ID: 1}}},
	))
	aud := NewAuditor(DefaultPolicy())

	assert.False(t, aud.Audit(page))
}
