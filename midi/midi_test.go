package midi

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/davidorman/scoremend/rational"
	"github.com/davidorman/scoremend/timesig"
)

// waltzInCommonTime builds an SMF announcing 4/4 whose two bars each hold
// only three quarter notes of content.
func waltzInCommonTime(t *testing.T) *smf.SMF {
	t.Helper()
	clock := smf.MetricTicks(960)
	quarter := clock.Ticks4th()

	var tr smf.Track
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(3*quarter, gomidi.NoteOff(0, 60))
	tr.Add(quarter, gomidi.NoteOn(0, 62, 100)) // next bar
	tr.Add(3*quarter, gomidi.NoteOff(0, 62))
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = clock
	require.NoError(t, s.Add(tr))
	return s
}

func TestFromSMF(t *testing.T) {
	page, err := FromSMF(waltzInCommonTime(t), "waltz")
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(2, page.MeasureCount())
	require.Len(t, page.Parts, 1)

	slice, err := page.VerticalSlice(0)
	require.NoError(t, err)
	m := slice[0]

	sig := m.TimeSignature(0)
	require.NotNil(t, sig)
	r, err := sig.Rational()
	require.NoError(t, err)
	assert.Equal(rational.MustNew(4, 4), r)

	require.Len(t, m.Voices(), 1)
	inferred, ok := m.Voices()[0].InferredTimeSignature()
	assert.True(ok)
	assert.Equal(rational.MustNew(3, 4), inferred)
}

func TestFromSMFThenAudit(t *testing.T) {
	page, err := FromSMF(waltzInCommonTime(t), "waltz")
	require.NoError(t, err)

	aud := timesig.NewAuditor(timesig.DefaultPolicy())
	assert.True(t, aud.Audit(page))

	slice, err := page.VerticalSlice(0)
	require.NoError(t, err)
	r, err := slice[0].TimeSignature(0).Rational()
	require.NoError(t, err)
	assert.Equal(t, rational.MustNew(3, 4), r)
}

func TestFromSMFRejectsEmptyFile(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Close(0)
	require.NoError(t, s.Add(tr))

	_, err := FromSMF(s, "empty")
	assert.Error(t, err)
}

func TestExportRoundTrip(t *testing.T) {
	page, err := FromSMF(waltzInCommonTime(t), "waltz")
	require.NoError(t, err)
	timesig.NewAuditor(timesig.DefaultPolicy()).Audit(page)

	path := filepath.Join(t.TempDir(), "corrected.mid")
	require.NoError(t, Export(page, path))

	out, err := ReadFile(path)
	require.NoError(t, err)

	var num, den uint8
	found := false
	for _, track := range out.Tracks {
		for _, event := range track {
			if event.Message.GetMetaMeter(&num, &den) {
				found = true
			}
		}
	}
	require.True(t, found)
	assert.Equal(t, uint8(3), num)
	assert.Equal(t, uint8(4), den)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.mid"))
	assert.Error(t, err)
}
