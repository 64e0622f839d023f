package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidorman/scoremend/model"
	"github.com/davidorman/scoremend/rational"
)

func writeScoreFile(t *testing.T, dir string, f model.ScoreFile) string {
	t.Helper()
	data, err := json.MarshalIndent(f, "", "  ")
	require.NoError(t, err)
	path := filepath.Join(dir, "score.json")
	require.NoError(t, os.WriteFile(path, append(data, '\n'), 0o644))
	return path
}

func TestRunAuditRewritesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OUT_PATH", filepath.Join(dir, "out"))
	path := writeScoreFile(t, dir, contradictedScore(false))

	report, err := runAudit(path)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.True(report.Modified)
	require.Len(t, report.Corrections, 1)
	assert.Equal(rational.MustNew(1, 1), report.Corrections[0].From)
	assert.Equal(rational.MustNew(3, 4), report.Corrections[0].To)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out model.ScoreFile
	require.NoError(t, json.Unmarshal(data, &out))
	sig := out.Parts[0].Measures[0].TimeSigs[0]
	require.NotNil(t, sig)
	assert.Equal(3, sig.Num)
	assert.Equal(4, sig.Den)

	// One report artifact lands in the out dir.
	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Len(entries, 1)
}

func TestRunAuditDryRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OUT_PATH", filepath.Join(dir, "out"))
	path := writeScoreFile(t, dir, contradictedScore(false))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	dryRun = true
	defer func() { dryRun = false }()

	report, err := runAudit(path)
	require.NoError(t, err)
	assert.True(t, report.Modified)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDiffCorrections(t *testing.T) {
	before := contradictedScore(false)
	after := contradictedScore(false)
	after.Parts[0].Measures[0].TimeSigs[0].Num = 3

	corrections := diffCorrections(&before, &after)
	require.Len(t, corrections, 1)
	assert.Equal(t, 1, corrections[0].Measure)
	assert.Equal(t, 1, corrections[0].Staff)
	assert.Equal(t, rational.MustNew(1, 1), corrections[0].From)
	assert.Equal(t, rational.MustNew(3, 4), corrections[0].To)
}
