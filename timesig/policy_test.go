package timesig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidorman/scoremend/rational"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert := assert.New(t)
	assert.True(p.Acceptable(rational.MustNew(3, 4)))
	assert.True(p.Acceptable(rational.MustNew(4, 4)))
	// 6/8 reduces to 3/4, same entry.
	assert.True(p.Acceptable(rational.MustNew(6, 8)))
	assert.False(p.Acceptable(rational.MustNew(5, 7)))
	assert.False(p.Acceptable(rational.MustNew(11, 16)))
}

func TestLoadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := "signatures:\n  - \"2/4\"\n  - \"7/8\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadPolicy(path)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.True(p.Acceptable(rational.MustNew(2, 4)))
	assert.True(p.Acceptable(rational.MustNew(7, 8)))
	assert.False(p.Acceptable(rational.MustNew(3, 4)))
}

func TestLoadPolicyRejectsBadFiles(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("signatures: []\n"), 0o644))
	_, err = LoadPolicy(path)
	assert.Error(t, err)

	path = filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("signatures:\n  - \"x/y\"\n"), 0o644))
	_, err = LoadPolicy(path)
	assert.Error(t, err)
}
