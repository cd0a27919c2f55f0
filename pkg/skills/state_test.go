package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStateMissingFile(t *testing.T) {
	state, err := LoadState(filepath.Join(t.TempDir(), "skills.yaml"))
	require.NoError(t, err)
	assert.Empty(t, state.Disabled)
}

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "skills.yaml")

	state := &State{}
	state.Disable("web-access")
	state.Disable("kalshi-markets")
	require.NoError(t, state.Save(path))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"kalshi-markets", "web-access"}, loaded.Disabled)
	assert.True(t, loaded.IsDisabled("web-access"))
	assert.True(t, loaded.IsDisabled("Web_Access"), "lookup normalizes names")
	assert.False(t, loaded.IsDisabled("hello-extended"))
}

func TestStateEnableDisableIdempotent(t *testing.T) {
	state := &State{}

	state.Disable("web-access")
	state.Disable("web-access")
	assert.Equal(t, []string{"web-access"}, state.Disabled)

	state.Enable("web-access")
	state.Enable("web-access")
	assert.Empty(t, state.Disabled)
}

func TestLoadStateMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte("disabled: {not: a list}"), 0o644))

	_, err := LoadState(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing skill state")
}

func TestStateApply(t *testing.T) {
	manifests := map[string]*SkillManifest{
		"hello-extended": {Name: "hello-extended", Enabled: true},
		"web-access":     {Name: "web-access", Enabled: true},
	}

	state := &State{}
	state.Disable("web-access")
	state.Apply(manifests)

	assert.True(t, manifests["hello-extended"].Enabled)
	assert.False(t, manifests["web-access"].Enabled)
}
