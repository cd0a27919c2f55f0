package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, dir string, opts ...RegistryOption) *Registry {
	t.Helper()
	discovery, err := NewDiscovery(WithSkillDirs(dir))
	require.NoError(t, err)
	return NewRegistry(discovery, opts...)
}

func TestRegistrySnapshotsAreSorted(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	for _, name := range []string{"zeta", "alpha", "midway"} {
		writeSkill(t, tmpDir, name, `---
name: `+name+`
description: Skill `+name+`
---

Content for `+name+`.
`)
	}

	registry := newTestRegistry(t, tmpDir)

	enabled := registry.Enabled(ctx)
	require.Len(t, enabled, 3)
	assert.Equal(t, "alpha", enabled[0].Name)
	assert.Equal(t, "midway", enabled[1].Name)
	assert.Equal(t, "zeta", enabled[2].Name)
}

func TestRegistryAppliesState(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	writeSkill(t, tmpDir, "hello-extended", `---
name: hello-extended
description: Greets people
---

Content.
`)
	writeSkill(t, tmpDir, "web-access", `---
name: web-access
description: Fetches pages
---

Content.
`)

	statePath := filepath.Join(t.TempDir(), "skills.yaml")
	state := &State{}
	state.Disable("web-access")
	require.NoError(t, state.Save(statePath))

	registry := newTestRegistry(t, tmpDir, WithStatePath(statePath))

	enabled := registry.Enabled(ctx)
	require.Len(t, enabled, 1)
	assert.Equal(t, "hello-extended", enabled[0].Name)

	all := registry.All(ctx)
	require.Len(t, all, 2)
	assert.False(t, all[1].Enabled, "web-access stays listed but disabled")
}

func TestRegistryAppliesAllowlist(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	writeSkill(t, tmpDir, "kalshi-markets", `---
name: kalshi-markets
description: Market prices
---

Content.
`)
	writeSkill(t, tmpDir, "web-access", `---
name: web-access
description: Fetches pages
---

Content.
`)

	registry := newTestRegistry(t, tmpDir, WithAllowlist([]string{"kalshi-*"}))

	all := registry.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "kalshi-markets", all[0].Name)
}

func TestRegistryDirtyReload(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	writeSkill(t, tmpDir, "first", `---
name: first
description: The first skill
---

Content.
`)

	registry := newTestRegistry(t, tmpDir)
	require.Len(t, registry.Enabled(ctx), 1)

	writeSkill(t, tmpDir, "second", `---
name: second
description: Added after the first load
---

Content.
`)

	// Without MarkDirty the snapshot stays stable.
	assert.Len(t, registry.Enabled(ctx), 1)

	registry.MarkDirty()
	assert.Len(t, registry.Enabled(ctx), 2)
}

func TestRegistryUnreadableStateDegrades(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	writeSkill(t, tmpDir, "hello-extended", `---
name: hello-extended
description: Greets people
---

Content.
`)

	statePath := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(statePath, []byte("disabled: {broken"), 0o644))

	registry := newTestRegistry(t, tmpDir, WithStatePath(statePath))

	// Malformed state means everything stays enabled.
	enabled := registry.Enabled(ctx)
	require.Len(t, enabled, 1)
	assert.True(t, enabled[0].Enabled)
}
