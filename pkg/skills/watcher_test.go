package skills

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcherRequiresExistingDir(t *testing.T) {
	registry := newTestRegistry(t, "/non/existent/path")

	watcher, err := NewWatcher(registry, 10*time.Millisecond)
	require.Error(t, err)
	assert.Nil(t, watcher)
}

func TestWatcherMarksRegistryDirty(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "first", `---
name: first
description: The first skill
---

Content.
`)

	registry := newTestRegistry(t, tmpDir)
	require.Len(t, registry.Enabled(ctx), 1)

	watcher, err := NewWatcher(registry, 20*time.Millisecond)
	require.NoError(t, err)
	defer watcher.Close()

	go watcher.Start(ctx)

	writeSkill(t, tmpDir, "second", `---
name: second
description: Added while watching
---

Content.
`)

	require.Eventually(t, func() bool {
		return len(registry.Enabled(ctx)) == 2
	}, 3*time.Second, 25*time.Millisecond, "watcher should trigger a reload")
}
