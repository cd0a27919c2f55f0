package skills

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ipdelete/agent-base/pkg/logger"
	"github.com/ipdelete/agent-base/pkg/telemetry"
)

// Registry owns the loaded manifest set and hands the chat pipeline an
// immutable snapshot per turn. Reloads happen lazily: a watcher or
// lifecycle change marks the registry dirty and the next snapshot
// re-runs discovery.
type Registry struct {
	discovery *Discovery
	allowed   []string
	statePath string

	mu        sync.RWMutex
	manifests []*SkillManifest
	loaded    bool
	dirty     atomic.Bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithAllowlist restricts the registry to skills matching the given
// glob patterns.
func WithAllowlist(allowed []string) RegistryOption {
	return func(r *Registry) {
		r.allowed = allowed
	}
}

// WithStatePath points the registry at a lifecycle state file.
func WithStatePath(path string) RegistryOption {
	return func(r *Registry) {
		r.statePath = path
	}
}

// NewRegistry creates a Registry over the given Discovery.
func NewRegistry(discovery *Discovery, opts ...RegistryOption) *Registry {
	r := &Registry{discovery: discovery}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load runs discovery and rebuilds the manifest set. Lifecycle state
// that cannot be read degrades to everything-enabled with a warning.
func (r *Registry) Load(ctx context.Context) {
	var manifests map[string]*SkillManifest
	telemetry.WithSpanFunc(ctx, "skills.discover", func(ctx context.Context) {
		manifests = FilterByAllowlist(r.discovery.Discover(ctx), r.allowed)
	})

	if r.statePath != "" {
		state, err := LoadState(r.statePath)
		if err != nil {
			logger.G(ctx).WithError(err).Warn("skill state unreadable, treating all skills as enabled")
			state = &State{}
		}
		state.Apply(manifests)
	}

	ordered := make([]*SkillManifest, 0, len(manifests))
	for _, manifest := range manifests {
		ordered = append(ordered, manifest)
	}
	slices.SortFunc(ordered, func(a, b *SkillManifest) int {
		return strings.Compare(a.Name, b.Name)
	})

	r.mu.Lock()
	r.manifests = ordered
	r.loaded = true
	r.mu.Unlock()
	r.dirty.Store(false)

	logger.G(ctx).WithField("count", len(ordered)).Debug("skill registry loaded")
}

// MarkDirty forces the next snapshot to re-run discovery. Called by the
// directory watcher and after lifecycle changes.
func (r *Registry) MarkDirty() {
	r.dirty.Store(true)
}

// Enabled returns a snapshot of the enabled manifests, sorted by name.
// The returned slice is the caller's to keep; the manifests themselves
// are shared and read-only.
func (r *Registry) Enabled(ctx context.Context) []*SkillManifest {
	r.refresh(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make([]*SkillManifest, 0, len(r.manifests))
	for _, manifest := range r.manifests {
		if manifest.Enabled {
			enabled = append(enabled, manifest)
		}
	}
	return enabled
}

// All returns a snapshot of every manifest, enabled or not, sorted by
// name.
func (r *Registry) All(ctx context.Context) []*SkillManifest {
	r.refresh(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.manifests)
}

func (r *Registry) refresh(ctx context.Context) {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()

	if !loaded || r.dirty.Load() {
		r.Load(ctx)
	}
}
