package skills

import (
	"context"

	"github.com/ipdelete/agent-base/pkg/logger"
	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

// NewRegistryFromConfig wires up the registry the way commands need it:
// configured skill directories ahead of the defaults, the configured
// allowlist, and the user lifecycle state file. Failures degrade to an
// emptier registry rather than failing the command.
func NewRegistryFromConfig(ctx context.Context, cfg llmtypes.SkillsConfig) *Registry {
	log := logger.G(ctx)

	dirs := append([]string{}, cfg.Dirs...)
	if defaults, err := DefaultDirs(); err == nil {
		dirs = append(dirs, defaults...)
	} else {
		log.WithError(err).Warn("default skill directories unavailable")
	}

	discovery, err := NewDiscovery(WithSkillDirs(dirs...))
	if err != nil {
		log.WithError(err).Warn("skill discovery unavailable, continuing without skills")
		discovery = &Discovery{}
	}

	opts := []RegistryOption{WithAllowlist(cfg.Allowed)}
	if statePath, err := DefaultStatePath(); err == nil {
		opts = append(opts, WithStatePath(statePath))
	}

	registry := NewRegistry(discovery, opts...)
	registry.Load(ctx)
	return registry
}
