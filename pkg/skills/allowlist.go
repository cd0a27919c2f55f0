package skills

import (
	"github.com/gobwas/glob"
)

// FilterByAllowlist keeps only the manifests whose canonical name
// matches one of the allowed glob patterns ("kalshi-*", "web-access").
// An empty allowlist keeps everything; a pattern that fails to compile
// is skipped rather than failing the filter.
func FilterByAllowlist(manifests map[string]*SkillManifest, allowed []string) map[string]*SkillManifest {
	if len(allowed) == 0 {
		return manifests
	}

	globs := make([]glob.Glob, 0, len(allowed))
	for _, pattern := range allowed {
		if g, err := glob.Compile(pattern); err == nil {
			globs = append(globs, g)
		}
	}

	filtered := make(map[string]*SkillManifest)
	for name, manifest := range manifests {
		for _, g := range globs {
			if g.Match(name) {
				filtered[name] = manifest
				break
			}
		}
	}
	return filtered
}
