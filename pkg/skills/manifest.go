// Package skills provides the installable skills system: discovery of
// SKILL.md packages, lifecycle state, and the validated manifest records
// the context injection engine consumes. Skills are directories holding a
// SKILL.md file whose YAML frontmatter carries the skill's identity,
// one-line summary, and trigger metadata; the body is the full
// documentation injected at the deepest disclosure tier.
package skills

import (
	"regexp"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// SkillManifest is the validated, read-only record of one skill. The
// injection engine receives a snapshot of these and never mutates them;
// a manifest is safe for concurrent use once constructed.
type SkillManifest struct {
	// Name is the canonical skill name in slug form.
	Name string
	// Aliases are alternative names, also slug form.
	Aliases []string
	// Summary is the one-line description shown in registry listings.
	Summary string
	// Instructions is the SKILL.md body, injected at full depth.
	Instructions string
	// Triggers hold the matching metadata from frontmatter.
	Triggers Triggers
	// Enabled reflects lifecycle state; disabled manifests are loaded
	// for listing but never handed to the injection engine.
	Enabled bool
	// Directory is the skill's on-disk location.
	Directory string

	compileOnce sync.Once
	matchers    *compiledMatchers
}

// Metadata is the YAML frontmatter schema of SKILL.md files.
type Metadata struct {
	Name        string   `yaml:"name" mapstructure:"name" json:"name" jsonschema:"required,description=Canonical skill name in slug form"`
	Description string   `yaml:"description" mapstructure:"description" json:"description" jsonschema:"required,description=One-line summary shown in skill listings"`
	Aliases     []string `yaml:"aliases,omitempty" mapstructure:"aliases" json:"aliases,omitempty" jsonschema:"description=Alternative names the skill answers to"`
	Triggers    Triggers `yaml:"triggers,omitempty" mapstructure:"triggers" json:"triggers,omitempty"`
}

// Validate reports every structural problem with the metadata at once.
// Trigger patterns are deliberately not validated here: a malformed
// pattern disables only itself at match time and must not reject the
// skill.
func (md *Metadata) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(md.Name) == "" {
		result = multierror.Append(result, errors.New("name is required in frontmatter"))
	} else if Slugify(md.Name) == "" {
		result = multierror.Append(result, errors.Errorf("name %q contains no usable characters", md.Name))
	}

	if strings.TrimSpace(md.Description) == "" {
		result = multierror.Append(result, errors.New("description is required in frontmatter"))
	}

	for _, alias := range md.Aliases {
		if Slugify(alias) == "" {
			result = multierror.Append(result, errors.Errorf("alias %q contains no usable characters", alias))
		}
	}

	return result.ErrorOrNil()
}

// Manifest builds a SkillManifest from validated metadata and the
// SKILL.md body. Name and aliases are normalized to slug form.
func (md *Metadata) Manifest(instructions, directory string) *SkillManifest {
	aliases := make([]string, 0, len(md.Aliases))
	for _, alias := range md.Aliases {
		if slug := Slugify(alias); slug != "" {
			aliases = append(aliases, slug)
		}
	}

	return &SkillManifest{
		Name:         Slugify(md.Name),
		Aliases:      aliases,
		Summary:      strings.TrimSpace(md.Description),
		Instructions: instructions,
		Triggers:     md.Triggers,
		Enabled:      true,
		Directory:    directory,
	}
}

var slugIllegal = regexp.MustCompile(`[^a-z0-9-]`)

// Slugify normalizes a skill name to its canonical form: lowercase,
// spaces and underscores to hyphens, illegal runes stripped, doubled
// hyphens collapsed, leading and trailing hyphens trimmed.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	slug = slugIllegal.ReplaceAllString(slug, "")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
