package skills

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// State is the persisted skill lifecycle: everything is enabled unless
// listed here. Stored at ~/.agentbase/skills.yaml.
type State struct {
	Disabled []string `yaml:"disabled"`
}

// DefaultStatePath returns the user-global lifecycle file location.
func DefaultStatePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolving user home directory")
	}
	return filepath.Join(homeDir, ".agentbase", "skills.yaml"), nil
}

// LoadState reads the lifecycle file. A missing file is an empty state,
// not an error.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, errors.Wrap(err, "reading skill state")
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "parsing skill state")
	}
	return &state, nil
}

// Save writes the state atomically: temp file in the same directory,
// then rename.
func (s *State) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshaling skill state")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating state directory")
	}

	tmp, err := os.CreateTemp(dir, ".skills-*.yaml")
	if err != nil {
		return errors.Wrap(err, "creating temp state file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "writing temp state file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing temp state file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replacing state file")
	}
	return nil
}

// IsDisabled reports whether the named skill is disabled.
func (s *State) IsDisabled(name string) bool {
	return slices.Contains(s.Disabled, Slugify(name))
}

// Disable marks a skill disabled. Idempotent.
func (s *State) Disable(name string) {
	slug := Slugify(name)
	if !slices.Contains(s.Disabled, slug) {
		s.Disabled = append(s.Disabled, slug)
		slices.Sort(s.Disabled)
	}
}

// Enable removes a skill from the disabled list. Idempotent.
func (s *State) Enable(name string) {
	slug := Slugify(name)
	s.Disabled = slices.DeleteFunc(s.Disabled, func(n string) bool {
		return n == slug
	})
}

// Apply stamps lifecycle state onto loaded manifests.
func (s *State) Apply(manifests map[string]*SkillManifest) {
	for name, manifest := range manifests {
		manifest.Enabled = !s.IsDisabled(name)
	}
}
