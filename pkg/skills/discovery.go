package skills

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/ipdelete/agent-base/pkg/logger"
)

const skillFileName = "SKILL.md"

// Discovery finds skills in the configured directories. Each skill is a
// directory containing a SKILL.md file; the first directory declaring a
// name wins, so earlier directories shadow later ones.
type Discovery struct {
	skillDirs []string
}

// Option configures a Discovery.
type Option func(*Discovery) error

// WithSkillDirs sets explicit skill directories, highest priority first.
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		d.skillDirs = dirs
		return nil
	}
}

// DefaultDirs returns the standard search path: the repo-local skills
// directory, then the user-global one.
func DefaultDirs() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "resolving user home directory")
	}
	return []string{
		"./skills",
		filepath.Join(homeDir, ".agentbase", "skills"),
	}, nil
}

// WithDefaultDirs searches the standard path.
func WithDefaultDirs() Option {
	return func(d *Discovery) error {
		dirs, err := DefaultDirs()
		if err != nil {
			return err
		}
		d.skillDirs = dirs
		return nil
	}
}

// NewDiscovery creates a Discovery. Without options it searches the
// default directories.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		opts = []Option{WithDefaultDirs()}
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Dirs returns the directories this Discovery searches.
func (d *Discovery) Dirs() []string {
	return d.skillDirs
}

// Discover loads every valid skill from the configured directories,
// keyed by canonical name. Broken skills are skipped with a warning;
// one bad skill never fails the load.
func (d *Discovery) Discover(ctx context.Context) map[string]*SkillManifest {
	manifests := make(map[string]*SkillManifest)

	for _, dir := range d.skillDirs {
		d.discoverDir(ctx, dir, manifests)
	}

	return manifests
}

func (d *Discovery) discoverDir(ctx context.Context, dir string, manifests map[string]*SkillManifest) {
	log := logger.G(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.WithField("dir", dir).WithError(err).Debug("skill directory not readable")
		return
	}

	for _, entry := range entries {
		skillDir := filepath.Join(dir, entry.Name())

		// Stat rather than entry.IsDir so symlinked skill directories
		// work; broken symlinks and plain files are skipped.
		info, err := os.Stat(skillDir)
		if err != nil || !info.IsDir() {
			continue
		}

		manifest, err := loadManifest(filepath.Join(skillDir, skillFileName))
		if err != nil {
			log.WithField("skill_dir", skillDir).WithError(err).Warn("skipping unloadable skill")
			continue
		}

		if _, exists := manifests[manifest.Name]; exists {
			log.WithField("skill", manifest.Name).WithField("skill_dir", skillDir).
				Debug("skill name already registered, keeping higher-priority entry")
			continue
		}
		manifests[manifest.Name] = manifest

		if invalid := manifest.InvalidPatterns(); len(invalid) > 0 {
			log.WithField("skill", manifest.Name).WithField("patterns", invalid).
				Warn("trigger patterns failed to compile and will never match")
		}
	}
}

// Get returns a single skill by canonical name or alias.
func (d *Discovery) Get(ctx context.Context, name string) (*SkillManifest, error) {
	manifests := d.Discover(ctx)

	slug := Slugify(name)
	if manifest, ok := manifests[slug]; ok {
		return manifest, nil
	}
	for _, manifest := range manifests {
		for _, alias := range manifest.Aliases {
			if alias == slug {
				return manifest, nil
			}
		}
	}

	return nil, errors.Errorf("skill %q not found", name)
}

// loadManifest parses one SKILL.md into a validated manifest.
func loadManifest(path string) (*SkillManifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading skill file")
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "parsing markdown")
	}

	raw := meta.Get(pctx)
	if raw == nil {
		return nil, errors.New("missing frontmatter")
	}

	var metadata Metadata
	if err := mapstructure.Decode(raw, &metadata); err != nil {
		return nil, errors.Wrap(err, "decoding frontmatter")
	}
	if err := metadata.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid frontmatter")
	}

	return metadata.Manifest(extractBody(string(content)), filepath.Dir(path)), nil
}

// extractBody strips the YAML frontmatter block and returns the
// documentation body.
func extractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Trim(strings.Join(lines[i+1:], "\n"), "\n")
		}
	}

	return content
}
