package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello-extended", "hello-extended"},
		{"Hello_Extended", "hello-extended"},
		{"Kalshi Markets", "kalshi-markets"},
		{"  Web  Access  ", "web-access"},
		{"weird!@#name", "weirdname"},
		{"--doubled--hyphens--", "doubled-hyphens"},
		{"ALLCAPS", "allcaps"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestMetadataValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		md := Metadata{Name: "hello-extended", Description: "Greets people"}
		assert.NoError(t, md.Validate())
	})

	t.Run("aggregates all problems", func(t *testing.T) {
		md := Metadata{}
		err := md.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
		assert.Contains(t, err.Error(), "description is required")
	})

	t.Run("unusable name", func(t *testing.T) {
		md := Metadata{Name: "!!!", Description: "desc"}
		err := md.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no usable characters")
	})

	t.Run("unusable alias", func(t *testing.T) {
		md := Metadata{Name: "ok", Description: "desc", Aliases: []string{"fine", "???"}}
		err := md.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `alias "???"`)
	})

	t.Run("bad trigger pattern is not a validation error", func(t *testing.T) {
		md := Metadata{
			Name:        "ok",
			Description: "desc",
			Triggers:    Triggers{Patterns: []string{"[unclosed"}},
		}
		assert.NoError(t, md.Validate())
	})
}

func TestMetadataManifest(t *testing.T) {
	md := Metadata{
		Name:        "Hello Extended",
		Description: "  Greets people  ",
		Aliases:     []string{"Hello", "greet_bot"},
		Triggers:    Triggers{Verbs: []string{"greet"}},
	}

	manifest := md.Manifest("body text", "/tmp/skills/hello")

	assert.Equal(t, "hello-extended", manifest.Name)
	assert.Equal(t, []string{"hello", "greet-bot"}, manifest.Aliases)
	assert.Equal(t, "Greets people", manifest.Summary)
	assert.Equal(t, "body text", manifest.Instructions)
	assert.Equal(t, []string{"greet"}, manifest.Triggers.Verbs)
	assert.Equal(t, "/tmp/skills/hello", manifest.Directory)
	assert.True(t, manifest.Enabled)
}

func TestMatchName(t *testing.T) {
	manifest := &SkillManifest{Name: "hello-extended", Aliases: []string{"greeter"}}

	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"exact slug", "please use hello-extended now", true},
		{"underscore separator", "try hello_extended", true},
		{"space separator", "use hello extended please", true},
		{"mixed case", "USE Hello-Extended", true},
		{"alias", "ask the greeter", true},
		{"partial word", "hello-extendedish is not it", false},
		{"name split across words", "say hello to my extended family", false},
		{"unrelated", "what is the weather", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, manifest.MatchName(tt.message))
		})
	}
}

func TestMatchKeywordAndVerb(t *testing.T) {
	manifest := &SkillManifest{
		Name: "test-runner",
		Triggers: Triggers{
			Keywords: []string{"test suite", "coverage"},
			Verbs:    []string{"run"},
		},
	}

	t.Run("keyword whole word", func(t *testing.T) {
		assert.True(t, manifest.MatchKeyword("what is our coverage like"))
	})

	t.Run("keyword phrase tolerates extra spaces", func(t *testing.T) {
		assert.True(t, manifest.MatchKeyword("execute the test  suite now"))
	})

	t.Run("keyword case-insensitive", func(t *testing.T) {
		assert.True(t, manifest.MatchKeyword("COVERAGE report"))
	})

	t.Run("verb whole word", func(t *testing.T) {
		assert.True(t, manifest.MatchVerb("run the thing"))
	})

	t.Run("verb does not match inside larger word", func(t *testing.T) {
		assert.False(t, manifest.MatchVerb("the runner is fast"))
		assert.False(t, manifest.MatchVerb("we reran everything"))
	})
}

func TestMatchPattern(t *testing.T) {
	t.Run("authored pattern semantics", func(t *testing.T) {
		manifest := &SkillManifest{
			Name:     "kalshi-markets",
			Triggers: Triggers{Patterns: []string{`price of [A-Z]{2,}`}},
		}

		assert.True(t, manifest.MatchPattern("what is the price of KALSHI today"))
		// The pattern was authored case-sensitive, so it stays that way.
		assert.False(t, manifest.MatchPattern("what is the price of kalshi today"))
	})

	t.Run("invalid pattern disables only itself", func(t *testing.T) {
		manifest := &SkillManifest{
			Name:     "resilient",
			Triggers: Triggers{Patterns: []string{"[unclosed", `(?i)markets?`}},
		}

		assert.True(t, manifest.MatchPattern("check the Market"))
		assert.Equal(t, []string{"[unclosed"}, manifest.InvalidPatterns())
	})

	t.Run("no patterns", func(t *testing.T) {
		manifest := &SkillManifest{Name: "bare"}
		assert.False(t, manifest.MatchPattern("anything at all"))
		assert.Empty(t, manifest.InvalidPatterns())
	})
}
