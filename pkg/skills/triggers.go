package skills

import (
	"regexp"
	"strings"
)

// Triggers carry the matching metadata a skill declares in frontmatter.
// Keywords and verbs match as whole words; patterns are regular
// expressions evaluated as authored.
type Triggers struct {
	Keywords []string `yaml:"keywords,omitempty" mapstructure:"keywords" json:"keywords,omitempty" jsonschema:"description=Topic words matched on word boundaries"`
	Verbs    []string `yaml:"verbs,omitempty" mapstructure:"verbs" json:"verbs,omitempty" jsonschema:"description=Action words matched on word boundaries"`
	Patterns []string `yaml:"patterns,omitempty" mapstructure:"patterns" json:"patterns,omitempty" jsonschema:"description=Regular expressions evaluated against the raw message"`
}

// compiledMatchers hold the match machinery derived from a manifest.
// Built once per manifest; a pattern that fails to compile is recorded
// in invalid and disables only itself.
type compiledMatchers struct {
	mentions []*regexp.Regexp
	keywords []*regexp.Regexp
	verbs    []*regexp.Regexp
	patterns []*regexp.Regexp
	invalid  []string
}

func (m *SkillManifest) compiled() *compiledMatchers {
	m.compileOnce.Do(func() {
		c := &compiledMatchers{}

		for _, name := range append([]string{m.Name}, m.Aliases...) {
			if re := mentionPattern(name); re != nil {
				c.mentions = append(c.mentions, re)
			}
		}
		for _, keyword := range m.Triggers.Keywords {
			if re := termPattern(keyword); re != nil {
				c.keywords = append(c.keywords, re)
			}
		}
		for _, verb := range m.Triggers.Verbs {
			if re := termPattern(verb); re != nil {
				c.verbs = append(c.verbs, re)
			}
		}
		for _, pattern := range m.Triggers.Patterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				c.invalid = append(c.invalid, pattern)
				continue
			}
			c.patterns = append(c.patterns, re)
		}

		m.matchers = c
	})
	return m.matchers
}

// MatchName reports whether the message mentions the skill's canonical
// name or any alias as a whole phrase. Hyphen, underscore and space are
// interchangeable separators, so "use hello extended" mentions
// hello-extended.
func (m *SkillManifest) MatchName(message string) bool {
	return matchAny(m.compiled().mentions, message)
}

// MatchKeyword reports whether any trigger keyword appears in the
// message as a whole word or phrase.
func (m *SkillManifest) MatchKeyword(message string) bool {
	return matchAny(m.compiled().keywords, message)
}

// MatchVerb reports whether any trigger verb appears in the message as
// a whole word.
func (m *SkillManifest) MatchVerb(message string) bool {
	return matchAny(m.compiled().verbs, message)
}

// MatchPattern reports whether any trigger pattern matches the raw
// message. Patterns that failed to compile never match and never
// affect their siblings.
func (m *SkillManifest) MatchPattern(message string) bool {
	return matchAny(m.compiled().patterns, message)
}

// InvalidPatterns returns the trigger patterns that failed to compile,
// for diagnostics.
func (m *SkillManifest) InvalidPatterns() []string {
	return m.compiled().invalid
}

func matchAny(res []*regexp.Regexp, message string) bool {
	for _, re := range res {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// mentionPattern builds a case-insensitive whole-phrase matcher for a
// skill name, treating hyphen, underscore and whitespace as the same
// separator.
func mentionPattern(name string) *regexp.Regexp {
	parts := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	if len(parts) == 0 {
		return nil
	}

	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = regexp.QuoteMeta(part)
	}

	re, err := regexp.Compile(`(?i)\b` + strings.Join(quoted, `[-_\s]+`) + `\b`)
	if err != nil {
		return nil
	}
	return re
}

// termPattern builds a case-insensitive word-boundary matcher for a
// keyword or verb, so "run" does not match inside "runner". Multi-word
// terms tolerate any whitespace between words.
func termPattern(term string) *regexp.Regexp {
	words := strings.Fields(strings.ToLower(term))
	if len(words) == 0 {
		return nil
	}

	quoted := make([]string, len(words))
	for i, word := range words {
		quoted[i] = regexp.QuoteMeta(word)
	}

	re, err := regexp.Compile(`(?i)\b` + strings.Join(quoted, `\s+`) + `\b`)
	if err != nil {
		return nil
	}
	return re
}
