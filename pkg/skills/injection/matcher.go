package injection

import (
	"github.com/ipdelete/agent-base/pkg/skills"
)

// Reason records which trigger strategy matched a skill.
type Reason string

const (
	// ReasonName means the message mentioned the skill by name or alias.
	ReasonName Reason = "name"
	// ReasonKeyword means a trigger keyword appeared in the message.
	ReasonKeyword Reason = "keyword"
	// ReasonVerb means a trigger verb appeared in the message.
	ReasonVerb Reason = "verb"
	// ReasonPattern means a trigger regex matched the message.
	ReasonPattern Reason = "pattern"
	// ReasonNone means nothing matched.
	ReasonNone Reason = "none"
)

// MatchResult is the outcome of evaluating one manifest against one
// message.
type MatchResult struct {
	SkillName string
	Matched   bool
	Reason    Reason
}

// Matcher evaluates trigger strategies against a message. It is
// stateless and safe for concurrent use.
type Matcher struct{}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match evaluates every manifest against the message, returning one
// result per manifest in snapshot order. Strategies are tried in
// priority order per manifest and the first hit wins: an explicit name
// mention beats a keyword, a keyword beats a verb, a verb beats a
// pattern.
func (m *Matcher) Match(message string, manifests []*skills.SkillManifest) []MatchResult {
	results := make([]MatchResult, 0, len(manifests))
	for _, manifest := range manifests {
		results = append(results, matchOne(message, manifest))
	}
	return results
}

func matchOne(message string, manifest *skills.SkillManifest) MatchResult {
	result := MatchResult{SkillName: manifest.Name, Reason: ReasonNone}

	switch {
	case manifest.MatchName(message):
		result.Matched, result.Reason = true, ReasonName
	case manifest.MatchKeyword(message):
		result.Matched, result.Reason = true, ReasonKeyword
	case manifest.MatchVerb(message):
		result.Matched, result.Reason = true, ReasonVerb
	case manifest.MatchPattern(message):
		result.Matched, result.Reason = true, ReasonPattern
	}

	return result
}
