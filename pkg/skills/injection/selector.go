package injection

import (
	"strings"
)

// Tier is how much skill documentation gets injected for a message.
type Tier string

const (
	// TierNone injects nothing; there are no enabled skills.
	TierNone Tier = "none"
	// TierBreadcrumb injects a one-line count so the model knows
	// skills exist without paying for their documentation.
	TierBreadcrumb Tier = "breadcrumb"
	// TierRegistry injects the name-and-summary listing of every
	// enabled skill.
	TierRegistry Tier = "registry"
	// TierFullDocs injects the complete documentation of the matched
	// skills, up to the configured cap.
	TierFullDocs Tier = "full_docs"
)

// InjectionPlan is the selector's decision: which tier to render and,
// for full docs, which skills to include.
type InjectionPlan struct {
	Tier              Tier
	SkillsForFullDocs []string
	TotalEnabled      int
}

// DefaultMaxSkills caps full-documentation injection when the caller
// does not configure one.
const DefaultMaxSkills = 3

// DefaultOverviewPhrases detect capability questions that should get
// the registry listing rather than per-skill documentation.
var DefaultOverviewPhrases = []string{
	"what can you do",
	"what skills",
	"list skills",
	"list your skills",
	"show capabilities",
	"what are you capable of",
}

// Selector decides the disclosure tier for a message. Overview intent
// is checked before trigger matches so capability questions always get
// the full listing.
type Selector struct {
	maxSkills       int
	overviewPhrases []string
}

// NewSelector creates a Selector with the given full-docs cap and
// overview phrases. A non-positive cap falls back to DefaultMaxSkills;
// an empty phrase list disables the overview check entirely.
func NewSelector(maxSkills int, overviewPhrases []string) *Selector {
	if maxSkills <= 0 {
		maxSkills = DefaultMaxSkills
	}
	return &Selector{
		maxSkills:       maxSkills,
		overviewPhrases: overviewPhrases,
	}
}

// Select maps (message, match results, enabled count) to a plan:
//
//   - no enabled skills: nothing to disclose
//   - overview intent: registry listing, regardless of matches
//   - no matches: breadcrumb
//   - matches: full docs for the first maxSkills matches in snapshot
//     order; the rest are dropped and only surface in the residual count
func (s *Selector) Select(message string, matches []MatchResult, totalEnabled int) InjectionPlan {
	plan := InjectionPlan{Tier: TierNone, TotalEnabled: totalEnabled}

	if totalEnabled == 0 {
		return plan
	}

	if s.isOverviewRequest(message) {
		plan.Tier = TierRegistry
		return plan
	}

	var selected []string
	for _, match := range matches {
		if !match.Matched {
			continue
		}
		if len(selected) < s.maxSkills {
			selected = append(selected, match.SkillName)
		}
	}

	if len(selected) == 0 {
		plan.Tier = TierBreadcrumb
		return plan
	}

	plan.Tier = TierFullDocs
	plan.SkillsForFullDocs = selected
	return plan
}

func (s *Selector) isOverviewRequest(message string) bool {
	if len(s.overviewPhrases) == 0 {
		return false
	}

	lowered := strings.ToLower(message)
	for _, phrase := range s.overviewPhrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase != "" && strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
