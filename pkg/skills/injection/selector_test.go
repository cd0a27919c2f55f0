package injection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matched(names ...string) []MatchResult {
	results := make([]MatchResult, 0, len(names))
	for _, name := range names {
		results = append(results, MatchResult{SkillName: name, Matched: true, Reason: ReasonKeyword})
	}
	return results
}

func TestSelectNoEnabledSkills(t *testing.T) {
	selector := NewSelector(3, DefaultOverviewPhrases)

	plan := selector.Select("what can you do", nil, 0)

	assert.Equal(t, TierNone, plan.Tier)
	assert.Empty(t, plan.SkillsForFullDocs)
	assert.Zero(t, plan.TotalEnabled)
}

func TestSelectNoMatchesIsBreadcrumb(t *testing.T) {
	selector := NewSelector(3, DefaultOverviewPhrases)

	results := []MatchResult{
		{SkillName: "hello-extended", Matched: false, Reason: ReasonNone},
		{SkillName: "web-access", Matched: false, Reason: ReasonNone},
	}
	plan := selector.Select("tell me a story", results, 2)

	assert.Equal(t, TierBreadcrumb, plan.Tier)
	assert.Empty(t, plan.SkillsForFullDocs)
	assert.Equal(t, 2, plan.TotalEnabled)
}

func TestSelectMatchesGetFullDocs(t *testing.T) {
	selector := NewSelector(3, DefaultOverviewPhrases)

	plan := selector.Select("greet my friend", matched("hello-extended"), 4)

	assert.Equal(t, TierFullDocs, plan.Tier)
	assert.Equal(t, []string{"hello-extended"}, plan.SkillsForFullDocs)
	assert.Equal(t, 4, plan.TotalEnabled)
}

func TestSelectOverviewBeatsMatches(t *testing.T) {
	selector := NewSelector(3, DefaultOverviewPhrases)

	// The message both matches a skill and asks for an overview; the
	// overview wins.
	plan := selector.Select("what can you do about greetings", matched("hello-extended"), 2)

	assert.Equal(t, TierRegistry, plan.Tier)
	assert.Empty(t, plan.SkillsForFullDocs)
}

func TestSelectOverviewCaseInsensitive(t *testing.T) {
	selector := NewSelector(3, DefaultOverviewPhrases)

	plan := selector.Select("What Can YOU Do?", nil, 3)

	assert.Equal(t, TierRegistry, plan.Tier)
}

func TestSelectCustomOverviewPhrases(t *testing.T) {
	selector := NewSelector(3, []string{"qué puedes hacer"})

	plan := selector.Select("hola, ¿qué puedes hacer?", nil, 1)
	assert.Equal(t, TierRegistry, plan.Tier)

	// The stock phrases are replaced, not appended.
	plan = selector.Select("what can you do", nil, 1)
	assert.Equal(t, TierBreadcrumb, plan.Tier)
}

func TestSelectEmptyPhrasesDisablesOverview(t *testing.T) {
	selector := NewSelector(3, nil)

	plan := selector.Select("what can you do", matched("hello-extended"), 2)

	assert.Equal(t, TierFullDocs, plan.Tier)
}

func TestSelectCapsFullDocs(t *testing.T) {
	selector := NewSelector(3, DefaultOverviewPhrases)

	results := matched("a", "b", "c", "d", "e")
	plan := selector.Select("match everything", results, 5)

	require.Equal(t, TierFullDocs, plan.Tier)
	assert.Equal(t, []string{"a", "b", "c"}, plan.SkillsForFullDocs,
		"first matches in snapshot order win; the rest are dropped silently")
	assert.Equal(t, 5, plan.TotalEnabled)
}

func TestSelectCapOfOne(t *testing.T) {
	selector := NewSelector(1, DefaultOverviewPhrases)

	plan := selector.Select("match everything", matched("a", "b"), 2)

	assert.Equal(t, []string{"a"}, plan.SkillsForFullDocs)
}

func TestSelectNonPositiveCapFallsBackToDefault(t *testing.T) {
	selector := NewSelector(0, nil)

	plan := selector.Select("x", matched("a", "b", "c", "d"), 4)

	assert.Len(t, plan.SkillsForFullDocs, DefaultMaxSkills)
}

func TestSelectSkipsUnmatchedBetweenMatches(t *testing.T) {
	selector := NewSelector(2, nil)

	results := []MatchResult{
		{SkillName: "a", Matched: true, Reason: ReasonName},
		{SkillName: "b", Matched: false, Reason: ReasonNone},
		{SkillName: "c", Matched: true, Reason: ReasonVerb},
		{SkillName: "d", Matched: true, Reason: ReasonPattern},
	}
	plan := selector.Select("x", results, 4)

	assert.Equal(t, []string{"a", "c"}, plan.SkillsForFullDocs)
}
