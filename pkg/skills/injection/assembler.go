package injection

import (
	"fmt"
	"strings"

	"github.com/ipdelete/agent-base/pkg/skills"
)

// InjectionResult is the rendered context for one message: the exact
// text to attach to the outbound request plus diagnostics.
type InjectionResult struct {
	Tier            Tier
	InjectedText    string
	SkillsIncluded  []string
	EstimatedTokens int
}

// Assembler renders an InjectionPlan into text. It is a pure function
// of its inputs: same plan and snapshot, same bytes.
type Assembler struct{}

// NewAssembler creates an Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble renders the plan against the enabled-manifest snapshot.
//
// Breadcrumb is the exact line "[N skills available]". Registry is an
// "## Available Skills" header with one "- **name**: summary" bullet
// per enabled skill, in snapshot order. Full docs joins the selected
// skills' documentation with blank lines and appends a residual count
// when matches were dropped by the cap.
func (a *Assembler) Assemble(plan InjectionPlan, manifests []*skills.SkillManifest) InjectionResult {
	result := InjectionResult{Tier: plan.Tier}

	switch plan.Tier {
	case TierBreadcrumb:
		result.InjectedText = fmt.Sprintf("[%d skills available]", plan.TotalEnabled)

	case TierRegistry:
		var sb strings.Builder
		sb.WriteString("## Available Skills")
		for _, manifest := range manifests {
			sb.WriteString(fmt.Sprintf("\n- **%s**: %s", manifest.Name, manifest.Summary))
			result.SkillsIncluded = append(result.SkillsIncluded, manifest.Name)
		}
		result.InjectedText = sb.String()

	case TierFullDocs:
		byName := make(map[string]*skills.SkillManifest, len(manifests))
		for _, manifest := range manifests {
			byName[manifest.Name] = manifest
		}

		parts := make([]string, 0, len(plan.SkillsForFullDocs)+1)
		for _, name := range plan.SkillsForFullDocs {
			manifest, ok := byName[name]
			if !ok {
				continue
			}
			parts = append(parts, manifest.Instructions)
			result.SkillsIncluded = append(result.SkillsIncluded, name)
		}

		if residual := plan.TotalEnabled - len(result.SkillsIncluded); residual > 0 {
			parts = append(parts, fmt.Sprintf("[%d more skills available]", residual))
		}
		result.InjectedText = strings.Join(parts, "\n\n")
	}

	result.EstimatedTokens = EstimateTokens(result.InjectedText)
	return result
}

// EstimateTokens approximates token cost as ceil(len/4), the rough
// four-characters-per-token heuristic. Diagnostic only; nothing
// enforces a budget with it.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
