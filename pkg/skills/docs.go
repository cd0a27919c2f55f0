package skills

import (
	"fmt"
	"strings"
)

// RenderDocs renders a Markdown reference of the given manifests, in
// slice order: identity, trigger metadata, then the full documentation
// body. Used by the skill docs command.
func RenderDocs(manifests []*SkillManifest) string {
	var sb strings.Builder

	sb.WriteString("# Skill Reference\n\n")
	if len(manifests) == 0 {
		sb.WriteString("No skills installed.\n")
		return sb.String()
	}

	for i, manifest := range manifests {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", manifest.Name))
		sb.WriteString(manifest.Summary)
		sb.WriteString("\n\n")

		if !manifest.Enabled {
			sb.WriteString("**Status**: disabled\n\n")
		}
		if len(manifest.Aliases) > 0 {
			sb.WriteString(fmt.Sprintf("- **Aliases**: %s\n", strings.Join(manifest.Aliases, ", ")))
		}
		if len(manifest.Triggers.Keywords) > 0 {
			sb.WriteString(fmt.Sprintf("- **Keywords**: %s\n", strings.Join(manifest.Triggers.Keywords, ", ")))
		}
		if len(manifest.Triggers.Verbs) > 0 {
			sb.WriteString(fmt.Sprintf("- **Verbs**: %s\n", strings.Join(manifest.Triggers.Verbs, ", ")))
		}
		if len(manifest.Triggers.Patterns) > 0 {
			sb.WriteString(fmt.Sprintf("- **Patterns**: `%s`\n", strings.Join(manifest.Triggers.Patterns, "`, `")))
		}
		if manifest.Directory != "" {
			sb.WriteString(fmt.Sprintf("- **Directory**: `%s`\n", manifest.Directory))
		}

		if body := strings.TrimSpace(manifest.Instructions); body != "" {
			sb.WriteString("\n### Documentation\n\n")
			sb.WriteString(body)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
