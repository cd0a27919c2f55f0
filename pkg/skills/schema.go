package skills

import (
	"github.com/invopop/jsonschema"
)

// FrontmatterSchema returns the JSON schema of SKILL.md frontmatter,
// used by the skill schema command so authors can validate their files.
func FrontmatterSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(Metadata{})
}
