package sysprompt

import "embed"

//go:embed templates/*
var TemplateFS embed.FS

const (
	ProductName = "agentbase"

	// SystemTemplate is the template path for the system prompt
	SystemTemplate = "templates/system.tmpl"
)
