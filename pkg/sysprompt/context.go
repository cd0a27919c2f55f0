package sysprompt

import (
	"os"
	"runtime"
	"time"
)

// PromptContext holds all variables for template rendering
type PromptContext struct {
	ProductName      string
	Model            string
	WorkingDirectory string
	Platform         string
	Date             string
}

// NewPromptContext creates a new PromptContext with default values
func NewPromptContext(model string) *PromptContext {
	pwd, _ := os.Getwd()

	return &PromptContext{
		ProductName:      ProductName,
		Model:            model,
		WorkingDirectory: pwd,
		Platform:         runtime.GOOS,
		Date:             time.Now().Format("2006-01-02"),
	}
}
