package conversations

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// GenerateID creates a unique identifier for a conversation
func GenerateID() string {
	return uuid.NewString()
}

// GetDefaultBasePath returns the default path for storing agentbase data
func GetDefaultBasePath() (string, error) {
	if basePath := os.Getenv("AGENTBASE_BASE_PATH"); basePath != "" {
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return "", err
		}
		return basePath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	basePath := filepath.Join(homeDir, ".agentbase")
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return "", err
	}

	return basePath, nil
}
