package llm

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

// GetConfigFromViper builds the LLM configuration from viper state.
func GetConfigFromViper() (llmtypes.Config, error) {
	var config llmtypes.Config

	if err := viper.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "failed to unmarshal configuration")
	}

	// Apply retry defaults if not set
	if config.Retry.Attempts == 0 {
		config.Retry = llmtypes.DefaultRetryConfig
	}

	return config, nil
}
