package llm

// Config is the resolved LLM configuration assembled from viper.
type Config struct {
	Provider  string       `mapstructure:"provider"`
	Model     string       `mapstructure:"model"`
	MaxTokens int          `mapstructure:"max_tokens"`
	Retry     RetryConfig  `mapstructure:"retry"`
	Skills    SkillsConfig `mapstructure:"skills"`
}

// RetryConfig controls retry behavior for provider API calls.
// Delays are in milliseconds.
type RetryConfig struct {
	Attempts     int    `mapstructure:"attempts"`
	InitialDelay int    `mapstructure:"initial_delay"`
	MaxDelay     int    `mapstructure:"max_delay"`
	BackoffType  string `mapstructure:"backoff_type"`
}

// DefaultRetryConfig is applied when no retry settings are configured.
var DefaultRetryConfig = RetryConfig{
	Attempts:     3,
	InitialDelay: 1000,
	MaxDelay:     10000,
	BackoffType:  "exponential",
}

// SkillsConfig controls skill discovery and context injection.
type SkillsConfig struct {
	// Dirs are extra skill directories searched before the defaults.
	Dirs []string `mapstructure:"dirs"`
	// Allowed is a glob allowlist of skill names; empty allows all.
	Allowed []string `mapstructure:"allowed"`
	// MaxSkills caps how many skills are injected at full documentation
	// depth for a single message.
	MaxSkills int `mapstructure:"max_skills"`
	// OverviewPhrases are capability-question phrases that force the
	// registry listing. May be emptied to disable the check.
	OverviewPhrases []string `mapstructure:"overview_phrases"`
	// NoInjection disables context injection entirely.
	NoInjection bool `mapstructure:"no_injection"`
}

