package llm

// Usage accumulates token counts reported by the provider across a
// thread's lifetime.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// TotalTokens returns input plus output tokens.
func (u *Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// Add merges another usage sample into this one.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}
