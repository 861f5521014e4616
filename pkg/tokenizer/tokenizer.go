package tokenizer

import (
	"strings"
)

// CountTokens provides a rough token count estimate for English text.
func CountTokens(text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	return max(len(words)*4/3, 1)
}

// EstimateUsage estimates prompt and completion tokens for a provider that
// reported no usage.
func EstimateUsage(prompt, completion string) (input, output int) {
	return CountTokens(prompt), CountTokens(completion)
}
