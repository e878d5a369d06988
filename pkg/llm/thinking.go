package llm

import "regexp"

// leadingThink matches a <think>...</think> block at the start of a response.
var leadingThink = regexp.MustCompile(`(?s)^\s*<think>.*?</think>\s*`)

// StripThinking removes a leading reasoning block emitted by some
// OpenAI-compatible local models, leaving only the answer.
func StripThinking(response string) string {
	return leadingThink.ReplaceAllString(response, "")
}
