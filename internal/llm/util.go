package llm

import "strings"

// CleanFencedBlock removes a markdown code fence wrapping model output.
// Models frequently return ```json ... ``` or ```python ... ``` even when
// asked for bare content.
func CleanFencedBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// Drop the opening fence with its optional language tag.
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
