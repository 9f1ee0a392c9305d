package utils

// Token estimates for sizing reports and summaries before they are pasted elsewhere.

// CountTokens estimates the number of tokens in the given text at roughly 4 characters per token.
func CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len([]rune(text)) / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}

// TruncateToTokenLimit cuts text to roughly fit within a token limit, preferring a line boundary.
func TruncateToTokenLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	charLimit := limit * 4
	if charLimit >= len(runes) {
		return text
	}
	cut := runes[:charLimit]
	for i := len(cut) - 1; i > charLimit/2; i-- {
		if cut[i] == '\n' {
			return string(cut[:i+1])
		}
	}
	return string(cut)
}
