package extraction

import (
	"strings"
	"unicode/utf8"
)

// SystemInstruction is sent as the system message of every completion.
const SystemInstruction = "You are a content extraction specialist. " +
	"Extract structured information from articles and return only valid JSON."

const promptTemplate = `Extract the following information from this article content and return it as a JSON object:

1. title: The main title/headline
2. summary: A concise 2-3 sentence summary
3. key_points: Array of 3-5 main points or takeaways
4. entities: Array of important people, places, organizations mentioned
5. sentiment: Overall sentiment (positive, negative, neutral)
6. category: Suggested category/topic for the article
7. tags: Array of relevant tags/keywords

Article content:
%CONTENT%

Return only valid JSON without any additional text or formatting.`

const ellipsis = "..."

// BuildPrompt renders the user prompt for content, cut to maxChars runes.
func BuildPrompt(content string, maxChars int) string {
	return strings.Replace(promptTemplate, "%CONTENT%", Truncate(content, maxChars), 1)
}

// Truncate returns the first n runes of s, followed by "..." when anything
// was cut. A non-positive n leaves s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + ellipsis
}
