package prompt

import (
	"strings"
	"unicode/utf8"
)

// maxThemeLength bounds the sanitized theme so a long user input cannot
// dominate the prompt.
const maxThemeLength = 100

// injectionPhrases are removed from themes case-insensitively before the
// theme is substituted into a template.
var injectionPhrases = []string{
	"ignore previous instructions",
	"ignore all previous instructions",
	"ignore the above",
	"disregard previous instructions",
	"disregard the above",
	"system prompt",
	"you are now",
	"act as",
	"new instructions",
	"forget everything",
}

// SanitizeTheme prepares a user-supplied theme for template substitution.
// It strips the characters that would break placeholder substitution,
// removes known prompt-injection phrases, collapses whitespace, and
// truncates to maxThemeLength.
func SanitizeTheme(theme string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', '`':
			return -1
		}
		return r
	}, theme)

	for _, phrase := range injectionPhrases {
		cleaned = removeCaseInsensitive(cleaned, phrase)
	}

	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if utf8.RuneCountInString(cleaned) > maxThemeLength {
		runes := []rune(cleaned)
		cleaned = string(runes[:maxThemeLength])
	}

	return cleaned
}

// removeCaseInsensitive deletes every occurrence of phrase from s,
// matching case-insensitively.
func removeCaseInsensitive(s, phrase string) string {
	lowerPhrase := strings.ToLower(phrase)
	for {
		idx := strings.Index(strings.ToLower(s), lowerPhrase)
		if idx < 0 {
			return s
		}
		s = s[:idx] + s[idx+len(phrase):]
	}
}
