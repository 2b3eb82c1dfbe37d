// Package match finds the textual echoes of DSL values inside the math word
// problem and formula text: pluralization-aware name patterns, quantity
// occurrences in digit or spelled-out form, and sentence scoring for
// disambiguation. Absence of a match is a normal state, never an error.
package match

import (
	"regexp"
	"strings"
)

// pluralEndings trigger the +es rule.
//
//nolint:gochecknoglobals // Package-level pluralization table.
var pluralEndings = []string{"s", "x", "z", "ch", "sh"}

// vowels for the consonant+y pluralization rule.
const vowels = "aeiou"

// Pluralize returns the regular English plural of a single word. Only the
// final word of a multi-word name is pluralized by BuildNamePattern, since
// that word is the noun.
func Pluralize(word string) string {
	if word == "" {
		return word
	}

	lowered := strings.ToLower(word)

	for _, ending := range pluralEndings {
		if strings.HasSuffix(lowered, ending) {
			return word + "es"
		}
	}

	if isConsonantY(lowered) {
		return word[:len(word)-1] + "ies"
	}

	return word + "s"
}

func isConsonantY(lowered string) bool {
	if !strings.HasSuffix(lowered, "y") || len(lowered) < 2 {
		return false
	}

	return !strings.ContainsRune(vowels, rune(lowered[len(lowered)-2]))
}

// BuildNamePattern compiles a word-boundary pattern matching a name in
// singular or plural form. Regex metacharacters in the name are escaped;
// only the final word gains a plural alternative, so "colorful flower"
// matches "colorful flowers" but never "colorful flowery". Returns nil for
// a blank name.
func BuildNamePattern(name string) *regexp.Regexp {
	words := strings.Fields(name)
	if len(words) == 0 {
		return nil
	}

	last := words[len(words)-1]
	alternation := "(?:" + regexp.QuoteMeta(Pluralize(last)) + "|" + regexp.QuoteMeta(last) + ")"

	parts := make([]string, 0, len(words))
	for _, word := range words[:len(words)-1] {
		parts = append(parts, regexp.QuoteMeta(word))
	}

	parts = append(parts, alternation)

	return compileCached(`(?i)\b` + strings.Join(parts, `\s+`) + `\b`)
}

// buildWordsPattern compiles a word-boundary pattern for a spelled-out
// number, tolerating spaces or hyphens between its words.
func buildWordsPattern(spelled string) *regexp.Regexp {
	words := strings.FieldsFunc(spelled, func(r rune) bool {
		return r == ' ' || r == '-'
	})
	if len(words) == 0 {
		return nil
	}

	parts := make([]string, 0, len(words))
	for _, word := range words {
		parts = append(parts, regexp.QuoteMeta(word))
	}

	return compileCached(`(?i)\b` + strings.Join(parts, `[\s-]+`) + `\b`)
}

// buildDigitPattern compiles a word-boundary pattern for a numeral literal.
func buildDigitPattern(digits string) *regexp.Regexp {
	if digits == "" {
		return nil
	}

	return compileCached(`\b` + regexp.QuoteMeta(digits) + `\b`)
}
