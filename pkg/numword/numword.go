// Package numword converts between numbers and their natural-language
// spelling. The matcher uses it to recognize quantities in prose regardless
// of whether they appear as digits or words.
package numword

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
)

// Sentinel errors for conversion.
var (
	// ErrOutOfRange indicates a number outside the supported spelling range.
	ErrOutOfRange = errors.New("numword: number out of range")
	// ErrNotANumber indicates a phrase that does not spell a number.
	ErrNotANumber = errors.New("numword: phrase is not a number word")
)

// MaxSpelled is the largest absolute value ToWords spells out. Math word
// problems stay far below it.
const MaxSpelled = 999_999_999

// supported lists locales with a spelling table. English is the fallback for
// every other tag.
//
//nolint:gochecknoglobals // Package-level locale matcher tables.
var supported = []language.Tag{language.English}

//nolint:gochecknoglobals // Package-level locale matcher tables.
var localeMatcher = language.NewMatcher(supported)

//nolint:gochecknoglobals // Spelling tables for the English converter.
var (
	englishOnes = []string{
		"zero", "one", "two", "three", "four", "five", "six", "seven",
		"eight", "nine", "ten", "eleven", "twelve", "thirteen", "fourteen",
		"fifteen", "sixteen", "seventeen", "eighteen", "nineteen",
	}

	englishTens = []string{
		"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy",
		"eighty", "ninety",
	}
)

const (
	tenBase      = 10
	twentyBase   = 20
	hundredBase  = 100
	thousandBase = 1_000
	millionBase  = 1_000_000
)

// ToWords spells n in the locale resolved from tag. Unsupported locales fall
// back to English. Numbers beyond MaxSpelled return an error; callers then
// match the digit form only.
func ToWords(n int64, tag language.Tag) (string, error) {
	if n < -MaxSpelled || n > MaxSpelled {
		return "", ErrOutOfRange
	}

	_, index, _ := localeMatcher.Match(tag)

	// English is currently the only table; the matcher pins every tag to it.
	_ = supported[index]

	return englishWords(n), nil
}

func englishWords(n int64) string {
	if n < 0 {
		return "minus " + englishWords(-n)
	}

	if n < twentyBase {
		return englishOnes[n]
	}

	if n < hundredBase {
		return englishTensWords(n)
	}

	if n < thousandBase {
		return englishGroupWords(n, hundredBase, "hundred")
	}

	if n < millionBase {
		return englishGroupWords(n, thousandBase, "thousand")
	}

	return englishGroupWords(n, millionBase, "million")
}

func englishTensWords(n int64) string {
	word := englishTens[n/tenBase]
	if n%tenBase == 0 {
		return word
	}

	return word + "-" + englishOnes[n%tenBase]
}

func englishGroupWords(n, base int64, unit string) string {
	word := englishWords(n/base) + " " + unit
	if n%base == 0 {
		return word
	}

	return word + " " + englishWords(n%base)
}

// Parse converts a spelled-out number phrase back to its value. It accepts
// the forms ToWords produces, with spaces or hyphens between words, in any
// letter case.
func Parse(phrase string, tag language.Tag) (int64, error) {
	_, index, _ := localeMatcher.Match(tag)
	_ = supported[index]

	words := splitNumberWords(phrase)
	if len(words) == 0 {
		return 0, ErrNotANumber
	}

	negative := false
	if words[0] == "minus" {
		negative = true
		words = words[1:]
	}

	value, err := parseEnglishWords(words)
	if err != nil {
		return 0, err
	}

	if negative {
		value = -value
	}

	return value, nil
}

func splitNumberWords(phrase string) []string {
	lowered := strings.ToLower(strings.TrimSpace(phrase))

	return strings.FieldsFunc(lowered, func(r rune) bool {
		return r == ' ' || r == '-'
	})
}

//nolint:cyclop // Accumulator walk over the small word grammar.
func parseEnglishWords(words []string) (int64, error) {
	var total, group int64

	matched := false

	for _, word := range words {
		switch {
		case smallWordValue(word) >= 0:
			group += smallWordValue(word)
			matched = true
		case word == "hundred" && matched:
			group *= hundredBase
		case word == "thousand" && matched:
			total += group * thousandBase
			group = 0
		case word == "million" && matched:
			total += group * millionBase
			group = 0
		default:
			return 0, ErrNotANumber
		}
	}

	if !matched {
		return 0, ErrNotANumber
	}

	return total + group, nil
}

// smallWordValue returns the value of a ones/teens/tens word, or -1.
func smallWordValue(word string) int64 {
	for i, ones := range englishOnes {
		if word == ones {
			return int64(i)
		}
	}

	for i, tens := range englishTens {
		if tens != "" && word == tens {
			return int64(i) * tenBase
		}
	}

	return -1
}
