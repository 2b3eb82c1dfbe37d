package match

import (
	"regexp"
	"strconv"

	"golang.org/x/text/language"

	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
	"github.com/7i6ht/math2visual-sub000/pkg/numword"
)

// FindName returns every non-overlapping occurrence of name (singular or
// plural, word-boundary delimited) in text. Empty names and absent names
// both yield an empty result.
func FindName(text, name string) []mapping.Range {
	pattern := BuildNamePattern(name)
	if pattern == nil {
		return nil
	}

	return findAll(pattern, text)
}

// FindQuantity returns every non-overlapping occurrence of a quantity in
// text, trying the numeral form first and falling back to the spelled-out
// form only when no numeral occurrence exists. The quantity arrives as the
// mapping's property-value string (for example "5").
func FindQuantity(text, quantity string, tag language.Tag) []mapping.Range {
	digits := normalizeQuantity(quantity)
	if digits == "" {
		return nil
	}

	if ranges := findAll(buildDigitPattern(digits), text); len(ranges) > 0 {
		return ranges
	}

	return findSpelled(text, digits, tag)
}

func findSpelled(text, digits string, tag language.Tag) []mapping.Range {
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		// Non-integral quantities have no spelled-out form to fall back to.
		return nil
	}

	spelled, err := numword.ToWords(value, tag)
	if err != nil {
		return nil
	}

	pattern := buildWordsPattern(spelled)
	if pattern == nil {
		return nil
	}

	return findAll(pattern, text)
}

// normalizeQuantity trims a numeric property value to its canonical digit
// form: "5.0" becomes "5", "2.5" stays "2.5". Non-numeric input yields "".
func normalizeQuantity(quantity string) string {
	value, err := strconv.ParseFloat(quantity, 64)
	if err != nil {
		return ""
	}

	return strconv.FormatFloat(value, 'f', -1, 64)
}

func findAll(pattern *regexp.Regexp, text string) []mapping.Range {
	if pattern == nil {
		return nil
	}

	locations := pattern.FindAllStringIndex(text, -1)
	if len(locations) == 0 {
		return nil
	}

	ranges := make([]mapping.Range, 0, len(locations))
	for _, loc := range locations {
		ranges = append(ranges, mapping.Range{Start: loc[0], End: loc[1]})
	}

	return ranges
}
