package match

import (
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
)

// sentenceTerminators end a sentence; runs collapse into one split point.
const sentenceTerminators = ".!?"

// SplitSentences splits text on runs of sentence terminators, trims
// whitespace, and discards empty fragments.
func SplitSentences(text string) []string {
	fragments := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(sentenceTerminators, r)
	})

	sentences := make([]string, 0, len(fragments))

	for _, fragment := range fragments {
		trimmed := strings.TrimSpace(fragment)
		if trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}

	return sentences
}

// SentencePosition recovers the absolute range of sentences[index] inside the
// original text. Splitting is lossy about separators and whitespace, so the
// offset is re-searched rather than derived from concatenated lengths; when
// the same sentence text occurs more than once, occurrences before index are
// skipped so each fragment maps to its own position.
func SentencePosition(original string, sentences []string, index int, sentence string) (mapping.Range, bool) {
	if index < 0 || index >= len(sentences) || sentence == "" {
		return mapping.Range{}, false
	}

	occurrence := 0

	for _, earlier := range sentences[:index] {
		if earlier == sentence {
			occurrence++
		}
	}

	offset := 0

	for {
		position := strings.Index(original[offset:], sentence)
		if position < 0 {
			return mapping.Range{}, false
		}

		start := offset + position
		if occurrence == 0 {
			return mapping.Range{Start: start, End: start + len(sentence)}, true
		}

		occurrence--
		offset = start + len(sentence)
	}
}

// SentenceScore is one scored sentence: how many of {name, quantity} appear
// in it.
type SentenceScore struct {
	Index    int
	Score    int
	Sentence string
}

// ScoreSentences scores each sentence by the presence of the container name
// and the quantity (one point each), sorted by descending score with ties
// broken by ascending index, so the earliest of equally good sentences wins.
func ScoreSentences(sentences []string, containerName, quantity string, tag language.Tag) []SentenceScore {
	scores := make([]SentenceScore, 0, len(sentences))

	for i, sentence := range sentences {
		score := 0

		if len(FindName(sentence, containerName)) > 0 {
			score++
		}

		if len(FindQuantity(sentence, quantity, tag)) > 0 {
			score++
		}

		scores = append(scores, SentenceScore{Index: i, Score: score, Sentence: sentence})
	}

	sort.SliceStable(scores, func(a, b int) bool {
		if scores[a].Score != scores[b].Score {
			return scores[a].Score > scores[b].Score
		}

		return scores[a].Index < scores[b].Index
	})

	return scores
}

// BestSentence returns the range of the highest-scoring sentence in the
// original text, provided it scored at all. Used to pin an ambiguous value
// to the sentence most likely describing it.
func BestSentence(original string, containerName, quantity string, tag language.Tag) (mapping.Range, bool) {
	sentences := SplitSentences(original)
	if len(sentences) == 0 {
		return mapping.Range{}, false
	}

	scores := ScoreSentences(sentences, containerName, quantity, tag)

	best := scores[0]
	if best.Score == 0 {
		return mapping.Range{}, false
	}

	return SentencePosition(original, sentences, best.Index, best.Sentence)
}
