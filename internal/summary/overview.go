package summary

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"taxrag/internal/domain"
)

// readingWordsPerMinute is the rate used for the reading-time estimate.
const readingWordsPerMinute = 200

var (
	tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe   = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// Describe computes display statistics for a document plus a short
// extractive summary of at most maxSentences sentences, ranked by word
// frequency with stopwords filtered.
func Describe(text string, maxSentences int) domain.Overview {
	words := strings.Fields(text)
	return domain.Overview{
		Characters:     len(text),
		Words:          len(words),
		ReadingMinutes: math.Round(float64(len(words))/readingWordsPerMinute*10) / 10,
		Summary:        summarize(text, maxSentences),
	}
}

func summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text)
	}
	stop := stopwords()

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range tokens(sent) {
			if _, ok := stop[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := tokens(sent)
		s := 0.0
		for _, tok := range toks {
			if v, ok := freq[tok]; ok {
				s += v
			}
		}
		// Length normalization so long sentences do not dominate.
		if l := float64(len(toks)); l > 0 {
			s /= math.Sqrt(l)
		}
		scores[i] = scored{i, s}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}

	// Selected sentences keep their document order.
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	parts := make([]string, 0, len(selected))
	for _, idx := range selected {
		parts = append(parts, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(parts, " ")
}

func tokens(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func stopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
