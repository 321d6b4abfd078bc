package summary

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe_Stats(t *testing.T) {
	text := "One two three four. Five six seven eight."
	ov := Describe(text, 5)

	assert.Equal(t, len(text), ov.Characters)
	assert.Equal(t, 8, ov.Words)
	assert.InDelta(t, 0.0, ov.ReadingMinutes, 1e-9)
}

func TestDescribe_ReadingTimeRounded(t *testing.T) {
	// 500 words at 200 wpm is 2.5 minutes.
	text := strings.TrimSpace(strings.Repeat("word ", 500))
	ov := Describe(text, 1)
	assert.InDelta(t, 2.5, ov.ReadingMinutes, 1e-9)
}

func TestSummarize_BoundsSentenceCount(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "Sentence number %d talks about audit findings. ", i)
	}
	summary := summarize(b.String(), 3)
	assert.Equal(t, 3, strings.Count(summary, "."))
}

func TestSummarize_PrefersFrequentTopics(t *testing.T) {
	text := "The merger closed in March. " +
		"Tax liability from the merger audit remains disputed. " +
		"Tax counsel reviewed the merger liability reserve. " +
		"The office cafeteria reopened on Friday."
	summary := summarize(text, 2)

	assert.Contains(t, summary, "merger")
	assert.NotContains(t, summary, "cafeteria")
}

func TestSummarize_KeepsDocumentOrder(t *testing.T) {
	text := "Alpha audit liability reserve disputed. " +
		"Beta audit liability reserve disputed. " +
		"Nothing here. " +
		"Gamma audit liability reserve disputed."
	summary := summarize(text, 3)

	ai := strings.Index(summary, "Alpha")
	bi := strings.Index(summary, "Beta")
	gi := strings.Index(summary, "Gamma")
	assert.GreaterOrEqual(t, ai, 0)
	assert.Less(t, ai, bi)
	assert.Less(t, bi, gi)
}

func TestSummarize_NoSentencePunctuation(t *testing.T) {
	assert.Equal(t, "fragment without punctuation", summarize("  fragment without punctuation  ", 3))
}
