package chunker

import (
	"strings"

	"taxrag/internal/domain"
)

// Separator priority: paragraph breaks, line breaks, sentence ends,
// plain spaces, hard character cuts.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// RecursiveChunker splits text into overlapping character chunks using a
// layered separator strategy. A finer separator is used only when a
// segment still exceeds the target size.
type RecursiveChunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewRecursiveChunker creates a chunker with the given target size and
// overlap in characters. Non-positive values fall back to 1000/200.
func NewRecursiveChunker(chunkSize, overlap int) *RecursiveChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 200
		if overlap >= chunkSize {
			overlap = chunkSize / 5
		}
	}
	return &RecursiveChunker{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split divides text into chunks and tags each with a zero-based index
// and a sanitized primitive-only copy of metadata. Empty input yields an
// empty chunk sequence.
func (c *RecursiveChunker) Split(text string, metadata map[string]any) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	pieces := c.split(text, c.separators)
	clean := domain.SanitizeMetadata(metadata)
	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, p := range pieces {
		md := make(map[string]any, len(clean))
		for k, v := range clean {
			md[k] = v
		}
		chunks = append(chunks, domain.Chunk{Text: p, Index: i, Metadata: md})
	}
	return chunks, nil
}

func (c *RecursiveChunker) split(text string, separators []string) []string {
	sep, finer := pickSeparator(text, separators)
	if sep == "" {
		return c.hardCut(text)
	}
	parts := strings.Split(text, sep)
	var out []string
	var fitting []string
	for _, p := range parts {
		if len(p) < c.chunkSize {
			fitting = append(fitting, p)
			continue
		}
		// Oversized part: flush what fits, then recurse with finer separators.
		if len(fitting) > 0 {
			out = append(out, c.merge(fitting, sep)...)
			fitting = nil
		}
		out = append(out, c.split(p, finer)...)
	}
	if len(fitting) > 0 {
		out = append(out, c.merge(fitting, sep)...)
	}
	return out
}

// merge joins consecutive parts with sep into chunks of at most chunkSize
// characters, carrying a trailing span of at most overlap characters into
// the next chunk.
func (c *RecursiveChunker) merge(parts []string, sep string) []string {
	var out []string
	var window []string
	total := 0 // length of strings.Join(window, sep)
	for _, p := range parts {
		add := len(p)
		if len(window) > 0 {
			add += len(sep)
		}
		if total+add > c.chunkSize && len(window) > 0 {
			if joined := strings.Join(window, sep); strings.TrimSpace(joined) != "" {
				out = append(out, joined)
			}
			for len(window) > 0 && (total > c.overlap || total+add > c.chunkSize) {
				head := len(window[0])
				if len(window) > 1 {
					head += len(sep)
				}
				total -= head
				window = window[1:]
			}
		}
		if len(window) > 0 {
			total += len(sep)
		}
		window = append(window, p)
		total += len(p)
	}
	if joined := strings.Join(window, sep); strings.TrimSpace(joined) != "" {
		out = append(out, joined)
	}
	return out
}

// hardCut slices text into chunkSize rune windows advancing by
// chunkSize-overlap, for text with no usable separator.
func (c *RecursiveChunker) hardCut(text string) []string {
	runes := []rune(text)
	stride := c.chunkSize - c.overlap
	if stride <= 0 {
		stride = c.chunkSize
	}
	var out []string
	for start := 0; start < len(runes); start += stride {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// pickSeparator returns the coarsest separator present in text and the
// remaining finer ones. The empty separator always matches.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, s := range separators {
		if s == "" {
			return "", nil
		}
		if strings.Contains(text, s) {
			return s, separators[i+1:]
		}
	}
	return "", nil
}
