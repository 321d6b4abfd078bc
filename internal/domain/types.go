package domain

// Document is a single extracted-text document handed to the ingestion
// pipeline. The core never sees binary formats; text extraction happens
// upstream.
type Document struct {
	Name     string
	Text     string
	Metadata map[string]any
}

// Chunk is a bounded span of document text with overlap, the unit of
// retrieval. Metadata carries a sanitized primitive-only copy of the
// document metadata plus nothing else; Index is the zero-based position
// of the chunk within its document.
type Chunk struct {
	Text     string
	Index    int
	Metadata map[string]any
}

// ScoredChunk pairs a retrieved chunk with its relevance score.
// Higher score means more similar.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}

// Source is a display-oriented preview of a chunk that backed an answer.
// Content is truncated; generation always uses the full chunk text.
type Source struct {
	Content  string
	Metadata map[string]any
}

// Answer is the result of one grounded question. Err is non-empty exactly
// when Text carries the error prefix, so callers can render any Answer
// without a surrounding failure handler.
type Answer struct {
	Text    string
	Sources []Source
	Err     string
}

// Failed reports whether the answer carries an error instead of content.
func (a Answer) Failed() bool { return a.Err != "" }

// QA is a single question with the answer it produced.
type QA struct {
	Question string
	Answer   Answer
}

// SectionResult holds the answered questions of one analysis section,
// in the order they were asked.
type SectionResult struct {
	Key     string
	Title   string
	Results []QA
}

// AnalysisReport is the output of a full analysis run: sections in
// canonical order, each with its ordered question/answer pairs.
// Immutable once returned.
type AnalysisReport struct {
	Sections []SectionResult
}

// Overview describes an ingested document: simple text statistics plus a
// short extractive summary for display.
type Overview struct {
	Characters     int
	Words          int
	ReadingMinutes float64
	Summary        string
}

// Chunker splits raw text into chunks suitable for embedding and retrieval.
type Chunker interface {
	Split(text string, metadata map[string]any) ([]Chunk, error)
}

// SanitizeMetadata returns a copy of metadata restricted to primitive
// values. Anything else is dropped rather than serialized opaquely.
func SanitizeMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	clean := make(map[string]any, len(metadata))
	for k, v := range metadata {
		switch v.(type) {
		case string, bool,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			clean[k] = v
		}
	}
	return clean
}
