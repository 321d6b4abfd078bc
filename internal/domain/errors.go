package domain

import "fmt"

// ExtractionError reports a failure to obtain text for a document at the
// ingestion boundary. Ingestion of that document is aborted; no partial
// state is committed.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError reports a transport or model failure while vectorizing
// text. Input identifies the offending text, truncated for readability.
type EmbeddingError struct {
	Input string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embed %q: %v", truncate(e.Input, 80), e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexWriteError reports a failed index write. The whole batch is
// rejected; nothing was committed.
type IndexWriteError struct {
	Err error
}

func (e *IndexWriteError) Error() string { return fmt.Sprintf("index write: %v", e.Err) }

func (e *IndexWriteError) Unwrap() error { return e.Err }

// IndexReadError reports a backing-store failure during search.
type IndexReadError struct {
	Err error
}

func (e *IndexReadError) Error() string { return fmt.Sprintf("index read: %v", e.Err) }

func (e *IndexReadError) Unwrap() error { return e.Err }

// GenerationError reports a network or format failure from the
// text-generation capability. Status is the HTTP status code when one
// was received, zero otherwise.
type GenerationError struct {
	Status int
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
