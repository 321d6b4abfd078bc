package service

import (
	"context"
	"os"
	"path/filepath"

	"github.com/phuslu/log"

	"taxrag/internal/analyzer"
	"taxrag/internal/domain"
	"taxrag/internal/generator"
	"taxrag/internal/retriever"
	"taxrag/internal/summary"
	"taxrag/internal/vectorstore"
)

// summarySentences bounds the extractive summary in ingest results.
const summarySentences = 5

// Service wires the chunker, vector index, retriever and generator into
// the ingestion and query pipelines. It is constructed once per process
// and passed explicitly to whatever orchestrates ingestion and querying.
type Service struct {
	chunker   domain.Chunker
	index     vectorstore.Index
	retriever *retriever.Retriever
	generator *generator.Generator
	logger    *log.Logger
}

// IngestResult describes one successfully ingested document.
type IngestResult struct {
	Name     string
	Chunks   int
	IDs      []string
	Overview domain.Overview
}

// New assembles the service from its components.
func New(chunker domain.Chunker, index vectorstore.Index, ret *retriever.Retriever, gen *generator.Generator, logger *log.Logger) *Service {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Service{chunker: chunker, index: index, retriever: ret, generator: gen, logger: logger}
}

// IngestFile reads a plain extracted-text file and indexes it. Read
// failures surface as an ExtractionError; nothing from the document is
// committed. Re-ingesting the same file adds its chunks alongside the
// prior ones: there is no deduplication or versioning.
func (s *Service) IngestFile(ctx context.Context, path string) (IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IngestResult{}, &domain.ExtractionError{Source: path, Err: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		return IngestResult{}, &domain.ExtractionError{Source: path, Err: err}
	}
	doc := domain.Document{
		Name: filepath.Base(path),
		Text: string(data),
		Metadata: map[string]any{
			"filename":   filepath.Base(path),
			"file_size":  info.Size(),
			"characters": len(data),
		},
	}
	return s.IngestDocument(ctx, doc)
}

// IngestDocument chunks and indexes an already-extracted document.
func (s *Service) IngestDocument(ctx context.Context, doc domain.Document) (IngestResult, error) {
	metadata := doc.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, ok := metadata["filename"]; !ok && doc.Name != "" {
		metadata["filename"] = doc.Name
	}

	chunks, err := s.chunker.Split(doc.Text, metadata)
	if err != nil {
		return IngestResult{}, err
	}
	ids, err := s.index.Add(ctx, chunks)
	if err != nil {
		return IngestResult{}, err
	}
	s.logger.Info().Str("document", doc.Name).Int("chunks", len(chunks)).Msg("document ingested")
	return IngestResult{
		Name:     doc.Name,
		Chunks:   len(chunks),
		IDs:      ids,
		Overview: summary.Describe(doc.Text, summarySentences),
	}, nil
}

// Ask retrieves context for the question and generates a grounded
// answer. Retrieval failures are folded into the returned Answer, so the
// caller can render any result without its own failure handling.
func (s *Service) Ask(ctx context.Context, question string) domain.Answer {
	results, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		s.logger.Error().Err(err).Str("question", question).Msg("retrieval failed")
		return domain.Answer{
			Text: generator.ErrorPrefix + err.Error(),
			Err:  err.Error(),
		}
	}
	return s.generator.Answer(ctx, question, results)
}

// Analyze runs the given analysis battery over the indexed document.
// Nil sections use the default battery.
func (s *Service) Analyze(ctx context.Context, sections []analyzer.Section) domain.AnalysisReport {
	return analyzer.New(s, sections, s.logger).Run(ctx)
}

// ReportMarkdown runs the analysis and renders it as a flat markdown
// report suitable for export.
func (s *Service) ReportMarkdown(ctx context.Context, sections []analyzer.Section) string {
	return analyzer.Render(s.Analyze(ctx, sections))
}

// Count returns the number of indexed vectors, 0 when the store is
// unreachable.
func (s *Service) Count(ctx context.Context) int {
	return s.index.Count(ctx)
}

// ClearAll removes every indexed chunk.
func (s *Service) ClearAll(ctx context.Context) error {
	return s.index.Clear(ctx)
}
