package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxrag/internal/chunker"
	"taxrag/internal/domain"
	"taxrag/internal/embedding/hash"
	"taxrag/internal/generator"
	"taxrag/internal/retriever"
	"taxrag/internal/vectorstore/memory"
)

// echoCompleter is an offline stand-in for the LLM. It parses the
// grounded prompt, picks the context sentence sharing the most words
// with the question, and deflects when nothing overlaps enough.
type echoCompleter struct{}

var echoWordRe = regexp.MustCompile(`[\p{L}\p{N},$]+`)

func (echoCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ci := strings.Index(prompt, "Context:\n")
	qi := strings.Index(prompt, "\n\nQuestion: ")
	pi := strings.Index(prompt, "\n\nProvide")
	if ci < 0 || qi < 0 || pi < 0 {
		return "", errors.New("malformed prompt")
	}
	contextText := prompt[ci+len("Context:\n") : qi]
	question := prompt[qi+len("\n\nQuestion: ") : pi]

	qTokens := map[string]struct{}{}
	for _, tok := range echoWordRe.FindAllString(strings.ToLower(question), -1) {
		qTokens[tok] = struct{}{}
	}
	best, bestScore := "", 0
	for _, sent := range strings.Split(contextText, ".") {
		score := 0
		for _, tok := range echoWordRe.FindAllString(strings.ToLower(sent), -1) {
			if _, ok := qTokens[tok]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = strings.TrimSpace(sent), score
		}
	}
	if bestScore < 2 {
		return generator.Deflection, nil
	}
	return best + ".", nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	embedder := hash.NewEmbedder(0)
	index := memory.NewIndex(embedder)
	ret := retriever.New(index, 3)
	gen := generator.New(echoCompleter{}, nil)
	return New(chunker.NewRecursiveChunker(120, 20), index, ret, gen, nil)
}

func writeDoc(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

const filingText = "Company X reported a tax liability of $500,000 following an IRS audit. " +
	"The audit covered fiscal years 2019 through 2021. " +
	"Management recorded a reserve for the full disputed amount. " +
	"No penalties were assessed beyond statutory interest."

func TestIngestFileAndAsk(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.IngestFile(ctx, writeDoc(t, "filing.txt", filingText))
	require.NoError(t, err)
	assert.Equal(t, "filing.txt", res.Name)
	assert.Greater(t, res.Chunks, 0)
	assert.Len(t, res.IDs, res.Chunks)
	assert.Equal(t, len(filingText), res.Overview.Characters)
	assert.Equal(t, svc.Count(ctx), res.Chunks)

	answer := svc.Ask(ctx, "What tax liability was reported?")
	require.False(t, answer.Failed(), "answer: %s", answer.Text)
	assert.Contains(t, answer.Text, "500,000")
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "filing.txt", answer.Sources[0].Metadata["filename"])
}

func TestAsk_UnansweredQuestionDeflects(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.IngestFile(ctx, writeDoc(t, "filing.txt", filingText))
	require.NoError(t, err)

	answer := svc.Ask(ctx, "What is the capital of Mars?")
	require.False(t, answer.Failed())
	assert.Contains(t, answer.Text, generator.Deflection)
}

func TestIngestFile_MissingFile(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.IngestFile(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	var extractErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Contains(t, extractErr.Source, "absent.txt")
	assert.Equal(t, 0, svc.Count(context.Background()))
}

func TestIngestDocument_FilenameFromName(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.IngestDocument(context.Background(), domain.Document{
		Name: "memo.txt",
		Text: "A short tax memo about deferred assets.",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Chunks)

	answer := svc.Ask(context.Background(), "What does the tax memo discuss about deferred assets?")
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "memo.txt", answer.Sources[0].Metadata["filename"])
}

type failingIndex struct{}

func (failingIndex) Add(ctx context.Context, chunks []domain.Chunk) ([]string, error) {
	return nil, &domain.IndexWriteError{Err: errors.New("store down")}
}

func (failingIndex) Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	return nil, &domain.IndexReadError{Err: errors.New("store down")}
}

func (failingIndex) Clear(ctx context.Context) error { return errors.New("store down") }
func (failingIndex) Count(ctx context.Context) int   { return 0 }

func TestAsk_RetrievalFailureBecomesErrorAnswer(t *testing.T) {
	gen := generator.New(echoCompleter{}, nil)
	svc := New(chunker.NewRecursiveChunker(0, 0), failingIndex{}, retriever.New(failingIndex{}, 3), gen, nil)

	answer := svc.Ask(context.Background(), "Anything?")
	assert.True(t, answer.Failed())
	assert.True(t, strings.HasPrefix(answer.Text, generator.ErrorPrefix))
}

func TestAnalyze_ProducesFullReport(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.IngestFile(ctx, writeDoc(t, "filing.txt", filingText))
	require.NoError(t, err)

	report := svc.Analyze(ctx, nil)
	require.NotEmpty(t, report.Sections)
	for _, sec := range report.Sections {
		for _, qa := range sec.Results {
			assert.False(t, qa.Answer.Failed(), "question %q failed: %s", qa.Question, qa.Answer.Text)
			assert.NotEmpty(t, qa.Answer.Text)
		}
	}

	md := svc.ReportMarkdown(ctx, nil)
	assert.Contains(t, md, "# M&A TAX RISK ASSESSMENT REPORT")
}

func TestClearAll(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.IngestFile(ctx, writeDoc(t, "filing.txt", filingText))
	require.NoError(t, err)
	require.Greater(t, svc.Count(ctx), 0)

	require.NoError(t, svc.ClearAll(ctx))
	assert.Equal(t, 0, svc.Count(ctx))
}
