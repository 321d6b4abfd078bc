package generator

import (
	"context"
	"strings"

	"github.com/phuslu/log"

	"taxrag/internal/domain"
)

// Deflection is the phrase the model is instructed to return when the
// retrieved context does not contain the answer. The instruction is a
// hard contract of the prompt, not a stylistic suggestion.
const Deflection = "I cannot find this information in the provided document."

// ErrorPrefix marks answers that carry a failure description instead of
// generated content.
const ErrorPrefix = "ERROR: "

// sourcePreviewLen bounds the per-source preview attached to an Answer.
// Generation always uses the full chunk text.
const sourcePreviewLen = 300

// Completer is the text-generation capability consumed by the Generator.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator builds grounded prompts from retrieved chunks and produces
// answers. It never returns an error: transport and format failures are
// folded into the Answer so callers can render any result uniformly.
type Generator struct {
	completer Completer
	logger    *log.Logger
}

// New creates a Generator over the given completer.
func New(completer Completer, logger *log.Logger) *Generator {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Generator{completer: completer, logger: logger}
}

// Answer asks the completer the question grounded in the retrieved
// chunks, in their given order. Sources lists exactly the chunks that
// went into the prompt, truncated for display.
func (g *Generator) Answer(ctx context.Context, question string, results []domain.ScoredChunk) domain.Answer {
	prompt := BuildPrompt(question, results)

	sources := make([]domain.Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, domain.Source{
			Content:  previewOf(r.Chunk.Text),
			Metadata: r.Chunk.Metadata,
		})
	}

	text, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		g.logger.Error().Err(err).Str("question", question).Msg("generation failed")
		return domain.Answer{
			Text:    ErrorPrefix + err.Error(),
			Sources: sources,
			Err:     err.Error(),
		}
	}
	return domain.Answer{Text: strings.TrimSpace(text), Sources: sources}
}

// BuildPrompt assembles the grounded prompt: analyst framing, the full
// text of every retrieved chunk in order, and the literal question.
func BuildPrompt(question string, results []domain.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("You are an expert M&A tax analyst. Use the following context to answer the question.\n\n")
	b.WriteString("Context:\n")
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(r.Chunk.Text)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nProvide a detailed answer. If the information is not in the context, state \"")
	b.WriteString(Deflection)
	b.WriteString("\"\n\nAnswer:")
	return b.String()
}

func previewOf(text string) string {
	if len(text) <= sourcePreviewLen {
		return text
	}
	return text[:sourcePreviewLen] + "..."
}
