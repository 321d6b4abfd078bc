package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"taxrag/internal/domain"
)

// reportSourceLimit and reportSourceLen bound the source excerpts
// rendered per answer in the exported report.
const (
	reportTitle       = "M&A TAX RISK ASSESSMENT REPORT"
	reportSourceLimit = 2
	reportSourceLen   = 150
)

// Answerer is the question-answering capability the analyzer drives.
// A returned Answer carries its own success or error content.
type Answerer interface {
	Ask(ctx context.Context, question string) domain.Answer
}

// Analyzer runs a fixed battery of questions through the retrieval and
// generation pipeline and assembles a structured report. Questions run
// strictly sequentially: the upstream generation service is shared and
// rate limited.
type Analyzer struct {
	answerer Answerer
	sections []Section
	logger   *log.Logger
}

// New creates an analyzer asking the given sections. Nil sections fall
// back to DefaultSections.
func New(answerer Answerer, sections []Section, logger *log.Logger) *Analyzer {
	if sections == nil {
		sections = DefaultSections()
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Analyzer{answerer: answerer, sections: sections, logger: logger}
}

// Run asks every question in section order then question order. A failed
// question never aborts the run; its slot carries the error answer.
func (a *Analyzer) Run(ctx context.Context) domain.AnalysisReport {
	report := domain.AnalysisReport{Sections: make([]domain.SectionResult, 0, len(a.sections))}
	for _, sec := range a.sections {
		a.logger.Info().Str("section", sec.Key).Int("questions", len(sec.Questions)).Msg("analyzing section")
		result := domain.SectionResult{
			Key:     sec.Key,
			Title:   sec.Title,
			Results: make([]domain.QA, 0, len(sec.Questions)),
		}
		for _, q := range sec.Questions {
			answer := a.answerer.Ask(ctx, q)
			if answer.Failed() {
				a.logger.Warn().Str("section", sec.Key).Str("question", q).Str("error", answer.Err).Msg("question failed")
			}
			result.Results = append(result.Results, domain.QA{Question: q, Answer: answer})
		}
		report.Sections = append(report.Sections, result)
	}
	return report
}

// Render serializes a report to markdown: top-level title, one heading
// per section in order, question/answer pairs, and up to two truncated
// source excerpts per answer, with a horizontal rule after each section.
func Render(report domain.AnalysisReport) string {
	var b strings.Builder
	b.WriteString("# " + reportTitle + "\n\n")
	for _, sec := range report.Sections {
		b.WriteString("\n## " + sec.Title + "\n\n")
		for _, qa := range sec.Results {
			fmt.Fprintf(&b, "**Q: %s**\n\n", qa.Question)
			b.WriteString(qa.Answer.Text + "\n\n")
			if len(qa.Answer.Sources) > 0 {
				b.WriteString("_Sources:_\n")
				for i, src := range qa.Answer.Sources {
					if i >= reportSourceLimit {
						break
					}
					fmt.Fprintf(&b, "- Source %d: %s...\n", i+1, excerpt(src.Content))
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("---\n")
	}
	return b.String()
}

func excerpt(s string) string {
	if len(s) <= reportSourceLen {
		return s
	}
	return s[:reportSourceLen]
}
