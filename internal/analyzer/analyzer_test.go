package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxrag/internal/domain"
)

// scriptedAnswerer answers every question with canned text, failing the
// questions listed in failOn.
type scriptedAnswerer struct {
	failOn map[string]bool
	asked  []string
}

func (s *scriptedAnswerer) Ask(ctx context.Context, question string) domain.Answer {
	s.asked = append(s.asked, question)
	if s.failOn[question] {
		return domain.Answer{
			Text: "ERROR: upstream unavailable",
			Err:  "upstream unavailable",
		}
	}
	return domain.Answer{
		Text: "Answer to: " + question,
		Sources: []domain.Source{
			{Content: "Excerpt supporting " + question},
		},
	}
}

func testSections() []Section {
	return []Section{
		{Key: "audits", Title: "Audit History", Questions: []string{
			"Were there any IRS audits?",
			"What were the audit outcomes?",
		}},
		{Key: "reserves", Title: "Tax Reserves", Questions: []string{
			"What tax reserves are recorded?",
			"Are the reserves adequate?",
		}},
		{Key: "structure", Title: "Deal Structure", Questions: []string{
			"Is the transaction a stock or asset deal?",
			"Any 338(h)(10) election discussed?",
		}},
	}
}

func TestRun_AsksEveryQuestionInOrder(t *testing.T) {
	ans := &scriptedAnswerer{}
	report := New(ans, testSections(), nil).Run(context.Background())

	require.Len(t, report.Sections, 3)
	var want []string
	for _, sec := range testSections() {
		want = append(want, sec.Questions...)
	}
	assert.Equal(t, want, ans.asked)
	for i, sec := range report.Sections {
		assert.Equal(t, testSections()[i].Key, sec.Key)
		assert.Len(t, sec.Results, 2)
	}
}

func TestRun_FailedQuestionDoesNotAbort(t *testing.T) {
	ans := &scriptedAnswerer{failOn: map[string]bool{
		"What tax reserves are recorded?": true,
	}}
	report := New(ans, testSections(), nil).Run(context.Background())

	require.Len(t, report.Sections, 3)
	failed := 0
	total := 0
	for _, sec := range report.Sections {
		for _, qa := range sec.Results {
			total++
			if qa.Answer.Failed() {
				failed++
				assert.Equal(t, "What tax reserves are recorded?", qa.Question)
			}
		}
	}
	assert.Equal(t, 6, total, "every question keeps its slot")
	assert.Equal(t, 1, failed)
}

func TestRender_Layout(t *testing.T) {
	ans := &scriptedAnswerer{failOn: map[string]bool{
		"Are the reserves adequate?": true,
	}}
	report := New(ans, testSections(), nil).Run(context.Background())
	md := Render(report)

	assert.True(t, strings.HasPrefix(md, "# M&A TAX RISK ASSESSMENT REPORT\n"))
	assert.Contains(t, md, "## Audit History")
	assert.Contains(t, md, "## Tax Reserves")
	assert.Contains(t, md, "## Deal Structure")
	assert.Contains(t, md, "**Q: Were there any IRS audits?**")
	assert.Contains(t, md, "Answer to: Were there any IRS audits?")
	assert.Contains(t, md, "- Source 1: Excerpt supporting Were there any IRS audits?...")
	assert.Contains(t, md, "ERROR: upstream unavailable")
	assert.Equal(t, 3, strings.Count(md, "---\n"), "one rule per section")
	assert.Less(t, strings.Index(md, "## Audit History"), strings.Index(md, "## Tax Reserves"))
}

func TestRender_SourceLimits(t *testing.T) {
	long := strings.Repeat("x", 400)
	report := domain.AnalysisReport{Sections: []domain.SectionResult{{
		Key:   "one",
		Title: "One",
		Results: []domain.QA{{
			Question: "Q?",
			Answer: domain.Answer{
				Text: "A.",
				Sources: []domain.Source{
					{Content: long},
					{Content: "second"},
					{Content: "third"},
				},
			},
		}},
	}}}
	md := Render(report)

	assert.Contains(t, md, "- Source 1: "+long[:150]+"...")
	assert.Contains(t, md, "- Source 2: second...")
	assert.NotContains(t, md, "third")
}

func TestDefaultSections(t *testing.T) {
	sections := DefaultSections()
	require.NotEmpty(t, sections)

	total := 0
	seen := map[string]bool{}
	for _, sec := range sections {
		assert.NotEmpty(t, sec.Key)
		assert.NotEmpty(t, sec.Title)
		assert.NotEmpty(t, sec.Questions)
		assert.False(t, seen[sec.Key], "duplicate section key %q", sec.Key)
		seen[sec.Key] = true
		total += len(sec.Questions)
	}
	assert.Equal(t, 8, len(sections))
	assert.Equal(t, 22, total)
}
