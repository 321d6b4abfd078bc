package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taxrag/internal/domain"
)

// QAPort is the TUI-facing subset of the service.
type QAPort interface {
	Ask(ctx context.Context, question string) domain.Answer
	Count(ctx context.Context) int
}

// Model is the Bubble Tea model for the interactive Q&A session.
type Model struct {
	service  QAPort
	input    textinput.Model
	viewport viewport.Model
	answer   *domain.Answer
	summary  string
	status   string
	ready    bool
}

// New creates a new TUI model. The summary line, typically the ingested
// document's overview, is shown under the header.
func New(service QAPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about the document and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	count := service.Count(context.Background())
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   fmt.Sprintf("%d chunks indexed. Type a question.", count),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around answer and question boxes
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + summary
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.status = "Thinking..."
				answer := m.service.Ask(context.Background(), q)
				m.answer = &answer
				if answer.Failed() {
					m.status = "Answer failed; see details above."
				} else {
					m.status = fmt.Sprintf("Answered %q", q)
				}
				m.input.SetValue("")
				m.viewport.SetContent(m.renderAnswer())
				m.viewport.GotoTop()
				return m, nil
			}
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Tax Risk Q&A")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	answer := answerBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "No answer yet."
	}
	text := m.answer.Text
	if m.answer.Failed() {
		text = errorStyle.Render(text)
	}
	if len(m.answer.Sources) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n")
	b.WriteString(sourceHeadStyle.Render("Sources"))
	for i, src := range m.answer.Sources {
		fmt.Fprintf(&b, "\n%d. %s", i+1, src.Content)
		if name, ok := src.Metadata["filename"].(string); ok {
			b.WriteString(sourceMetaStyle.Render(fmt.Sprintf("  (%s)", name)))
		}
	}
	return b.String()
}

var (
	answerBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	sourceHeadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceMetaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
