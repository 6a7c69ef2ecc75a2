package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/critic/internal/config"
	"github.com/csheth/critic/internal/critique"
	"github.com/csheth/critic/internal/perspective"
)

const textWrapWidth = 80

// ResultFormatter renders a finished analysis.
type ResultFormatter interface {
	Format(w io.Writer, results *critique.ResultSet, length perspective.AnswerLength) error
}

func newFormatter(format string) (ResultFormatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case config.FormatText, "":
		return &TextFormatter{Width: textWrapWidth}, nil
	case config.FormatJSON:
		return &JSONFormatter{Indent: true}, nil
	case config.FormatMarkdown, "md":
		return &MarkdownFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// JSONOutput mirrors the service's analysis object so the output can be fed
// back into other tools.
type JSONOutput struct {
	AttemptID    string                    `json:"attempt_id"`
	AnswerLength string                    `json:"answer_length"`
	Analysis     map[string]PerspectiveOut `json:"analysis"`
	Failed       []string                  `json:"failed,omitempty"`
}

// PerspectiveOut is one perspective in JSON output.
type PerspectiveOut struct {
	Label   string `json:"label"`
	Status  string `json:"status"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) Format(w io.Writer, results *critique.ResultSet, length perspective.AnswerLength) error {
	out := JSONOutput{
		AttemptID:    results.AttemptID(),
		AnswerLength: string(length),
		Analysis:     make(map[string]PerspectiveOut, results.Len()),
	}
	for _, p := range perspective.Catalog() {
		result, ok := results.Get(p.Key)
		if !ok {
			continue
		}
		out.Analysis[string(p.Key)] = PerspectiveOut{
			Label:   p.Label,
			Status:  string(result.Status),
			Content: result.Content,
			Message: result.Message,
		}
	}
	for _, key := range results.Failed() {
		out.Failed = append(out.Failed, string(key))
	}

	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// TextFormatter prints one wrapped section per perspective.
type TextFormatter struct {
	Width int
}

func (f *TextFormatter) Format(w io.Writer, results *critique.ResultSet, length perspective.AnswerLength) error {
	width := f.Width
	if width <= 0 {
		width = textWrapWidth
	}
	var b strings.Builder
	for i, p := range perspective.Catalog() {
		result, ok := results.Get(p.Key)
		if !ok {
			continue
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s\n", headingStyle.Render(p.Label), subtleStyle.Render("· "+p.Description))
		if result.OK() {
			b.WriteString(wordwrap.String(strings.TrimSpace(result.Content), width))
		} else {
			b.WriteString(failStyle.Render("! " + wordwrap.String(result.Message, width-2)))
		}
		b.WriteString("\n")
	}
	footer := fmt.Sprintf("%s · attempt %s", length.Label(), results.AttemptID())
	if failed := describeFailures(results); failed != "" {
		footer += " · unavailable: " + failed
	}
	fmt.Fprintf(&b, "\n%s\n", subtleStyle.Render(footer))
	_, err := io.WriteString(w, b.String())
	return err
}

// MarkdownFormatter produces a document suitable for pasting into notes.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, results *critique.ResultSet, length perspective.AnswerLength) error {
	var b strings.Builder
	b.WriteString("# Critical Thinking Analysis\n\n")
	fmt.Fprintf(&b, "_%s_\n", length.Label())
	for _, p := range perspective.Catalog() {
		result, ok := results.Get(p.Key)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", p.Label)
		fmt.Fprintf(&b, "*%s*\n\n", p.Description)
		if result.OK() {
			b.WriteString(strings.TrimSpace(result.Content))
		} else {
			fmt.Fprintf(&b, "> **Unavailable:** %s", result.Message)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
