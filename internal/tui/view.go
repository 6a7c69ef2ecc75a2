package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/critic/internal/critique"
	"github.com/csheth/critic/internal/perspective"
)

func (m *model) View() string {
	snap := m.session.Snapshot()
	parts := []string{
		m.heroView(),
		m.statusBarView(snap),
		m.inputPanel(snap),
		m.resultsPanel(snap),
		m.bannerView(snap),
	}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView())
	}
	parts = append(parts, helperStyle.Render(m.footerHint()))
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	title := heroTitleStyle.Render(heroTitle)
	return lipgloss.JoinVertical(lipgloss.Left, heroBoxStyle.Render(title), taglineStyle.Render(heroTagline))
}

func (m *model) statusBarView(snap critique.Snapshot) string {
	mode := "Text"
	if snap.Input.Mode == critique.ModeFile {
		mode = "PDF"
	}
	stats := []string{
		"Input " + mode,
		snap.Input.AnswerLength.Label(),
	}
	switch {
	case snap.Analysis == critique.AnalysisSubmitting:
		stats = append(stats, "Analyzing…")
	case snap.HasResults():
		stats = append(stats, fmt.Sprintf("Results %d/%d", snap.Results.Len()-len(snap.Results.Failed()), snap.Results.Len()))
	case snap.Analysis == critique.AnalysisFailed:
		stats = append(stats, "Last analysis failed")
	default:
		stats = append(stats, "No analysis yet")
	}
	if snap.Exporting {
		stats = append(stats, "Exporting…")
	}
	stats = append(stats, m.jobStatusBadges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	var badges []string
	for _, kind := range []jobKind{jobKindAnalyze, jobKindExport} {
		snap, ok := m.jobStates[kind]
		if !ok || snap.Status != jobStatusFailed {
			continue
		}
		badges = append(badges, fmt.Sprintf("%s failed", kind))
	}
	return badges
}

func (m *model) inputPanel(snap critique.Snapshot) string {
	header := sectionHeaderStyle.Render("Your argument")
	if m.focus == focusInput {
		header = focusedHeaderStyle.Render("▸ Your argument")
	}
	if snap.Input.Mode == critique.ModeFile {
		lines := []string{header, m.fileInput.View()}
		lines = append(lines, m.pdfHints()...)
		return strings.Join(lines, "\n")
	}
	counter := helperStyle
	if snap.Input.OverTextLimit() {
		counter = errorStyle
	}
	return strings.Join([]string{header, m.textArea.View(), counter.Render(snap.Input.TextLengthHint())}, "\n")
}

func (m *model) pdfHints() []string {
	hints := []string{helperStyle.Render("PDF only • max 10MB")}
	switch {
	case m.pdfErr != "":
		hints = append(hints, errorStyle.Render(m.pdfErr))
	case m.pdfInfo != nil:
		hints = append(hints, helperStyle.Render(m.pdfInfo.Hint()))
		for _, warning := range m.pdfInfo.Warnings {
			hints = append(hints, warningStyle.Render("! "+warning))
		}
	}
	return hints
}

func (m *model) resultsPanel(snap critique.Snapshot) string {
	header := sectionHeaderStyle.Render("Perspectives")
	if m.focus == focusResults {
		header = focusedHeaderStyle.Render("▸ Perspectives")
	}
	m.refreshViewportIfDirty(snap)
	return strings.Join([]string{header, m.tabsView(snap), m.viewport.View()}, "\n")
}

func (m *model) tabsView(snap critique.Snapshot) string {
	tabs := make([]string, 0, 4)
	for idx, p := range perspective.Catalog() {
		label := fmt.Sprintf("%d %s", idx+1, p.Label)
		if res, ok := snap.Results.Get(p.Key); ok && !res.OK() {
			label += " !"
		}
		style := tabStyle
		if p.Key == snap.Active {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *model) refreshViewportIfDirty(snap critique.Snapshot) {
	key := fmt.Sprintf("%s|%s|%s|%d", snap.AttemptID, snap.Analysis, snap.Active, m.viewport.Width)
	if !m.viewportDirty && key == m.renderedFor {
		return
	}
	m.viewport.SetContent(m.renderActive(snap))
	m.renderedFor = key
	m.viewportDirty = false
}

func (m *model) renderActive(snap critique.Snapshot) string {
	wrap := m.layout.wrapWidth(2)
	if snap.Analysis == critique.AnalysisSubmitting {
		return helperStyle.Render("Waiting for the analysis service…")
	}
	res, ok := snap.ActiveResult()
	if !ok {
		return helperStyle.Render("Results will appear here after you run an analysis.")
	}
	p, _ := perspective.Lookup(snap.Active)
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(p.Label))
	b.WriteString(helperStyle.Render(" · " + p.Description))
	b.WriteString("\n\n")
	if !res.OK() {
		b.WriteString(errorStyle.Render(wordwrap.String(res.Message, wrap)))
		return b.String()
	}
	b.WriteString(wordwrap.String(res.Content, wrap))
	return b.String()
}

func (m *model) bannerView(snap critique.Snapshot) string {
	var lines []string
	// Validation errors live only in the model; submission and export
	// failures come from the session.
	switch {
	case m.errorMessage != "":
		lines = append(lines, errorStyle.Render(m.errorMessage))
	case snap.Failure != "":
		lines = append(lines, errorStyle.Render(snap.Failure))
	case snap.ExportFailure != "":
		lines = append(lines, errorStyle.Render(snap.ExportFailure))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.busy() {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		lines = append(lines, helperStyle.Render(message))
	}
	if m.healthMessage != "" {
		lines = append(lines, helperStyle.Render(m.healthMessage))
	}
	return strings.Join(lines, "\n")
}

func (m *model) footerHint() string {
	if m.focus == focusResults {
		return "1-4/←→: perspective • d: download • a: analyze • tab: edit input • ?: keys • q: quit"
	}
	return "Ctrl+R: analyze • Ctrl+O: text/PDF • Ctrl+L: length • Ctrl+X: example • Ctrl+S: download • Tab: results"
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"Ctrl+R", "Analyze"},
		{"Ctrl+S", "Download PDF"},
		{"Ctrl+O", "Text or PDF"},
		{"Ctrl+L", "Long or short"},
		{"Ctrl+X", "Use example"},
		{"Tab", "Switch focus"},
		{"1-4", "Pick perspective"},
		{"←/→", "Cycle perspectives"},
		{"g/G", "Top or bottom"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	focusedHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	subtitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	heroAccentColor        = lipgloss.Color("#ff8c00")
	heroEmberColor         = lipgloss.Color("#2b1400")
	heroTextColor          = lipgloss.Color("#fff4d0")
	heroSecondaryTextColor = lipgloss.Color("#ffb347")

	heroTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor)
	heroBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Background(heroEmberColor).Padding(0, 2)
	taglineStyle   = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
)
