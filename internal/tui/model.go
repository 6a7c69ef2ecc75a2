package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/critique"
	"github.com/csheth/critic/internal/logger"
	"github.com/csheth/critic/internal/pdfcheck"
	"github.com/csheth/critic/internal/perspective"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Session *critique.Session
	// Client is only used for the startup health probe; nil skips it.
	Client         api.Client
	Inspector      *pdfcheck.Inspector
	AnalyzeTimeout time.Duration
	ExportTimeout  time.Duration
	HealthTimeout  time.Duration
	ReportDir      string
	Logger         *logger.Logger
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Session == nil {
		panic("tui: Config.Session is required")
	}
	log := config.Logger.WithComponent("tui")

	text := textarea.New()
	text.Placeholder = textPlaceholder
	text.ShowLineNumbers = false
	// The limit is advisory; the counter turns red instead.
	text.CharLimit = 0
	text.SetWidth(76)
	text.SetHeight(6)
	text.Focus()

	fileInput := textinput.New()
	fileInput.Placeholder = filePlaceholder
	fileInput.CharLimit = 1024
	fileInput.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 12)
	vp.MouseWheelEnabled = true

	m := &model{
		config:        config,
		session:       config.Session,
		log:           log,
		jobs:          newJobBus(config.Logger),
		layout:        newPageLayout(),
		focus:         focusInput,
		textArea:      text,
		fileInput:     fileInput,
		spinner:       spin,
		viewport:      vp,
		jobStates:     map[jobKind]jobSnapshot{},
		viewportDirty: true,
		infoMessage:   "Type an argument or switch to PDF with Ctrl+O, then press Ctrl+R.",
	}
	input := m.session.Input()
	m.textArea.SetValue(input.Text)
	if path := filePath(input.File); path != "" {
		m.fileInput.SetValue(path)
	}
	if input.Mode == critique.ModeFile {
		m.textArea.Blur()
		m.fileInput.Focus()
	}
	return m
}

type model struct {
	config  Config
	session *critique.Session
	log     *logger.Logger
	jobs    *jobBus
	layout  pageLayout

	focus     focusArea
	textArea  textarea.Model
	fileInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model

	pdfInfo       *pdfcheck.Info
	pdfErr        string
	jobStates     map[jobKind]jobSnapshot
	viewportDirty bool
	renderedFor   string
	infoMessage   string
	errorMessage  string
	healthMessage string
	helpVisible   bool
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.config.Client != nil {
		cmds = append(cmds, m.jobs.Start(jobKindHealth, healthJob(m.config.Client, m.config.HealthTimeout)))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.applyLayout()
		return m, nil
	case jobSignalMsg:
		m.jobStates[msg.Snapshot.Kind] = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		m.jobStates[msg.Snapshot.Kind] = msg.Snapshot
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case analysisDoneMsg:
		return m, m.handleAnalysisDone(msg)
	case exportDoneMsg:
		return m, m.handleExportDone(msg)
	case inspectDoneMsg:
		m.handleInspectDone(msg)
		return m, nil
	case healthMsg:
		if msg.err != nil {
			m.healthMessage = fmt.Sprintf("Analysis service unreachable at %s.", msg.endpoint)
			m.log.Warn("health check failed: %v", msg.err)
		} else {
			m.healthMessage = fmt.Sprintf("Connected to %s.", msg.endpoint)
		}
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+r":
		return m, m.actionSubmit()
	case "ctrl+s":
		return m, m.actionExport()
	case "ctrl+o":
		return m, m.actionToggleMode()
	case "ctrl+l":
		m.actionToggleLength()
		return m, nil
	case "ctrl+x":
		m.actionUseExample()
		return m, nil
	case "tab", "shift+tab":
		return m, m.actionToggleFocus()
	}
	if m.focus == focusResults {
		return m.handleResultsKey(key)
	}
	return m.handleInputKey(key)
}

func (m *model) handleInputKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyEsc {
		if m.session.Snapshot().HasResults() {
			return m, m.actionToggleFocus()
		}
		return m, tea.Quit
	}
	if m.session.Input().Mode == critique.ModeFile {
		if key.Type == tea.KeyEnter {
			return m, m.actionSubmit()
		}
		before := m.fileInput.Value()
		var cmd tea.Cmd
		m.fileInput, cmd = m.fileInput.Update(key)
		if m.fileInput.Value() == before {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.syncFile())
	}
	var cmd tea.Cmd
	m.textArea, cmd = m.textArea.Update(key)
	m.session.SetText(m.textArea.Value())
	return m, cmd
}

func (m *model) handleResultsKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "1", "2", "3", "4":
		m.selectPerspective(perspective.At(int(key.Runes[0] - '1')))
		return m, nil
	case "right", "l":
		m.cyclePerspective(1)
		return m, nil
	case "left", "h":
		m.cyclePerspective(-1)
		return m, nil
	case "a", "r":
		return m, m.actionSubmit()
	case "d", "s":
		return m, m.actionExport()
	case "g":
		m.viewport.GotoTop()
		return m, nil
	case "G":
		m.viewport.GotoBottom()
		return m, nil
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	case "q", "esc":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(key)
	return m, cmd
}

func (m *model) actionSubmit() tea.Cmd {
	m.syncInputs()
	sub, err := m.session.BeginSubmit()
	if err != nil {
		if errors.Is(err, critique.ErrSubmissionInFlight) {
			m.infoMessage = "Analysis already running…"
			return nil
		}
		m.errorMessage = critique.UserMessage(err)
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = "Analyzing from four perspectives…"
	m.markViewportDirty()
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindAnalyze, analyzeJob(sub, m.config.AnalyzeTimeout)))
}

func (m *model) actionExport() tea.Cmd {
	job, err := m.session.BeginExport()
	switch {
	case errors.Is(err, critique.ErrNoResult):
		m.infoMessage = "Run an analysis before downloading the report."
		return nil
	case errors.Is(err, critique.ErrExportInFlight):
		m.infoMessage = "Report download already in progress…"
		return nil
	case err != nil:
		m.errorMessage = critique.UserMessage(err)
		return nil
	}
	m.infoMessage = "Generating PDF report…"
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindExport, exportJob(job, m.config.ExportTimeout)))
}

func (m *model) actionToggleMode() tea.Cmd {
	mode := critique.ModeFile
	if m.session.Input().Mode == critique.ModeFile {
		mode = critique.ModeText
	}
	m.session.SetMode(mode)
	m.focus = focusInput
	m.errorMessage = ""
	if mode == critique.ModeFile {
		m.textArea.Blur()
		m.infoMessage = "PDF mode: enter a path and press Enter to analyze."
		return tea.Batch(m.fileInput.Focus(), m.syncFile())
	}
	m.fileInput.Blur()
	m.infoMessage = "Text mode: type an argument and press Ctrl+R."
	return m.textArea.Focus()
}

func (m *model) actionToggleLength() {
	length := m.session.AnswerLength().Toggle()
	m.session.SetAnswerLength(length)
	m.infoMessage = fmt.Sprintf("%s selected for the next analysis.", length.Label())
}

func (m *model) actionUseExample() {
	if m.session.Input().Mode != critique.ModeText {
		m.infoMessage = "Switch to text mode (Ctrl+O) to use the example."
		return
	}
	m.textArea.SetValue(exampleArgument)
	m.session.SetText(exampleArgument)
	m.errorMessage = ""
	m.infoMessage = "Example argument loaded. Press Ctrl+R to analyze."
}

func (m *model) actionToggleFocus() tea.Cmd {
	if m.focus == focusInput {
		m.focus = focusResults
		m.textArea.Blur()
		m.fileInput.Blur()
		return nil
	}
	m.focus = focusInput
	if m.session.Input().Mode == critique.ModeFile {
		return m.fileInput.Focus()
	}
	return m.textArea.Focus()
}

func (m *model) selectPerspective(key perspective.Key) {
	m.session.Select(key)
	m.viewport.GotoTop()
	m.markViewportDirty()
}

func (m *model) cyclePerspective(delta int) {
	idx := perspective.Index(m.session.Active())
	m.selectPerspective(perspective.At(idx + delta))
}

// syncInputs pushes both widgets into the session so a submission always
// sees what is on screen.
func (m *model) syncInputs() {
	m.session.SetText(m.textArea.Value())
	path := strings.TrimSpace(m.fileInput.Value())
	if path == "" {
		m.session.SetFile(nil)
	} else if filePath(m.session.Input().File) != path {
		m.session.SetFile(critique.LocalFile(path))
	}
}

func (m *model) syncFile() tea.Cmd {
	path := strings.TrimSpace(m.fileInput.Value())
	m.pdfInfo = nil
	m.pdfErr = ""
	if path == "" {
		m.session.SetFile(nil)
		return nil
	}
	m.session.SetFile(critique.LocalFile(path))
	if m.config.Inspector == nil {
		return nil
	}
	return inspectCmd(m.config.Inspector, path)
}

func (m *model) handleAnalysisDone(msg analysisDoneMsg) tea.Cmd {
	snap := m.session.Snapshot()
	if snap.AttemptID != msg.attemptID {
		return nil
	}
	m.markViewportDirty()
	m.viewport.GotoTop()
	if msg.err != nil {
		m.errorMessage = critique.UserMessage(msg.err)
		m.infoMessage = "Fix the input or retry with Ctrl+R."
		return nil
	}
	m.errorMessage = ""
	if failed := msg.results.Failed(); len(failed) > 0 {
		m.infoMessage = fmt.Sprintf("Analysis ready; %d perspective(s) unavailable.", len(failed))
	} else {
		m.infoMessage = "Analysis ready. Use 1-4 or ←/→ to switch perspectives, Ctrl+S to download."
	}
	m.focus = focusResults
	m.textArea.Blur()
	m.fileInput.Blur()
	return nil
}

func (m *model) handleExportDone(msg exportDoneMsg) tea.Cmd {
	if msg.err != nil {
		m.errorMessage = critique.UserMessage(msg.err)
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Report saved to %s", msg.path)
	return nil
}

func (m *model) handleInspectDone(msg inspectDoneMsg) {
	if strings.TrimSpace(m.fileInput.Value()) != msg.path {
		return
	}
	if msg.err != nil {
		m.pdfInfo = nil
		m.pdfErr = msg.err.Error()
		return
	}
	info := msg.info
	m.pdfInfo = &info
	m.pdfErr = ""
}

func (m *model) busy() bool {
	snap := m.session.Snapshot()
	return snap.Analysis == critique.AnalysisSubmitting || snap.Exporting
}

func (m *model) applyLayout() {
	m.textArea.SetWidth(m.layout.inputWidth)
	m.textArea.SetHeight(m.layout.inputHeight)
	m.fileInput.Width = m.layout.inputWidth - 4
	m.viewport.Width = m.layout.viewportWidth
	m.viewport.Height = m.layout.viewportHeight
	m.markViewportDirty()
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func filePath(handle critique.FileHandle) string {
	if handle == nil {
		return ""
	}
	if p, ok := handle.(interface{ Path() string }); ok {
		return p.Path()
	}
	return handle.Name()
}
