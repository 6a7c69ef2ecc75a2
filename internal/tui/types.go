package tui

import (
	"github.com/csheth/critic/internal/critique"
	"github.com/csheth/critic/internal/pdfcheck"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusResults
)

const heroTitle = "Critical Thinking Lab"

const heroTagline = "Stress-test an argument from four perspectives."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
)

const (
	textPlaceholder = "Paste or type the argument you want critiqued…"
	filePlaceholder = "Path to a PDF, e.g. ./essay.pdf"
)

// exampleArgument fills the text area when the user asks for an example.
const exampleArgument = "Governments should require all new residential buildings to include solar panels. " +
	"This would rapidly increase renewable energy adoption, reduce household electricity bills over time, " +
	"and cut carbon emissions. While upfront construction costs would rise slightly, the long-term " +
	"environmental and economic benefits clearly outweigh these costs."

type analysisDoneMsg struct {
	attemptID string
	results   *critique.ResultSet
	err       error
}

type exportDoneMsg struct {
	exportID string
	path     string
	err      error
}

type inspectDoneMsg struct {
	path string
	info pdfcheck.Info
	err  error
}

type healthMsg struct {
	endpoint string
	err      error
}
