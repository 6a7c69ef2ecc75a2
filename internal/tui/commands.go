package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/critique"
	"github.com/csheth/critic/internal/pdfcheck"
)

func withTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// analyzeJob runs a submission that has already entered Submitting.
func analyzeJob(sub *critique.Submission, timeout time.Duration) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := withTimeout(parent, timeout)
		defer cancel()
		results, err := sub.Run(ctx)
		return analysisDoneMsg{attemptID: sub.ID, results: results, err: err}, err
	}
}

func exportJob(job *critique.ExportJob, timeout time.Duration) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := withTimeout(parent, timeout)
		defer cancel()
		path, err := job.Run(ctx)
		return exportDoneMsg{exportID: job.ID, path: path, err: err}, err
	}
}

func healthJob(client api.Client, timeout time.Duration) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := withTimeout(parent, timeout)
		defer cancel()
		err := client.Health(ctx)
		return healthMsg{endpoint: client.Endpoint(), err: err}, err
	}
}

// inspectCmd runs outside the job bus; it fires on every path edit.
func inspectCmd(inspector *pdfcheck.Inspector, path string) tea.Cmd {
	return func() tea.Msg {
		info, err := inspector.Inspect(path)
		return inspectDoneMsg{path: path, info: info, err: err}
	}
}
