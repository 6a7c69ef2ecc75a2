package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/critic/internal/pdfcheck"
	"github.com/csheth/critic/internal/tui"
)

type tuiOptions struct {
	noAltScreen bool
	reportDir   string
}

func newTUICommand(a *app) *cobra.Command {
	var opts tuiOptions
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive workspace (default)",
		Long: `Open the interactive workspace.

Type an argument or point at a PDF, press Ctrl+R to analyze and browse the
four perspectives with 1-4 or the arrow keys. Ctrl+S saves the PDF report.
Log lines go to the file named by logging.file so they never touch the screen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
	cmd.Flags().StringVar(&opts.reportDir, "out", "", "directory for saved reports (overrides config)")
	return cmd
}

func (a *app) runTUI(cmd *cobra.Command, opts tuiOptions) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}

	closeLog, err := redirectLog(a, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()

	session, client, err := a.session(cfg, opts.reportDir)
	if err != nil {
		return err
	}
	inspector, err := pdfcheck.New(0)
	if err != nil {
		return err
	}
	reportDir := opts.reportDir
	if reportDir == "" {
		reportDir = cfg.Output.ReportDir
	}

	programOpts := []tea.ProgramOption{
		tea.WithContext(cmd.Context()),
		tea.WithMouseCellMotion(),
	}
	if !opts.noAltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(tui.Config{
		Session:        session,
		Client:         client,
		Inspector:      inspector,
		AnalyzeTimeout: cfg.Service.AnalyzeTimeout,
		ExportTimeout:  cfg.Service.ExportTimeout,
		HealthTimeout:  cfg.Service.HealthTimeout,
		ReportDir:      reportDir,
		Logger:         a.log,
	}), programOpts...)

	a.log.Info("workspace starting against %s", client.Endpoint())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

// redirectLog points the logger at path, or drops output when path is empty,
// for as long as the full-screen program owns the terminal.
func redirectLog(a *app, path string) (func(), error) {
	if path == "" {
		a.log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	a.log.SetOutput(f)
	return func() {
		a.log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
