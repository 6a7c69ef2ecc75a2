package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csheth/critic/internal/config"
	"github.com/csheth/critic/internal/critique"
	"github.com/csheth/critic/internal/logger"
	"github.com/csheth/critic/internal/pdfcheck"
	"github.com/csheth/critic/internal/perspective"
)

type analyzeOptions struct {
	text      string
	file      string
	length    string
	format    string
	export    bool
	reportDir string
}

func newAnalyzeCommand(a *app) *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one argument and print every perspective",
		Long: `Submit one argument and print the four perspectives.

Exactly one of --text or --file is required. --text - reads the argument
from standard input. With --export the PDF report is saved afterwards.

Examples:
  critic analyze --text "Cities should ban cars from their centres."
  critic analyze --file essay.pdf --length short
  echo "..." | critic analyze --text - --format json
  critic analyze --file essay.pdf --export --out ./reports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "argument text (- reads stdin)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "PDF file to upload")
	cmd.Flags().StringVarP(&opts.length, "length", "l", "", "answer length: long or short (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "o", "", "output format: text, json, markdown (default from config)")
	cmd.Flags().BoolVar(&opts.export, "export", false, "save the PDF report after analysis")
	cmd.Flags().StringVar(&opts.reportDir, "out", "", "directory for the saved report (overrides config)")
	cmd.MarkFlagsMutuallyExclusive("text", "file")
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	useFile := cmd.Flag("file").Changed
	if !useFile && !cmd.Flag("text").Changed {
		return errors.New("one of --text or --file is required")
	}
	cfg, err := a.config()
	if err != nil {
		return err
	}
	format := cfg.Output.Format
	if cmd.Flag("format").Changed {
		format = opts.format
	}
	formatter, err := newFormatter(format)
	if err != nil {
		return err
	}

	session, _, err := a.session(cfg, opts.reportDir)
	if err != nil {
		return err
	}
	if cmd.Flag("length").Changed {
		length, err := perspective.ParseAnswerLength(opts.length)
		if err != nil {
			return err
		}
		session.SetAnswerLength(length)
	}
	if err := loadInput(cmd, session, opts, useFile, a.log); err != nil {
		return err
	}

	results, err := submit(cmd.Context(), session, cfg)
	if err != nil {
		return err
	}
	if err := formatter.Format(cmd.OutOrStdout(), results, session.AnswerLength()); err != nil {
		return err
	}

	if !opts.export {
		return nil
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Service.ExportTimeout)
	defer cancel()
	path, err := session.Export(ctx)
	if err != nil {
		a.log.Debug("export failed: %v", err)
		return errors.New(critique.UserMessage(err))
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", path)
	return nil
}

// loadInput moves the flag values into the session. PDF hints are advisory
// and only printed; the service decides what it accepts.
func loadInput(cmd *cobra.Command, session *critique.Session, opts analyzeOptions, useFile bool, log *logger.Logger) error {
	if useFile {
		session.SetMode(critique.ModeFile)
		if strings.TrimSpace(opts.file) == "" {
			return nil
		}
		session.SetFile(critique.LocalFile(opts.file))
		inspector, err := pdfcheck.New(1)
		if err != nil {
			return err
		}
		info, err := inspector.Inspect(opts.file)
		if err != nil {
			// The submission reports unreadable files itself.
			log.Debug("inspect %s: %v", opts.file, err)
			return nil
		}
		log.Debug("inspected %s: %s", opts.file, info.Hint())
		for _, warning := range info.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
		}
		return nil
	}

	text := opts.text
	if text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	session.SetMode(critique.ModeText)
	session.SetText(text)
	return nil
}

func submit(ctx context.Context, session *critique.Session, cfg *config.Config) (*critique.ResultSet, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Service.AnalyzeTimeout)
	defer cancel()
	results, err := session.Submit(ctx)
	if err != nil {
		return nil, errors.New(critique.UserMessage(err))
	}
	return results, nil
}

func describeFailures(results *critique.ResultSet) string {
	failed := results.Failed()
	if len(failed) == 0 {
		return ""
	}
	names := make([]string, 0, len(failed))
	for _, key := range failed {
		p, _ := perspective.Lookup(key)
		names = append(names, p.Label)
	}
	return strings.Join(names, ", ")
}
