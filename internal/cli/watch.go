package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/csheth/critic/internal/critique"
	"github.com/csheth/critic/internal/perspective"
	"github.com/csheth/critic/internal/watch"
)

type watchOptions struct {
	length   string
	format   string
	debounce time.Duration
	noStart  bool
}

func newWatchCommand(a *app) *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-analyze a file every time it is saved",
		Long: `Watch a text or PDF file and analyze it again after every save.

Files ending in .pdf are uploaded; anything else is sent as argument text.
Saves that happen while an analysis is running are folded into a single
follow-up run. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.length, "length", "l", "", "answer length: long or short (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "o", "", "output format: text, json, markdown (default from config)")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 0, "quiet period before a change is analyzed (default 300ms)")
	cmd.Flags().BoolVar(&opts.noStart, "no-initial", false, "wait for the first change instead of analyzing immediately")
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, path string, opts watchOptions) error {
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
	session, _, err := a.session(cfg, "")
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

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	watcher, err := watch.New(watch.Config{
		Path:          path,
		Session:       session,
		Debounce:      opts.debounce,
		Timeout:       cfg.Service.AnalyzeTimeout,
		SubmitOnStart: !opts.noStart,
		Logger:        a.log,
		OnOutcome: func(outcome watch.Outcome) {
			if outcome.Err != nil {
				fmt.Fprintf(errOut, "[%s] %s\n", outcome.Trigger, critique.UserMessage(outcome.Err))
				return
			}
			fmt.Fprintf(errOut, "[%s] analyzed in %s\n", outcome.Trigger, outcome.Duration.Round(time.Millisecond))
			if err := formatter.Format(out, outcome.Results, session.AnswerLength()); err != nil {
				a.log.Warn("format results: %v", err)
			}
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(errOut, "Watching %s (Ctrl+C to stop)\n", path)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
