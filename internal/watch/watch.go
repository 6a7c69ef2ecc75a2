// Package watch re-submits a document to the analysis service whenever it
// changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/csheth/critic/internal/critique"
	"github.com/csheth/critic/internal/logger"
)

const defaultDebounce = 300 * time.Millisecond

// Outcome reports one finished submission.
type Outcome struct {
	Trigger  string
	Results  *critique.ResultSet
	Err      error
	Duration time.Duration
}

// Config describes what to watch and where to send results.
type Config struct {
	Path    string
	Session *critique.Session
	// Debounce collapses bursts of writes, e.g. an editor's save sequence.
	Debounce time.Duration
	// Timeout bounds each submission; zero means no extra bound.
	Timeout       time.Duration
	SubmitOnStart bool
	OnOutcome     func(Outcome)
	Logger        *logger.Logger
}

// Watcher drives a Session from file system events. At most one submission
// runs at a time; changes seen while it runs collapse into one follow-up.
type Watcher struct {
	path string
	cfg  Config
	log  *logger.Logger
}

func New(cfg Config) (*Watcher, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("empty file path")
	}
	if cfg.Session == nil {
		return nil, errors.New("watch requires a session")
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", cfg.Path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %s", cfg.Path)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", cfg.Path)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Watcher{path: abs, cfg: cfg, log: log.WithComponent("watch")}, nil
}

// Run blocks until ctx is cancelled or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := fsw.Close(); err != nil {
			w.log.Warn("failed to close watcher: %v", err)
		}
	}()
	// Editors often replace the file instead of writing it, so watch the
	// directory and filter by name.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.log.Info("watching %s", w.path)

	var (
		debounce  *time.Timer
		debounceC <-chan time.Time
		running   bool
		pending   bool
	)
	done := make(chan Outcome, 1)
	trigger := func(reason string) {
		if running {
			if !pending {
				w.log.Debug("change while submitting; queued one follow-up")
			}
			pending = true
			return
		}
		running = true
		go w.submit(ctx, reason, done)
	}
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
		if running {
			<-done
		}
	}()

	if w.cfg.SubmitOnStart {
		trigger("start")
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(w.cfg.Debounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(w.cfg.Debounce)
			}
			debounceC = debounce.C

		case <-debounceC:
			debounceC = nil
			trigger("change")

		case out := <-done:
			running = false
			w.emit(out)
			if pending {
				pending = false
				trigger("coalesced")
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.log.Warn("watcher error: %v", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *Watcher) submit(ctx context.Context, reason string, done chan<- Outcome) {
	started := time.Now()
	out := Outcome{Trigger: reason}
	defer func() {
		out.Duration = time.Since(started)
		done <- out
	}()

	if err := w.load(); err != nil {
		out.Err = err
		return
	}
	sub, err := w.cfg.Session.BeginSubmit()
	if err != nil {
		out.Err = err
		return
	}
	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}
	out.Results, out.Err = sub.Run(ctx)
}

// load copies the file into the session's input. PDFs are uploaded as files;
// anything else is read as argument text.
func (w *Watcher) load() error {
	if IsPDFPath(w.path) {
		w.cfg.Session.SetMode(critique.ModeFile)
		w.cfg.Session.SetFile(critique.LocalFile(w.path))
		return nil
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", w.path, err)
	}
	w.cfg.Session.SetMode(critique.ModeText)
	w.cfg.Session.SetText(string(data))
	return nil
}

func (w *Watcher) emit(out Outcome) {
	if out.Err != nil {
		w.log.Warn("%s submission failed: %s", out.Trigger, critique.UserMessage(out.Err))
	} else {
		w.log.Info("%s submission finished in %s", out.Trigger, out.Duration.Round(time.Millisecond))
	}
	if w.cfg.OnOutcome != nil {
		w.cfg.OnOutcome(out)
	}
}

// IsPDFPath reports whether path names a PDF by extension.
func IsPDFPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
