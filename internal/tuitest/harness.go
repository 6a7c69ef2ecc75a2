package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 120
	defaultHeight  = 32
	defaultTimeout = 10 * time.Second
	pollInterval   = 25 * time.Millisecond
)

// Step is one scripted interaction. WaitFor blocks until the plain-text
// output contains the given string; Delay then pauses before Input is written.
type Step struct {
	WaitFor string
	Delay   time.Duration
	Input   []byte
}

// Config configures how the harness spawns and drives the program.
type Config struct {
	Command          []string
	Dir              string
	Env              []string
	Width            int
	Height           int
	Steps            []Step
	Timeout          time.Duration
	AllowedExitCodes []int
	AllowInterrupt   bool
}

// Recording contains the raw terminal stream plus parsed frames.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// Frame is the output between two screen clears, with and without escapes.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

var (
	clearScreen = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	// CSI and OSC sequences plus the shift-in/out bytes used around line drawing.
	escapes = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|[\x0e\x0f]`)
)

func plainText(s string) string {
	return escapes.ReplaceAllString(s, "")
}

// splitFrames cuts the stream at every screen clear. Chunks without visible
// text are dropped, so indices count rendered screens only.
func splitFrames(raw []byte) []Frame {
	stream := strings.NewReplacer("\r", "", "\x00", "").Replace(string(raw))
	var frames []Frame
	for _, chunk := range clearScreen.Split(stream, -1) {
		chunk = strings.TrimPrefix(chunk, "\x1b[H")
		plain := tidyLines(plainText(chunk))
		if plain == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: chunk, Plain: plain})
	}
	return frames
}

func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// FinalFrame is the last rendered screen, if any.
func (r *Recording) FinalFrame() (Frame, bool) {
	return r.search(func(Frame) bool { return true })
}

// LastFrameContaining is the most recent screen whose text contains s.
func (r *Recording) LastFrameContaining(s string) (Frame, bool) {
	return r.search(func(f Frame) bool { return strings.Contains(f.Plain, s) })
}

// Contains reports whether s was ever on screen.
func (r *Recording) Contains(s string) bool {
	_, ok := r.LastFrameContaining(s)
	return ok
}

func (r *Recording) search(match func(Frame) bool) (Frame, bool) {
	if r == nil {
		return Frame{}, false
	}
	for i := len(r.Frames) - 1; i >= 0; i-- {
		if match(r.Frames[i]) {
			return r.Frames[i], true
		}
	}
	return Frame{}, false
}

// lockedBuffer lets the script poll output while the reader appends to it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func (b *lockedBuffer) plainContains(s string) bool {
	return strings.Contains(plainText(string(b.Bytes())), s)
}

// Run executes the command inside a PTY, replays the script, and captures
// every byte written to the terminal.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	width, height, timeout := withDefaults(cfg)
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(height), Cols: uint16(width)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	output := &lockedBuffer{}
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		responder := newTerminalResponder(ptmx)
		buf := make([]byte, 4096)
		for {
			n, readErr := ptmx.Read(buf)
			if n > 0 {
				chunk := buf[:n]
				responder.Process(chunk)
				_, _ = output.Write(chunk)
			}
			if readErr != nil {
				return
			}
		}
	}()

	start := time.Now()
	if err := replay(ctx, ptmx, output, cfg.Steps); err != nil {
		return nil, err
	}
	if err := waitExit(ctx, cmd, cfg); err != nil {
		return nil, err
	}

	// Closing the PTY lets the reader goroutine finish draining.
	_ = ptmx.Close()
	<-copyDone

	raw := output.Bytes()
	return &Recording{Raw: raw, Frames: splitFrames(raw), Duration: time.Since(start)}, nil
}

func withDefaults(cfg Config) (width, height int, timeout time.Duration) {
	width, height, timeout = cfg.Width, cfg.Height, cfg.Timeout
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return width, height, timeout
}

func replay(ctx context.Context, ptmx *os.File, output *lockedBuffer, steps []Step) error {
	for i, step := range steps {
		if step.WaitFor != "" {
			if err := waitForText(ctx, output, step.WaitFor); err != nil {
				return fmt.Errorf("tuitest: step %d: %w", i, err)
			}
		}
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("tuitest: context cancelled before script finished: %w", ctx.Err())
			case <-time.After(step.Delay):
			}
		}
		if len(step.Input) > 0 {
			if _, err := ptmx.Write(step.Input); err != nil {
				return fmt.Errorf("tuitest: write input: %w", err)
			}
		}
	}
	return nil
}

func waitForText(ctx context.Context, output *lockedBuffer, text string) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if output.plainContains(text) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %q: %w", text, ctx.Err())
		case <-ticker.C:
		}
	}
}

func waitExit(ctx context.Context, cmd *exec.Cmd, cfg Config) error {
	allowedCodes := map[int]struct{}{0: {}}
	for _, code := range cfg.AllowedExitCodes {
		allowedCodes[code] = struct{}{}
	}
	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
	}()

	select {
	case err := <-waitErr:
		if err == nil {
			return nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if _, ok := allowedCodes[exitErr.ExitCode()]; ok {
				return nil
			}
		}
		if cfg.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt") {
			return nil
		}
		return fmt.Errorf("tuitest: program exited with error: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

// Key sequences as a terminal would send them.
var (
	KeyEnter = []byte{'\r'}
	KeyTab   = []byte{'\t'}
	KeyEsc   = []byte{27}
	KeyRight = []byte("\x1b[C")
	KeyLeft  = []byte("\x1b[D")
	KeyCtrlC = []byte{3}
	KeyCtrlL = []byte{12}
	KeyCtrlO = []byte{15}
	KeyCtrlR = []byte{18}
	KeyCtrlS = []byte{19}
	KeyCtrlX = []byte{24}
)
