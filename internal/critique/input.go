package critique

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/csheth/critic/internal/perspective"
)

// MaxTextChars is an advisory limit surfaced as a hint; the service enforces it.
const MaxTextChars = 100_000

// MaxPDFBytes is an advisory upload limit surfaced as a hint.
const MaxPDFBytes = 10 << 20

// Mode selects which input slot is active.
type Mode string

const (
	ModeText Mode = "text"
	ModeFile Mode = "file"
)

// FileHandle is an opaque binary payload with a display name.
type FileHandle interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// InputState is what the user has entered so far. Only the slot named by
// Mode is read; the other may hold stale data.
type InputState struct {
	Mode         Mode
	Text         string
	File         FileHandle
	AnswerLength perspective.AnswerLength
}

// NewInputState returns an empty text-mode input with the default answer length.
func NewInputState() InputState {
	return InputState{Mode: ModeText, AnswerLength: perspective.DefaultAnswerLength}
}

// Ready checks the submission precondition.
func (in InputState) Ready() error {
	switch in.Mode {
	case ModeFile:
		if in.File == nil {
			return &ValidationError{Message: MsgNotReady}
		}
	default:
		if strings.TrimSpace(in.Text) == "" {
			return &ValidationError{Message: MsgNotReady}
		}
	}
	return nil
}

// TextLengthHint renders the advisory character counter.
func (in InputState) TextLengthHint() string {
	return FormatCount(len([]rune(in.Text))) + " / " + FormatCount(MaxTextChars) + " characters"
}

// OverTextLimit reports whether the text exceeds the advisory cap.
func (in InputState) OverTextLimit() bool {
	return len([]rune(in.Text)) > MaxTextChars
}

// FormatCount groups digits in thousands, e.g. 100000 -> "100,000".
func FormatCount(n int) string {
	raw := strconv.Itoa(n)
	var b strings.Builder
	for i, c := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

type localFile struct {
	path string
}

// LocalFile refers to a file on disk; it is read when the request is encoded.
func LocalFile(path string) FileHandle {
	return localFile{path: path}
}

func (f localFile) Name() string {
	return filepath.Base(f.path)
}

func (f localFile) Path() string {
	return f.path
}

func (f localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

type memoryFile struct {
	name string
	data []byte
}

// MemoryFile wraps an in-memory payload.
func MemoryFile(name string, data []byte) FileHandle {
	return memoryFile{name: name, data: append([]byte(nil), data...)}
}

func (f memoryFile) Name() string {
	return f.name
}

func (f memoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
