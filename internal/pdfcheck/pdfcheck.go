// Package pdfcheck inspects a PDF locally before it is uploaded so the
// front-ends can show advisory hints. Nothing here blocks a submission; the
// analysis service remains the authority on what it accepts.
package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ledongthuc/pdf"

	"github.com/csheth/critic/internal/critique"
)

const defaultCacheSize = 64

var magic = []byte("%PDF-")

// Advisory warnings.
const (
	WarnNotPDF      = "Only PDF files are supported."
	WarnTooLarge    = "PDF is larger than 10MB; the service may reject it."
	WarnUnparseable = "PDF could not be read locally; the service will try anyway."
	WarnNoText      = "No extractable text found; scanned PDFs usually fail."
)

// Info describes a file as seen from disk.
type Info struct {
	Path      string
	Size      int64
	IsPDF     bool
	Pages     int
	TextChars int
	Warnings  []string
}

// OK reports whether no advisory warning applies.
func (i Info) OK() bool {
	return len(i.Warnings) == 0
}

// Hint renders a one-line summary such as "3 pages · 1.2 MB · 4,812 characters".
func (i Info) Hint() string {
	parts := []string{}
	if i.IsPDF && i.Pages > 0 {
		unit := "pages"
		if i.Pages == 1 {
			unit = "page"
		}
		parts = append(parts, fmt.Sprintf("%d %s", i.Pages, unit))
	}
	parts = append(parts, FormatBytes(i.Size))
	if i.IsPDF && i.TextChars > 0 {
		parts = append(parts, critique.FormatCount(i.TextChars)+" characters")
	}
	return strings.Join(parts, " · ")
}

type cacheKey struct {
	path    string
	size    int64
	modTime time.Time
}

// Inspector caches inspections by path, size and modification time so the
// TUI can re-inspect on every keystroke without re-parsing.
type Inspector struct {
	cache    *lru.Cache[cacheKey, Info]
	maxBytes int64
}

// New returns an Inspector holding at most size entries.
func New(size int) (*Inspector, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[cacheKey, Info](size)
	if err != nil {
		return nil, err
	}
	return &Inspector{cache: cache, maxBytes: critique.MaxPDFBytes}, nil
}

// Inspect stats and parses path. Errors are reserved for files that cannot be
// stat'ed or opened at all; anything else becomes a warning on Info.
func (in *Inspector) Inspect(path string) (Info, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, errors.New("no file selected")
	}
	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	if stat.IsDir() {
		return Info{}, fmt.Errorf("%s is a directory", path)
	}

	key := cacheKey{path: path, size: stat.Size(), modTime: stat.ModTime()}
	if info, ok := in.cache.Get(key); ok {
		return info, nil
	}

	info := Info{Path: path, Size: stat.Size()}
	if stat.Size() > in.maxBytes {
		info.Warnings = append(info.Warnings, WarnTooLarge)
	}

	isPDF, err := hasMagic(path)
	if err != nil {
		return Info{}, err
	}
	info.IsPDF = isPDF
	if !isPDF {
		info.Warnings = append(info.Warnings, WarnNotPDF)
		in.cache.Add(key, info)
		return info, nil
	}

	pages, chars, err := extract(path)
	switch {
	case err != nil:
		info.Warnings = append(info.Warnings, WarnUnparseable)
	case chars == 0:
		info.Pages = pages
		info.Warnings = append(info.Warnings, WarnNoText)
	default:
		info.Pages = pages
		info.TextChars = chars
	}
	in.cache.Add(key, info)
	return info, nil
}

// Len is the number of cached inspections.
func (in *Inspector) Len() int {
	return in.cache.Len()
}

func hasMagic(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()
	head := make([]byte, len(magic))
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return bytes.Equal(head[:n], magic), nil
}

// extract counts pages and non-space characters. The pdf package panics on
// some malformed inputs.
func extract(path string) (pages, chars int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, chars, err = 0, 0, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	pages = reader.NumPage()
	content, err := reader.GetPlainText()
	if err != nil {
		return pages, 0, fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return pages, 0, err
	}
	for _, r := range builder.String() {
		if !unicode.IsSpace(r) {
			chars++
		}
	}
	return pages, chars, nil
}

// FormatBytes renders n as B, KB or MB with one decimal.
func FormatBytes(n int64) string {
	const unit = 1024
	switch {
	case n < unit:
		return fmt.Sprintf("%d B", n)
	case n < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(n)/unit)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(unit*unit))
	}
}
