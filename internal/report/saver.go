package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirEnvVar     = "CRITIC_REPORT_DIR"
	partialSuffix = ".part"
)

// DirSaver writes exported reports into a single directory. A report is first
// written to a .part file and renamed into place, so readers never observe a
// half-written PDF.
type DirSaver struct {
	dir string
}

// NewDirSaver creates dir if needed. An empty dir falls back to
// $CRITIC_REPORT_DIR and then the working directory.
func NewDirSaver(dir string) (*DirSaver, error) {
	if strings.TrimSpace(dir) == "" {
		dir = os.Getenv(dirEnvVar)
	}
	if strings.TrimSpace(dir) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return &DirSaver{dir: dir}, nil
}

// Dir is where reports land.
func (s *DirSaver) Dir() string {
	return s.dir
}

// Save writes data under name and returns the final path. Existing files
// with the same name are replaced.
func (s *DirSaver) Save(name string, data []byte) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", errors.New("report name is empty")
	}
	if len(data) == 0 {
		return "", errors.New("report is empty")
	}
	finalPath := filepath.Join(s.dir, name)
	partialPath := finalPath + partialSuffix

	file, err := os.OpenFile(partialPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(partialPath)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(partialPath)
		return "", err
	}
	if err := os.Rename(partialPath, finalPath); err != nil {
		os.Remove(partialPath)
		return "", err
	}
	return finalPath, nil
}

// WriterSaver streams the report to an io.Writer, e.g. stdout for
// `critic analyze --export -`.
type WriterSaver struct {
	W     io.Writer
	Label string
}

func (s WriterSaver) Save(name string, data []byte) (string, error) {
	if s.W == nil {
		return "", errors.New("no writer configured")
	}
	if _, err := s.W.Write(data); err != nil {
		return "", err
	}
	if s.Label != "" {
		return s.Label, nil
	}
	return name, nil
}
