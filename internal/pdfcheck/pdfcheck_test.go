package pdfcheck

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// minimalPDF assembles a single-page PDF that draws text with a base-14 font.
func minimalPDF(text string) []byte {
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newInspector(t *testing.T) *Inspector {
	t.Helper()
	in, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return in
}

func TestInspectReadablePDF(t *testing.T) {
	path := writeFile(t, "essay.pdf", minimalPDF("Renewable energy"))
	info, err := newInspector(t).Inspect(path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !info.IsPDF {
		t.Fatal("expected PDF")
	}
	if info.Pages != 1 {
		t.Fatalf("pages = %d, want 1", info.Pages)
	}
	if info.TextChars == 0 {
		t.Fatalf("expected extracted text, warnings=%v", info.Warnings)
	}
	if !info.OK() {
		t.Fatalf("unexpected warnings: %v", info.Warnings)
	}
}

func TestInspectRejectsNonPDF(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("just text"))
	info, err := newInspector(t).Inspect(path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.IsPDF || len(info.Warnings) != 1 || info.Warnings[0] != WarnNotPDF {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestInspectUnparseablePDF(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("%PDF-1.4\ngarbage"))
	info, err := newInspector(t).Inspect(path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !info.IsPDF {
		t.Fatal("magic bytes should mark the file as PDF")
	}
	if len(info.Warnings) != 1 || info.Warnings[0] != WarnUnparseable {
		t.Fatalf("warnings = %v", info.Warnings)
	}
}

func TestInspectTooLarge(t *testing.T) {
	path := writeFile(t, "big.pdf", []byte("%PDF-1.4\n"))
	in := newInspector(t)
	in.maxBytes = 4
	info, err := in.Inspect(path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if len(info.Warnings) == 0 || info.Warnings[0] != WarnTooLarge {
		t.Fatalf("warnings = %v", info.Warnings)
	}
}

func TestInspectErrors(t *testing.T) {
	in := newInspector(t)
	if _, err := in.Inspect(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := in.Inspect(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := in.Inspect(t.TempDir()); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestInspectCachesUntilFileChanges(t *testing.T) {
	path := writeFile(t, "doc.txt", []byte("plain"))
	in := newInspector(t)
	if _, err := in.Inspect(path); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if _, err := in.Inspect(path); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if in.Len() != 1 {
		t.Fatalf("cache len = %d, want 1", in.Len())
	}

	if err := os.WriteFile(path, minimalPDF("changed"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	info, err := in.Inspect(path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !info.IsPDF {
		t.Fatal("stale cache entry returned after file changed")
	}
	if in.Len() != 2 {
		t.Fatalf("cache len = %d, want 2", in.Len())
	}
}

func TestHint(t *testing.T) {
	info := Info{IsPDF: true, Pages: 3, Size: 1536, TextChars: 4812}
	if got, want := info.Hint(), "3 pages · 1.5 KB · 4,812 characters"; got != want {
		t.Fatalf("Hint() = %q, want %q", got, want)
	}
	if got := (Info{Size: 12}).Hint(); got != "12 B" {
		t.Fatalf("Hint() = %q", got)
	}
	if got := FormatBytes(10 << 20); got != "10.0 MB" {
		t.Fatalf("FormatBytes = %q", got)
	}
}
