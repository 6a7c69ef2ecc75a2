package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/critic/internal/critique"
)

type fakeService struct {
	analyzeCalls atomic.Int32
	reportCalls  atomic.Int32
	lastText     atomic.Value
	failAnalyze  string
}

func (s *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		s.analyzeCalls.Add(1)
		if s.failAnalyze != "" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, `{"detail":%q}`, s.failAnalyze)
			return
		}
		length := "long"
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var body struct {
				Text         string `json:"text"`
				AnswerLength string `json:"answer_length"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			s.lastText.Store(body.Text)
			length = body.AnswerLength
		} else {
			length = r.FormValue("answer_length")
			s.lastText.Store("<file>")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"analysis":{
			"science":{"status":"ok","content":"Physically plausible."},
			"economics":{"status":"ok","content":"Costs fall on commuters."},
			"sociology":{"status":"error","message":"Model overloaded"},
			"ethics":{"status":"ok","content":"Weighs liberty against health."}
		},"meta":{"answer_length":%q}}`, length)
	})
	mux.HandleFunc("/api/generate-pdf", func(w http.ResponseWriter, r *http.Request) {
		s.reportCalls.Add(1)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename=analysis.pdf")
		_, _ = w.Write([]byte("%PDF-1.4 report"))
	})
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

func startService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()
	svc := &fakeService{}
	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)
	return svc, srv
}

// writeConfig isolates a run from user config files.
func writeConfig(t *testing.T, baseURL, reportDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "critic.yaml")
	content := fmt.Sprintf("service:\n  base_url: %s\noutput:\n  report_dir: %s\n", baseURL, reportDir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand("1.2.3", "abc123", "2026-01-01")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestAnalyzeTextPrintsEveryPerspective(t *testing.T) {
	svc, srv := startService(t)
	cfg := writeConfig(t, srv.URL, t.TempDir())

	out, _, err := runCLI(t, "", "analyze", "-c", cfg, "--text", "Ban cars downtown.")
	require.NoError(t, err)

	for _, want := range []string{"Science", "Economics", "Sociology/Humanities", "Ethics",
		"Physically plausible.", "! Model overloaded", "unavailable: Sociology/Humanities", "Long Answer"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, int32(1), svc.analyzeCalls.Load())
	assert.Equal(t, "Ban cars downtown.", svc.lastText.Load())
	assert.Zero(t, svc.reportCalls.Load())
}

func TestAnalyzeJSONOutput(t *testing.T) {
	_, srv := startService(t)
	cfg := writeConfig(t, srv.URL, t.TempDir())

	out, _, err := runCLI(t, "", "analyze", "-c", cfg, "--text", "x", "--length", "short", "-o", "json")
	require.NoError(t, err)

	var decoded JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "short", decoded.AnswerLength)
	assert.Len(t, decoded.Analysis, 4)
	assert.Equal(t, "error", decoded.Analysis["sociology"].Status)
	assert.Equal(t, "Model overloaded", decoded.Analysis["sociology"].Message)
	assert.Equal(t, []string{"sociology"}, decoded.Failed)
	assert.NotEmpty(t, decoded.AttemptID)
}

func TestAnalyzeMarkdownOutput(t *testing.T) {
	_, srv := startService(t)
	cfg := writeConfig(t, srv.URL, t.TempDir())

	out, _, err := runCLI(t, "", "analyze", "-c", cfg, "--text", "x", "-o", "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Critical Thinking Analysis"))
	assert.Contains(t, out, "## Ethics")
	assert.Contains(t, out, "> **Unavailable:** Model overloaded")
}

func TestAnalyzeReadsStdin(t *testing.T) {
	svc, srv := startService(t)
	cfg := writeConfig(t, srv.URL, t.TempDir())

	_, _, err := runCLI(t, "Piped argument.\n", "analyze", "-c", cfg, "--text", "-")
	require.NoError(t, err)
	assert.Equal(t, "Piped argument.\n", svc.lastText.Load())
}

func TestAnalyzeBlankTextNeverCallsService(t *testing.T) {
	svc, srv := startService(t)
	cfg := writeConfig(t, srv.URL, t.TempDir())

	_, _, err := runCLI(t, "", "analyze", "-c", cfg, "--text", "   ")
	require.Error(t, err)
	assert.Equal(t, critique.MsgNotReady, err.Error())
	assert.Zero(t, svc.analyzeCalls.Load())
}

func TestAnalyzeRequiresInput(t *testing.T) {
	_, _, err := runCLI(t, "", "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--text or --file")

	_, _, err = runCLI(t, "", "analyze", "--text", "a", "--file", "b.pdf")
	require.Error(t, err)
}

func TestAnalyzeServerErrorUsesDetail(t *testing.T) {
	svc, srv := startService(t)
	svc.failAnalyze = "PDF parsing failed"
	cfg := writeConfig(t, srv.URL, t.TempDir())

	_, _, err := runCLI(t, "", "analyze", "-c", cfg, "--text", "x")
	require.Error(t, err)
	assert.Equal(t, "PDF parsing failed", err.Error())
}

func TestAnalyzeFileUploadsAndWarns(t *testing.T) {
	svc, srv := startService(t)
	cfg := writeConfig(t, srv.URL, t.TempDir())
	notPDF := filepath.Join(t.TempDir(), "essay.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("plain text"), 0o644))

	_, stderr, err := runCLI(t, "", "analyze", "-c", cfg, "--file", notPDF)
	require.NoError(t, err)
	assert.Equal(t, "<file>", svc.lastText.Load())
	assert.Contains(t, stderr, "Only PDF files are supported.")
}

func TestAnalyzeExportSavesReport(t *testing.T) {
	svc, srv := startService(t)
	dir := t.TempDir()
	cfg := writeConfig(t, srv.URL, dir)

	_, stderr, err := runCLI(t, "", "analyze", "-c", cfg, "--text", "x", "--export")
	require.NoError(t, err)

	want := filepath.Join(dir, critique.ReportFilename)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 report", string(data))
	assert.Contains(t, stderr, "Report saved to "+want)
	assert.Equal(t, int32(1), svc.reportCalls.Load())
}

func TestAnalyzeRejectsBadFlags(t *testing.T) {
	_, srv := startService(t)
	cfg := writeConfig(t, srv.URL, t.TempDir())

	_, _, err := runCLI(t, "", "analyze", "-c", cfg, "--text", "x", "--length", "medium")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid answer length")

	_, _, err = runCLI(t, "", "analyze", "-c", cfg, "--text", "x", "-o", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestBaseURLFlagOverridesConfig(t *testing.T) {
	svc, srv := startService(t)
	cfg := writeConfig(t, "http://127.0.0.1:1", t.TempDir())

	_, _, err := runCLI(t, "", "analyze", "-c", cfg, "--base-url", srv.URL, "--text", "x")
	require.NoError(t, err)
	assert.Equal(t, int32(1), svc.analyzeCalls.Load())
}

func TestHealth(t *testing.T) {
	_, srv := startService(t)
	cfg := writeConfig(t, srv.URL, t.TempDir())

	out, _, err := runCLI(t, "", "health", "-c", cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ok "+srv.URL+"/api"))

	down := writeConfig(t, "http://127.0.0.1:1", t.TempDir())
	_, _, err = runCLI(t, "", "health", "-c", down)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestPerspectives(t *testing.T) {
	out, _, err := runCLI(t, "", "perspectives", "-o", "json")
	require.NoError(t, err)

	var entries []struct {
		Key   string `json:"key"`
		Label string `json:"label"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 4)
	assert.Equal(t, "science", entries[0].Key)
	assert.Equal(t, "ethics", entries[3].Key)

	text, _, err := runCLI(t, "", "perspectives")
	require.NoError(t, err)
	assert.Contains(t, text, "Feasibility & uncertainty")
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "critic 1.2.3")
	assert.Contains(t, out, "commit: abc123")
}
