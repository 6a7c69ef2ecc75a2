package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/critique"
	"github.com/csheth/critic/internal/perspective"
)

type fakeClient struct {
	mu        sync.Mutex
	analyzeFn func() (*api.AnalyzeResponse, error)
	reportFn  func() (*api.Report, error)
	healthErr error
	analyzed  int
	reported  int
}

func (f *fakeClient) Analyze(ctx context.Context, req api.Request) (*api.AnalyzeResponse, error) {
	f.mu.Lock()
	f.analyzed++
	fn := f.analyzeFn
	f.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return okResponse(), nil
}

func (f *fakeClient) GenerateReport(ctx context.Context, req api.ReportRequest) (*api.Report, error) {
	f.mu.Lock()
	f.reported++
	fn := f.reportFn
	f.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return &api.Report{Data: []byte("%PDF-1.4")}, nil
}

func (f *fakeClient) Health(context.Context) error { return f.healthErr }

func (f *fakeClient) Endpoint() string { return "http://fake/api" }

type fakeSaver struct{}

func (fakeSaver) Save(name string, data []byte) (string, error) {
	return "/tmp/reports/" + name, nil
}

func okResponse() *api.AnalyzeResponse {
	analysis := map[string]api.PerspectivePayload{}
	for _, key := range perspective.Keys() {
		analysis[string(key)] = api.PerspectivePayload{Status: "ok", Content: fmt.Sprintf("%s critique body", key)}
	}
	return &api.AnalyzeResponse{Analysis: analysis}
}

func newTestModel(t *testing.T) (*model, *fakeClient) {
	t.Helper()
	client := &fakeClient{}
	session := critique.NewSession(client, critique.WithSaver(fakeSaver{}))
	teaModel, ok := New(Config{Session: session}).(*model)
	if !ok {
		t.Fatalf("expected *model, got %T", teaModel)
	}
	return teaModel, client
}

func TestAnalyzeJobWrapsOutcome(t *testing.T) {
	m, client := newTestModel(t)
	m.session.SetText("Argument")
	sub, err := m.session.BeginSubmit()
	if err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	msg, err := analyzeJob(sub, 0)(context.Background())
	if err != nil {
		t.Fatalf("analyze job: %v", err)
	}
	done, ok := msg.(analysisDoneMsg)
	if !ok {
		t.Fatalf("expected analysisDoneMsg, got %T", msg)
	}
	if done.attemptID != sub.ID || done.results.Len() != 4 {
		t.Fatalf("unexpected payload: %+v", done)
	}
	if client.analyzed != 1 {
		t.Fatalf("expected one analyze call, got %d", client.analyzed)
	}
}

func TestAnalyzeJobReportsFailure(t *testing.T) {
	m, client := newTestModel(t)
	client.analyzeFn = func() (*api.AnalyzeResponse, error) {
		return nil, &api.StatusError{StatusCode: 500, Detail: "PDF parsing failed"}
	}
	m.session.SetText("Argument")
	sub, err := m.session.BeginSubmit()
	if err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	msg, err := analyzeJob(sub, 0)(context.Background())
	if err == nil {
		t.Fatal("expected job error")
	}
	if got := critique.UserMessage(msg.(analysisDoneMsg).err); got != "PDF parsing failed" {
		t.Fatalf("message = %q", got)
	}
}

func TestExportJobSavesReport(t *testing.T) {
	m, _ := newTestModel(t)
	m.session.SetText("Argument")
	if _, err := m.session.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	job, err := m.session.BeginExport()
	if err != nil {
		t.Fatalf("BeginExport: %v", err)
	}
	msg, err := exportJob(job, 0)(context.Background())
	if err != nil {
		t.Fatalf("export job: %v", err)
	}
	if got := msg.(exportDoneMsg).path; got != "/tmp/reports/CriticalThinkingReport.pdf" {
		t.Fatalf("path = %q", got)
	}
}

func TestHealthJob(t *testing.T) {
	client := &fakeClient{healthErr: errors.New("connection refused")}
	msg, err := healthJob(client, 0)(context.Background())
	if err == nil {
		t.Fatal("expected health error")
	}
	if h := msg.(healthMsg); h.endpoint != "http://fake/api" {
		t.Fatalf("endpoint = %q", h.endpoint)
	}
}
