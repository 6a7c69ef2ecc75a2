package critique

import (
	"context"
	"fmt"
	"sync"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/perspective"
)

type fakeClient struct {
	mu           sync.Mutex
	analyzeCalls int
	reportCalls  int
	lastAnalyze  api.Request
	lastReport   api.ReportRequest

	analyze func(context.Context, api.Request) (*api.AnalyzeResponse, error)
	report  func(context.Context, api.ReportRequest) (*api.Report, error)
}

func (f *fakeClient) Analyze(ctx context.Context, req api.Request) (*api.AnalyzeResponse, error) {
	f.mu.Lock()
	f.analyzeCalls++
	f.lastAnalyze = req
	fn := f.analyze
	f.mu.Unlock()
	if fn == nil {
		return allOK(""), nil
	}
	return fn(ctx, req)
}

func (f *fakeClient) GenerateReport(ctx context.Context, req api.ReportRequest) (*api.Report, error) {
	f.mu.Lock()
	f.reportCalls++
	f.lastReport = req
	fn := f.report
	f.mu.Unlock()
	if fn == nil {
		return &api.Report{Data: []byte("%PDF-1.4"), ContentType: "application/pdf"}, nil
	}
	return fn(ctx, req)
}

func (f *fakeClient) Health(context.Context) error { return nil }

func (f *fakeClient) Endpoint() string { return "fake" }

func (f *fakeClient) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.analyzeCalls, f.reportCalls
}

type memSaver struct {
	mu    sync.Mutex
	saves []string
	data  [][]byte
	err   error
}

func (m *memSaver) Save(name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.saves = append(m.saves, name)
	m.data = append(m.data, append([]byte(nil), data...))
	return "/reports/" + name, nil
}

func (m *memSaver) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func allOK(length string) *api.AnalyzeResponse {
	analysis := map[string]api.PerspectivePayload{}
	for _, key := range perspective.Keys() {
		analysis[string(key)] = api.PerspectivePayload{Status: "ok", Content: fmt.Sprintf("## %s critique", key)}
	}
	resp := &api.AnalyzeResponse{Analysis: analysis}
	if length != "" {
		resp.Meta = &api.Meta{AnswerLength: length}
	}
	return resp
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("attempt-%d", n)
	}
}

func newTestSession(client api.Client, saver Saver) *Session {
	s := NewSession(client, WithSaver(saver))
	s.newID = sequentialIDs()
	return s
}
