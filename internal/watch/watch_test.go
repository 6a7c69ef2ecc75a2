package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/critique"
	"github.com/csheth/critic/internal/perspective"
)

type stubClient struct {
	mu    sync.Mutex
	calls int
	last  api.Request
	gate  chan struct{}
}

func (s *stubClient) Analyze(ctx context.Context, req api.Request) (*api.AnalyzeResponse, error) {
	s.mu.Lock()
	s.calls++
	s.last = req
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	analysis := map[string]api.PerspectivePayload{}
	for _, key := range perspective.Keys() {
		analysis[string(key)] = api.PerspectivePayload{Status: "ok", Content: "critique"}
	}
	return &api.AnalyzeResponse{Analysis: analysis}, nil
}

func (s *stubClient) GenerateReport(context.Context, api.ReportRequest) (*api.Report, error) {
	return &api.Report{Data: []byte("%PDF")}, nil
}

func (s *stubClient) Health(context.Context) error { return nil }

func (s *stubClient) Endpoint() string { return "stub" }

func (s *stubClient) snapshot() (int, api.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, s.last
}

func startWatcher(t *testing.T, cfg Config) (<-chan Outcome, context.CancelFunc) {
	t.Helper()
	outcomes := make(chan Outcome, 8)
	cfg.OnOutcome = func(out Outcome) { outcomes <- out }
	if cfg.Debounce == 0 {
		cfg.Debounce = 20 * time.Millisecond
	}
	w, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return outcomes, cancel
}

func waitOutcome(t *testing.T, outcomes <-chan Outcome) Outcome {
	t.Helper()
	select {
	case out := <-outcomes:
		return out
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for submission")
		return Outcome{}
	}
}

func TestSubmitOnStartReadsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "argument.txt")
	require.NoError(t, os.WriteFile(path, []byte("Cities should ban cars."), 0o644))
	client := &stubClient{}
	session := critique.NewSession(client)

	outcomes, _ := startWatcher(t, Config{Path: path, Session: session, SubmitOnStart: true})
	out := waitOutcome(t, outcomes)

	require.NoError(t, out.Err)
	assert.Equal(t, "start", out.Trigger)
	assert.Equal(t, 4, out.Results.Len())
	_, req := client.snapshot()
	assert.JSONEq(t, `{"text":"Cities should ban cars.","answer_length":"long"}`, string(req.Body))
}

func TestWriteTriggersSubmission(t *testing.T) {
	path := filepath.Join(t.TempDir(), "argument.md")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))
	client := &stubClient{}
	session := critique.NewSession(client)

	outcomes, _ := startWatcher(t, Config{Path: path, Session: session})
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("second draft"), 0o644))

	out := waitOutcome(t, outcomes)
	require.NoError(t, out.Err)
	assert.Equal(t, "change", out.Trigger)
	assert.Equal(t, "second draft", session.Input().Text)
}

func TestChangesDuringSubmissionCoalesce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "argument.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))
	gate := make(chan struct{})
	client := &stubClient{gate: gate}
	session := critique.NewSession(client)

	outcomes, _ := startWatcher(t, Config{Path: path, Session: session, SubmitOnStart: true})
	require.Eventually(t, func() bool {
		calls, _ := client.snapshot()
		return calls == 1
	}, 5*time.Second, 10*time.Millisecond)

	for _, v := range []string{"v2", "v3", "v4"} {
		require.NoError(t, os.WriteFile(path, []byte(v), 0o644))
		time.Sleep(60 * time.Millisecond)
	}
	close(gate)

	first := waitOutcome(t, outcomes)
	require.NoError(t, first.Err)
	second := waitOutcome(t, outcomes)
	require.NoError(t, second.Err)
	assert.Equal(t, "coalesced", second.Trigger)

	select {
	case extra := <-outcomes:
		t.Fatalf("unexpected extra submission: %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
	calls, req := client.snapshot()
	assert.Equal(t, 2, calls)
	assert.JSONEq(t, `{"text":"v4","answer_length":"long"}`, string(req.Body))
}

func TestPDFIsUploadedAsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "essay.PDF")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	client := &stubClient{}
	session := critique.NewSession(client)

	outcomes, _ := startWatcher(t, Config{Path: path, Session: session, SubmitOnStart: true})
	out := waitOutcome(t, outcomes)
	require.NoError(t, out.Err)
	assert.Equal(t, critique.ModeFile, session.Input().Mode)
	_, req := client.snapshot()
	assert.Contains(t, req.ContentType, "multipart/form-data")
}

func TestEmptyFileReportsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	client := &stubClient{}

	outcomes, _ := startWatcher(t, Config{Path: path, Session: critique.NewSession(client), SubmitOnStart: true})
	out := waitOutcome(t, outcomes)
	assert.Equal(t, critique.MsgNotReady, critique.UserMessage(out.Err))
	calls, _ := client.snapshot()
	assert.Zero(t, calls)
}

func TestNewValidates(t *testing.T) {
	session := critique.NewSession(&stubClient{})
	_, err := New(Config{Path: "", Session: session})
	assert.Error(t, err)
	_, err = New(Config{Path: filepath.Join(t.TempDir(), "missing.txt"), Session: session})
	assert.Error(t, err)
	_, err = New(Config{Path: t.TempDir(), Session: session})
	assert.Error(t, err)
	_, err = New(Config{Path: "x.txt"})
	assert.Error(t, err)
}
