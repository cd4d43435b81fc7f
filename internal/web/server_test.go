package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mashup/internal/metrics"
	"mashup/internal/request"
	"mashup/internal/runs"
	"mashup/internal/services"
	"mashup/internal/testsupport"
	"mashup/internal/workflow"
)

type runnerStub struct {
	mu       sync.Mutex
	err      error
	requests []request.Request
	uploads  map[string]string
	rejected []error
}

func (r *runnerStub) Run(_ context.Context, _ workflow.Origin, req request.Request) (workflow.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	for _, upload := range req.Uploads {
		rc, err := upload.Open()
		if err != nil {
			return workflow.Report{}, err
		}
		data, _ := io.ReadAll(rc)
		_ = rc.Close()
		if r.uploads == nil {
			r.uploads = map[string]string{}
		}
		r.uploads[upload.Name] = string(data)
	}
	return workflow.Report{RunID: "run-1"}, r.err
}

func (r *runnerStub) Rejected(_ workflow.Origin, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, err)
}

type historyStub struct {
	runs  []runs.Run
	limit int
}

func (h *historyStub) List(_ context.Context, limit int) ([]runs.Run, error) {
	h.limit = limit
	return h.runs, nil
}

func newTestServer(t *testing.T, runner *runnerStub, history RunLister) (*Server, *metrics.Metrics) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	m := metrics.New()
	srv, err := New(cfg, runner, history, m, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, m
}

func postForm(t *testing.T, handler http.Handler, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestIndexRendersForm(t *testing.T) {
	srv, _ := newTestServer(t, &runnerStub{}, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`name="singer"`, `name="songs"`, "at most 60", `max="50"`, ".webm"} {
		if !strings.Contains(body, want) {
			t.Fatalf("form missing %q", want)
		}
	}
}

func TestSubmitSearchSuccess(t *testing.T) {
	runner := &runnerStub{}
	srv, _ := newTestServer(t, runner, nil)

	w := postForm(t, srv.Handler(), url.Values{
		"singer":   {"Test Singer"},
		"videos":   {"12"},
		"duration": {"30"},
		"email":    {"fan@example.com"},
	})
	if w.Code != http.StatusOK || w.Body.String() != successMessage {
		t.Fatalf("unexpected response %d %q", w.Code, w.Body.String())
	}
	if len(runner.requests) != 1 {
		t.Fatalf("expected one run, got %d", len(runner.requests))
	}
	got := runner.requests[0]
	if got.Mode != request.ModeSearch || got.Performer != "Test Singer" || got.Count != 12 || got.Recipient != "fan@example.com" || got.Output != "mashup.mp3" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestSubmitValidationErrorIsPlainText(t *testing.T) {
	cases := []struct {
		name     string
		videos   string
		duration string
		want     string
	}{
		{"duration over cap", "12", "61", "Error: Maximum duration allowed is 60 seconds."},
		{"videos over cap", "100000", "30", "Error: Maximum number of videos allowed is 50."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &runnerStub{}
			srv, _ := newTestServer(t, runner, nil)

			w := postForm(t, srv.Handler(), url.Values{
				"singer":   {"Test Singer"},
				"videos":   {tc.videos},
				"duration": {tc.duration},
				"email":    {"fan@example.com"},
			})
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if got := w.Body.String(); got != tc.want {
				t.Fatalf("unexpected body %q", got)
			}
			if len(runner.requests) != 0 || len(runner.rejected) != 1 {
				t.Fatalf("validation failures must not start a run: %d runs, %d rejected", len(runner.requests), len(runner.rejected))
			}
		})
	}
}

func TestSubmitUploads(t *testing.T) {
	runner := &runnerStub{}
	srv, _ := newTestServer(t, runner, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("duration", "25")
	_ = mw.WriteField("email", "fan@example.com")
	for name, content := range map[string]string{"one.mp3": "first", "two.wav": "second"} {
		part, err := mw.CreateFormFile("songs", name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected response %d %q", w.Code, w.Body.String())
	}
	if runner.requests[0].Mode != request.ModeUpload {
		t.Fatalf("expected upload mode, got %s", runner.requests[0].Mode)
	}
	want := map[string]string{"one.mp3": "first", "two.wav": "second"}
	if diff := cmp.Diff(want, runner.uploads); diff != "" {
		t.Fatalf("uploads mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitRunFailure(t *testing.T) {
	runner := &runnerStub{err: services.Fail(services.ErrNoAudioProcessed, "No audio files were processed.", nil)}
	srv, m := newTestServer(t, runner, nil)

	w := postForm(t, srv.Handler(), url.Values{
		"singer":   {"Test Singer"},
		"videos":   {"12"},
		"duration": {"30"},
		"email":    {"fan@example.com"},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if got := w.Body.String(); got != "Error: No audio files were processed." {
		t.Fatalf("unexpected body %q", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodPost, "/", "422")); got != 1 {
		t.Fatalf("http_requests{POST,/,422} = %v", got)
	}
}

func TestRunsEndpoint(t *testing.T) {
	finished := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)
	history := &historyStub{runs: []runs.Run{{
		ID:          "abc",
		Origin:      "web",
		Mode:        "search",
		Performer:   "Test Singer",
		Count:       12,
		TrimSeconds: 25,
		Status:      runs.StatusSucceeded,
		Clips:       11,
		Duration:    275 * time.Second,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt:  &finished,
	}}}
	srv, _ := newTestServer(t, &runnerStub{}, history)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if history.limit != 5 {
		t.Fatalf("limit not forwarded: %d", history.limit)
	}
	var resp RunsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Runs) != 1 || resp.Runs[0].ID != "abc" || resp.Runs[0].DurationSecs != 275 || resp.Runs[0].FinishedAt == nil {
		t.Fatalf("unexpected payload %+v", resp)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs?limit=zero", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", w.Code)
	}
}

func TestRunsEndpointRequiresToken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Web.APIToken = "secret"
	srv, err := New(cfg, &runnerStub{}, &historyStub{}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, &runnerStub{}, nil)
	handler := srv.Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "mashup_http_requests_total") {
		t.Fatalf("metrics endpoint missing http counter: %d", w.Code)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv, _ := newTestServer(t, &runnerStub{}, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestStartAndStop(t *testing.T) {
	srv, _ := newTestServer(t, &runnerStub{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	srv.Stop()
	if _, err := http.Get("http://" + srv.Addr() + "/healthz"); err == nil {
		t.Fatal("expected request to fail after Stop")
	}
}
