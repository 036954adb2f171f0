package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wanghonghua666/AI-CALENDAR/internal/app"
	"github.com/wanghonghua666/AI-CALENDAR/internal/config"
	"github.com/wanghonghua666/AI-CALENDAR/internal/models"
	"github.com/wanghonghua666/AI-CALENDAR/internal/observability/metrics"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/proposal"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/stt"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/stt/mock"
)

var refDate = time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, started bool) *app.Application {
	t.Helper()
	cfg := config.Load()
	cfg.Kafka.Enabled = false
	cfg.PostProcess.TablesFile = ""
	cfg.PostProcess.Timezone = "UTC"

	a, err := app.New(context.Background(), cfg,
		app.WithMetrics(metrics.NewMetrics(prometheus.NewRegistry())),
		app.WithClock(func() time.Time { return refDate }),
		app.WithRecognizer(mock.New(stt.Transcript{Text: "明天下午三点开会", Confidence: 0.9})),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started {
		_ = a.Start()
	}
	return a
}

func do(t *testing.T, h http.Handler, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeProcessed(t *testing.T, rec *httptest.ResponseRecorder) models.TranscriptProcessed {
	t.Helper()
	var out models.TranscriptProcessed
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	router := NewRouter(newTestApp(t, false))

	if rec := do(t, router, http.MethodGet, "/v1/liveness", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("expected liveness 200, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/v1/readiness", nil, nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected readiness 503 before start, got %d", rec.Code)
	}

	router = NewRouter(newTestApp(t, true))
	if rec := do(t, router, http.MethodGet, "/v1/readiness", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("expected readiness 200 after start, got %d", rec.Code)
	}
}

func TestProcess(t *testing.T) {
	router := NewRouter(newTestApp(t, true))

	body := []byte(`{"text":"明天3点开会","confidence":0.8,"referenceDate":"2025-06-10","interactionId":"int-1","tenantId":"t-1"}`)
	rec := do(t, router, http.MethodPost, "/v1/speech/process", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	out := decodeProcessed(t, rec)
	if out.InteractionID != "int-1" || out.TenantID != "t-1" {
		t.Errorf("unexpected ids: %+v", out)
	}
	if out.Result == nil || out.Result.EventInfo == nil {
		t.Fatalf("expected event info, got %s", rec.Body.String())
	}
	if out.Result.EventInfo.Date != "2025-06-11" || out.Result.EventInfo.StartTime != "03:00" {
		t.Errorf("unexpected event: %+v", out.Result.EventInfo)
	}
	if out.ProposalID == "" {
		t.Error("expected proposal id")
	}
	if !strings.Contains(rec.Body.String(), `"correctedText"`) {
		t.Errorf("expected camelCase wire fields, got %s", rec.Body.String())
	}
}

func TestProcess_ReferenceDate(t *testing.T) {
	router := NewRouter(newTestApp(t, true))

	body := []byte(`{"text":"后天下午3点","confidence":0.8,"referenceDate":"2025-12-31T10:00:00Z"}`)
	rec := do(t, router, http.MethodPost, "/v1/speech/process", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeProcessed(t, rec)
	if out.Result.EventInfo == nil || out.Result.EventInfo.Date != "2026-01-02" {
		t.Errorf("expected event on 2026-01-02, got %+v", out.Result.EventInfo)
	}
}

func TestProcess_BadRequests(t *testing.T) {
	router := NewRouter(newTestApp(t, true))

	tests := []struct {
		name string
		body string
	}{
		{"not json", `hello`},
		{"unknown field", `{"text":"x","foo":1}`},
		{"bad reference date", `{"text":"x","referenceDate":"tomorrow"}`},
		{"too long", `{"text":"` + strings.Repeat("会", 2001) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/v1/speech/process", []byte(tt.body), nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			var e errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil || e.Error == "" {
				t.Errorf("expected error body, got %s", rec.Body.String())
			}
		})
	}
}

func TestRecognize(t *testing.T) {
	router := NewRouter(newTestApp(t, true))

	rec := do(t, router, http.MethodPost, "/v1/speech/recognize", []byte{1, 2, 3, 4},
		map[string]string{"X-Interaction-Id": "int-9", "X-Tenant-Id": "t-9"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeProcessed(t, rec)
	if out.InteractionID != "int-9" {
		t.Errorf("expected interaction int-9, got %s", out.InteractionID)
	}
	if out.Result.EventInfo == nil || out.Result.EventInfo.StartTime != "15:00" {
		t.Errorf("expected 15:00 event, got %+v", out.Result.EventInfo)
	}

	if rec := do(t, router, http.MethodPost, "/v1/speech/recognize", nil, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty audio, got %d", rec.Code)
	}
}

func TestRecognize_AudioTooLarge(t *testing.T) {
	a := newTestApp(t, true)
	router := NewRouter(a)
	limit := a.Transcripts.Limits().MaxAudioBytes

	tests := []struct {
		name string
		size int64
	}{
		{"one byte over", limit + 1},
		{"far over", limit * 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/v1/speech/recognize", make([]byte, tt.size), nil)
			if rec.Code != http.StatusRequestEntityTooLarge {
				t.Errorf("expected 413, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestProposalLifecycle(t *testing.T) {
	router := NewRouter(newTestApp(t, true))

	rec := do(t, router, http.MethodPost, "/v1/speech/process", []byte(`{"text":"明天3点开会","confidence":0.8}`), nil)
	id := decodeProcessed(t, rec).ProposalID
	if id == "" {
		t.Fatal("expected proposal id")
	}

	rec = do(t, router, http.MethodGet, "/v1/proposals/"+id, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var p proposal.Proposal
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if p.ID != id || p.Event.Title != "会议" {
		t.Errorf("unexpected proposal: %+v", p)
	}
	if !strings.Contains(rec.Body.String(), `"state":"PENDING"`) {
		t.Errorf("expected PENDING state, got %s", rec.Body.String())
	}

	if rec := do(t, router, http.MethodPost, "/v1/proposals/"+id+"/confirm", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("expected confirm 200, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/v1/proposals/"+id+"/reject", nil, nil); rec.Code != http.StatusConflict {
		t.Errorf("expected reject after confirm 409, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/v1/proposals/missing/confirm", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
