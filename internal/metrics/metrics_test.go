package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/khata/internal/ledger"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/entries/{id}/edit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/entries/"+id+"/edit", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	body := scrape(t, m)
	assert.Contains(t, body, `khata_http_requests_total{code="404",route="/entries/{id}/edit"} 2`)
	assert.Contains(t, body, `khata_http_request_duration_seconds_count{route="/entries/{id}/edit"} 2`)
}

func TestObserver(t *testing.T) {
	m := New()
	m.ObserveSubmission(ledger.SubmissionCreated)
	m.ObserveSubmission(ledger.SubmissionCreated)
	m.ObserveSubmission(ledger.SubmissionInvalid)
	m.ObserveDeletion(ledger.DeletionDeclined)
	m.ObserveSize(3, 7)

	body := scrape(t, m)
	assert.Contains(t, body, `khata_ledger_submissions_total{result="created"} 2`)
	assert.Contains(t, body, `khata_ledger_submissions_total{result="invalid"} 1`)
	assert.Contains(t, body, `khata_ledger_deletions_total{result="declined"} 1`)
	assert.Contains(t, body, "khata_ledger_customers 3")
	assert.Contains(t, body, "khata_ledger_entries 7")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestMiddlewareKeepsFlusherAndDefaultStatus(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)

	flushed := false
	r.Post("/stream", func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok, "wrapped writer must implement http.Flusher")
		f.Flush()
		flushed = true
	})
	r.Get("/empty", func(http.ResponseWriter, *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/stream", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/empty", nil))

	assert.True(t, flushed)
	body := scrape(t, m)
	assert.Contains(t, body, `khata_http_requests_total{code="200",route="/stream"} 1`)
	assert.Contains(t, body, `khata_http_requests_total{code="200",route="/empty"} 1`)
}
