package exporters

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smazurov/radionode/internal/metrics"
)

func TestHTTPHandler(t *testing.T) {
	metrics.AddStreamSamples("http-test", 256)
	defer metrics.DeleteStreamMetrics("http-test")

	tests := []struct {
		name        string
		accept      string
		contentType string
	}{
		{"text", "", "text/plain"},
		{"openmetrics", "application/openmetrics-text; version=1.0.0", "application/openmetrics-text"},
	}
	// Built twice to check the self-instrumentation collectors are reused.
	for _, handler := range []http.Handler{HTTPHandler(nil), HTTPHandler(nil)} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
				if tt.accept != "" {
					req.Header.Set("Accept", tt.accept)
				}
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)

				if w.Code != http.StatusOK {
					t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
				}
				if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
					t.Errorf("Content-Type = %q, want prefix %q", ct, tt.contentType)
				}
				body := w.Body.String()
				if !strings.Contains(body, "radionode_stream_samples_total") {
					t.Error("expected stream sample counter in response")
				}
				if !strings.Contains(body, "promhttp_metric_handler_requests_total") {
					t.Error("expected scrape instrumentation in response")
				}
			})
		}
	}
}
