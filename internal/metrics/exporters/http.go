// Package exporters serves the process metrics over HTTP.
package exporters

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	maxScrapesInFlight = 4
	scrapeTimeout      = 10 * time.Second
)

// HTTPHandler serves the default registry in text or OpenMetrics format.
// Collection errors are logged and the remaining metrics are still served.
// Scrapes beyond maxScrapesInFlight get 503.
func HTTPHandler(logger *slog.Logger) http.Handler {
	opts := promhttp.HandlerOpts{
		ErrorHandling:       promhttp.ContinueOnError,
		EnableOpenMetrics:   true,
		MaxRequestsInFlight: maxScrapesInFlight,
		Timeout:             scrapeTimeout,
	}
	if logger != nil {
		opts.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelError)
	}
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, opts),
	)
}
