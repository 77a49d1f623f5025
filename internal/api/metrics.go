package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/radionode/internal/api/models"
)

// metricsInterval paces the stream status snapshots.
var metricsInterval = time.Second

// registerMetricsRoutes registers the stream counter snapshot stream.
func (s *Server) registerMetricsRoutes() {
	if s.radio == nil {
		return
	}

	sse.Register(s.api, huma.Operation{
		OperationID: "metrics-stream",
		Method:      http.MethodGet,
		Path:        "/api/metrics",
		Summary:     "Metrics Server-Sent Events Stream",
		Description: "Periodic phase and counter snapshots for both stream directions",
		Tags:        []string{"metrics"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"stream-status": models.StreamListData{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		ticker := time.NewTicker(metricsInterval)
		defer ticker.Stop()

		for {
			list := models.StreamListData{}
			for _, dir := range directions {
				list.Streams = append(list.Streams, s.streamStatus(dir))
			}
			if err := send.Data(list); err != nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	})
}
