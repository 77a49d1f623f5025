package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/radionode/internal/api/models"
	"github.com/smazurov/radionode/internal/device"
	"github.com/smazurov/radionode/internal/metrics"
	"github.com/smazurov/radionode/internal/transport"
)

var directions = []transport.Direction{transport.Capture, transport.Playback}

func (s *Server) registerRadioRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-radio",
		Method:      http.MethodGet,
		Path:        "/api/radio",
		Summary:     "Radio",
		Description: "Get the radio's identity and per-direction capabilities",
		Tags:        []string{"radio"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.RadioResponse, error) {
		return &models.RadioResponse{
			Body: models.RadioData{
				Driver:     s.radio.DriverKey(),
				Hardware:   s.radio.HardwareKey(),
				ALSADevice: s.radio.ALSADevice(),
				Info:       s.radio.HardwareInfo(),
				Capture:    s.directionData(transport.Capture),
				Playback:   s.directionData(transport.Playback),
			},
		}, nil
	})
}

func (s *Server) directionData(dir transport.Direction) models.DirectionData {
	native, fullScale := s.radio.NativeStreamFormat(dir)
	gain := s.radio.GainRange(dir)

	var formats []string
	for _, f := range s.radio.StreamFormats(dir) {
		formats = append(formats, string(f))
	}
	var freq []models.RangeData
	for _, r := range s.radio.FrequencyRange(dir, device.FrequencyRF) {
		freq = append(freq, models.RangeData{Min: r.Min, Max: r.Max})
	}

	channels := s.radio.NumChannels(dir)
	return models.DirectionData{
		Enabled:      channels > 0,
		Channels:     channels,
		Formats:      formats,
		NativeFormat: string(native),
		FullScale:    fullScale,
		Antennas:     s.radio.ListAntennas(dir),
		SampleRate:   s.radio.SampleRate(dir),
		Frequency:    freq,
		Gain:         models.RangeData{Min: gain.Min, Max: gain.Max},
	}
}

func (s *Server) registerStreamRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-streams",
		Method:      http.MethodGet,
		Path:        "/api/streams",
		Summary:     "List Streams",
		Description: "Get phase and counters for both stream directions",
		Tags:        []string{"streams"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.StreamListResponse, error) {
		list := make([]models.StreamStatusData, 0, len(directions))
		for _, dir := range directions {
			list = append(list, s.streamStatus(dir))
		}
		return &models.StreamListResponse{Body: models.StreamListData{Streams: list}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-stream",
		Method:      http.MethodGet,
		Path:        "/api/streams/{direction}",
		Summary:     "Get Stream",
		Description: "Get phase and counters for one stream direction",
		Tags:        []string{"streams"},
		Security:    withAuth(),
		Errors:      []int{400, 401},
	}, func(_ context.Context, input *models.StreamDirectionInput) (*models.StreamStatusResponse, error) {
		dir, err := transport.ParseDirection(input.Direction)
		if err != nil {
			return nil, huma.Error400BadRequest("Invalid direction", err)
		}
		return &models.StreamStatusResponse{Body: s.streamStatus(dir)}, nil
	})
}

func (s *Server) streamStatus(dir transport.Direction) models.StreamStatusData {
	data := models.StreamStatusData{
		Direction: dir.String(),
		Phase:     s.radio.StreamPhase(dir).String(),
	}
	if stats := metrics.GetStreamStats(dir.String()); stats != nil {
		data.Samples = stats.Samples
		data.XRuns = stats.XRuns
		data.Timeouts = stats.Timeouts
		data.Faults = stats.Faults
	}
	return data
}

func (s *Server) registerFrequencyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-frequency",
		Method:      http.MethodGet,
		Path:        "/api/frequency",
		Summary:     "Get Frequency",
		Description: "Get the current RF center frequency",
		Tags:        []string{"tuning"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(_ context.Context, _ *struct{}) (*models.FrequencyResponse, error) {
		hz, err := s.radio.Frequency(s.radio.TuningDirection(), 0, device.FrequencyRF)
		if err != nil {
			return nil, frequencyError(err)
		}
		return &models.FrequencyResponse{
			Body: models.FrequencyData{Name: device.FrequencyRF, FrequencyHz: hz},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-frequency",
		Method:      http.MethodPut,
		Path:        "/api/frequency",
		Summary:     "Set Frequency",
		Description: "Retune the RF center frequency",
		Tags:        []string{"tuning"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 500, 503},
	}, func(_ context.Context, input *models.FrequencyRequest) (*models.FrequencyResponse, error) {
		dir := s.radio.TuningDirection()
		if err := s.radio.SetFrequency(dir, 0, device.FrequencyRF, input.Body.FrequencyHz); err != nil {
			return nil, frequencyError(err)
		}
		hz, err := s.radio.Frequency(dir, 0, device.FrequencyRF)
		if err != nil {
			return nil, frequencyError(err)
		}
		return &models.FrequencyResponse{
			Body: models.FrequencyData{Name: device.FrequencyRF, FrequencyHz: hz},
		}, nil
	})
}

func frequencyError(err error) error {
	switch {
	case errors.Is(err, device.ErrFrequencyRange):
		return huma.Error400BadRequest("Frequency out of range", err)
	case errors.Is(err, device.ErrClosed):
		return huma.Error503ServiceUnavailable("Radio is closed", err)
	default:
		return huma.Error500InternalServerError("Tuning failed", err)
	}
}
