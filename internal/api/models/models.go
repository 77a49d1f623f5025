// Package models holds the request and response bodies of the HTTP API.
package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit SHA"`
	BuildDate string `json:"build_date" example:"2024-12-15 14:30" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"a1b2c3d4" doc:"Unique build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go compiler version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Compiler used"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Platform"`
}

type VersionResponse struct {
	Body VersionData
}

// RangeData is a closed numeric interval.
type RangeData struct {
	Min float64 `json:"min" example:"0" doc:"Lower bound"`
	Max float64 `json:"max" example:"45000000" doc:"Upper bound"`
}

// DirectionData describes one stream direction of the radio.
type DirectionData struct {
	Enabled      bool        `json:"enabled" example:"true" doc:"Whether the hardware supports this direction"`
	Channels     int         `json:"channels" example:"1" doc:"Number of channels"`
	Formats      []string    `json:"formats" example:"[\"CF32\",\"CS16\",\"CS32\"]" doc:"Supported caller-side sample formats"`
	NativeFormat string      `json:"native_format" example:"CS32" doc:"Hardware sample format"`
	FullScale    float64     `json:"full_scale" example:"2147483648" doc:"Full scale of the native format"`
	Antennas     []string    `json:"antennas" example:"[\"RX\"]" doc:"Antenna names"`
	SampleRate   float64     `json:"sample_rate" example:"89286" doc:"Fixed sample rate in Hz"`
	Frequency    []RangeData `json:"frequency_range" doc:"Tunable RF range"`
	Gain         RangeData   `json:"gain_range" doc:"Overall gain range"`
}

// RadioData describes the radio's identity and capabilities.
type RadioData struct {
	Driver     string            `json:"driver" example:"TujaSDRDriver" doc:"Driver key"`
	Hardware   string            `json:"hardware" example:"TujaSDRHW" doc:"Hardware key"`
	ALSADevice string            `json:"alsa_device" example:"hw:CARD=tujasdr,DEV=0" doc:"ALSA device name"`
	Info       map[string]string `json:"info" doc:"Hardware information"`
	Capture    DirectionData     `json:"capture" doc:"Capture direction"`
	Playback   DirectionData     `json:"playback" doc:"Playback direction"`
}

type RadioResponse struct {
	Body RadioData
}

// StreamStatusData reports the state and counters of one direction.
type StreamStatusData struct {
	Direction string `json:"direction" example:"capture" doc:"Stream direction"`
	Phase     string `json:"phase" example:"running" doc:"Session phase (closed, configured, running, recovering)"`
	Samples   uint64 `json:"samples" example:"1048576" doc:"Sample pairs transferred"`
	XRuns     uint64 `json:"xruns" example:"0" doc:"Recovered overruns or underruns"`
	Timeouts  uint64 `json:"timeouts" example:"0" doc:"Transfers that timed out"`
	Faults    uint64 `json:"faults" example:"0" doc:"Fatal stream errors"`
}

type StreamListData struct {
	Streams []StreamStatusData `json:"streams" doc:"Status per direction"`
}

type StreamListResponse struct {
	Body StreamListData
}

type StreamStatusResponse struct {
	Body StreamStatusData
}

type StreamDirectionInput struct {
	Direction string `path:"direction" enum:"capture,playback" example:"capture" doc:"Stream direction"`
}

// FrequencyData is the current RF center frequency.
type FrequencyData struct {
	Name        string  `json:"name" example:"RF" doc:"Tuning element"`
	FrequencyHz float64 `json:"frequency_hz" example:"7074000" doc:"Center frequency in Hz"`
}

type FrequencyResponse struct {
	Body FrequencyData
}

type FrequencyRequest struct {
	Body struct {
		FrequencyHz float64 `json:"frequency_hz" minimum:"0" example:"14074000" doc:"Center frequency in Hz"`
	}
}
