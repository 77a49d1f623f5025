package nats

import (
	"encoding/json"
	"fmt"
)

// SubjectPrefix roots every subject.
const SubjectPrefix = "radionode"

// SubjectStream returns the subject for a per-direction stream event kind.
func SubjectStream(node, direction, kind string) string {
	return fmt.Sprintf("%s.%s.stream.%s.%s", SubjectPrefix, node, direction, kind)
}

// SubjectFrequency returns the subject for frequency changes.
func SubjectFrequency(node string) string {
	return fmt.Sprintf("%s.%s.tuner.frequency", SubjectPrefix, node)
}

// SubjectTune returns the request subject for remote tuning.
func SubjectTune(node string) string {
	return fmt.Sprintf("%s.%s.control.tune", SubjectPrefix, node)
}

// StateMessage carries a stream phase change.
type StateMessage struct {
	Node      string `json:"node"`
	Direction string `json:"direction"`
	From      string `json:"from"`
	Phase     string `json:"phase"`
	Timestamp string `json:"timestamp"`
}

// XRunMessage carries a recovered overrun or underrun.
type XRunMessage struct {
	Node      string `json:"node"`
	Direction string `json:"direction"`
	Kind      string `json:"kind"`
	Cause     string `json:"cause,omitempty"`
	Timestamp string `json:"timestamp"`
}

// FaultMessage carries a fatal stream error.
type FaultMessage struct {
	Node      string `json:"node"`
	Direction string `json:"direction"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// FrequencyMessage carries a tuner frequency change.
type FrequencyMessage struct {
	Node        string  `json:"node"`
	Name        string  `json:"name"`
	FrequencyHz float64 `json:"frequency_hz"`
	Timestamp   string  `json:"timestamp"`
}

// TuneRequest asks the node to retune.
type TuneRequest struct {
	FrequencyHz float64 `json:"frequency_hz"`
}

// TuneReply answers a TuneRequest.
type TuneReply struct {
	OK          bool    `json:"ok"`
	FrequencyHz float64 `json:"frequency_hz"`
	Error       string  `json:"error,omitempty"`
}

// UnmarshalTuneRequest decodes and validates a tune request.
func UnmarshalTuneRequest(data []byte) (TuneRequest, error) {
	var r TuneRequest
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("decode tune request: %w", err)
	}
	if r.FrequencyHz < 0 {
		return r, fmt.Errorf("decode tune request: negative frequency %v", r.FrequencyHz)
	}
	return r, nil
}
