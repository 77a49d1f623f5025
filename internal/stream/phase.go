package stream

import "github.com/smazurov/radionode/internal/transport"

// Phase is the session lifecycle state.
type Phase int32

const (
	// PhaseClosed has no transport handle.
	PhaseClosed Phase = iota
	// PhaseConfigured has a handle, converter and buffer but is not transferring.
	PhaseConfigured
	// PhaseRunning is actively transferring.
	PhaseRunning
	// PhaseRecovering follows a failed transfer until recovery resolves it.
	PhaseRecovering
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseConfigured:
		return "configured"
	case PhaseRunning:
		return "running"
	case PhaseRecovering:
		return "recovering"
	default:
		return "unknown"
	}
}

// step is what a transfer call does next for a given transport state.
type step int

const (
	// stepStartup completes setup lazily: prepare (if needed) then start for
	// capture, prepare only for playback.
	stepStartup step = iota
	// stepWait blocks for readiness, then transfers.
	stepWait
	// stepTransfer transfers without waiting. Used for prepared playback,
	// which autostarts once the ring fills.
	stepTransfer
	// stepRecover runs recovery for an xrun raised between calls.
	stepRecover
	// stepInvalid reports a state that never occurs mid-stream.
	stepInvalid
)

// next is the transition function driving Read and Write.
func next(dir transport.Direction, st transport.State) step {
	switch st {
	case transport.StateOpen, transport.StateSetup:
		return stepStartup
	case transport.StatePrepared:
		if dir == transport.Playback {
			return stepTransfer
		}
		return stepStartup
	case transport.StateRunning:
		return stepWait
	case transport.StateXRun:
		return stepRecover
	default:
		return stepInvalid
	}
}
