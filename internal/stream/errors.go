package stream

import "errors"

// Transfer outcomes. Read and Write return these directly or wrapped around
// the transport cause, so callers classify with errors.Is.
var (
	// ErrTimeout means the ring was not ready within the caller's timeout.
	// Retry with the same arguments.
	ErrTimeout = errors.New("stream: timeout")

	// ErrOverflow means capture data was lost and the ring was recovered.
	// No samples were returned; call again.
	ErrOverflow = errors.New("stream: overflow")
	// ErrUnderflow means playback ran dry and the ring was recovered.
	ErrUnderflow = errors.New("stream: underflow")

	// ErrStreamClosed means the transport was torn down. Treat it as end of stream.
	ErrStreamClosed = errors.New("stream: closed")
	// ErrTransportFault means recovery failed. The stream must be closed.
	ErrTransportFault = errors.New("stream: transport fault")
	// ErrInvalidState means the transport reported a state a running stream
	// never expects, such as suspended or disconnected.
	ErrInvalidState = errors.New("stream: invalid transport state")

	// ErrDirection is returned by Read on a playback session and Write on a
	// capture session.
	ErrDirection = errors.New("stream: wrong direction")
)

// IsTransient reports whether err is an xrun the session already recovered from.
func IsTransient(err error) bool {
	return errors.Is(err, ErrOverflow) || errors.Is(err, ErrUnderflow)
}

// IsFatal reports whether err requires closing the stream.
func IsFatal(err error) bool {
	return errors.Is(err, ErrStreamClosed) ||
		errors.Is(err, ErrTransportFault) ||
		errors.Is(err, ErrInvalidState)
}
