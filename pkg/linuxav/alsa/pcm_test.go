//go:build linux

package alsa

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

// devNullPCM returns a PCM whose control ioctls fail with ENOTTY.
func devNullPCM(t *testing.T) *PCM {
	t.Helper()
	f, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	p := &PCM{file: f, stream: StreamCapture}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPCMRecover(t *testing.T) {
	boom := errors.New("transport: xrun")

	tests := []struct {
		name      string
		err       error
		wantNil   bool
		wantSame  bool
		wantXRuns int64
		wantMsg   string
	}{
		{name: "interrupted", err: unix.EINTR, wantNil: true},
		{name: "bare sentinel passes through", err: boom, wantSame: true},
		{name: "EBADFD passes through", err: fmt.Errorf("ioctl READI failed: %w", unix.EBADFD), wantSame: true},
		{name: "wrapped EPIPE prepares", err: fmt.Errorf("%w: %w", boom, unix.EPIPE), wantXRuns: 1, wantMsg: "cannot recover from xrun"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := devNullPCM(t)
			got := p.Recover(tt.err)
			switch {
			case tt.wantNil:
				if got != nil {
					t.Errorf("Recover() = %v, want nil", got)
				}
			case tt.wantSame:
				if got != tt.err {
					t.Errorf("Recover() = %v, want the cause unchanged", got)
				}
			default:
				// PREPARE on /dev/null fails, which proves the xrun branch ran.
				if got == nil || !strings.Contains(got.Error(), tt.wantMsg) {
					t.Errorf("Recover() = %v, want %q", got, tt.wantMsg)
				}
			}
			if x := p.Xruns(); x != tt.wantXRuns {
				t.Errorf("Xruns() = %d, want %d", x, tt.wantXRuns)
			}
		})
	}
}

func TestPCMClosed(t *testing.T) {
	p := devNullPCM(t)
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Recover(unix.EPIPE); !errors.Is(err, ErrClosed) {
		t.Errorf("Recover() after Close = %v, want ErrClosed", err)
	}
	if st := p.State(); st != StateDisconnected {
		t.Errorf("State() after Close = %s, want DISCONNECTED", st)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
