package tuning

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestNewFallsBackToNoop(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "missing", "frequency"), nil)
	if _, ok := a.(*noop); !ok {
		t.Fatalf("New() = %T, want *noop", a)
	}
	if err := a.WriteFrequency(7_100_000); err != nil {
		t.Errorf("WriteFrequency() error = %v", err)
	}
}

func TestSysfsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frequency")
	a := New(path, nil)
	if _, ok := a.(*sysfs); !ok {
		t.Fatalf("New() = %T, want *sysfs", a)
	}

	tests := []struct {
		hz   int64
		want string
	}{
		{hz: 14_074_000, want: "14074000"},
		{hz: 7_000, want: "7000"},
		{hz: 0, want: "0"},
	}
	for _, tt := range tests {
		if err := a.WriteFrequency(tt.hz); err != nil {
			t.Fatalf("WriteFrequency(%d) error = %v", tt.hz, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != tt.want {
			t.Errorf("file = %q, want %q", data, tt.want)
		}
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := a.WriteFrequency(1); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteFrequency() after Close error = %v, want ErrClosed", err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	_ = m.WriteFrequency(1)
	_ = m.WriteFrequency(2)

	boom := errors.New("bus error")
	m.FailWith(boom)
	if err := m.WriteFrequency(3); !errors.Is(err, boom) {
		t.Errorf("WriteFrequency() error = %v, want injected error", err)
	}
	if got := m.Writes(); !slices.Equal(got, []int64{1, 2}) {
		t.Errorf("Writes() = %v", got)
	}

	_ = m.Close()
	if !m.Closed() {
		t.Error("Closed() = false after Close")
	}
}
