package mdns

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestNodeFromEntry(t *testing.T) {
	e := zeroconf.NewServiceEntry(`shack\ rx`, Service, "local.")
	e.HostName = "shack.local."
	e.Port = 8090
	e.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}
	e.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}
	e.Text = []string{"driver=TujaSDRDriver"}

	n := nodeFromEntry(e)
	if n.Instance != "shack rx" {
		t.Errorf("Instance = %q", n.Instance)
	}
	if n.Port != 8090 || n.Hostname != "shack.local." {
		t.Errorf("node = %+v", n)
	}
	if len(n.Addresses) != 2 || !n.Addresses[0].Equal(net.ParseIP("192.168.1.20")) {
		t.Errorf("Addresses = %v", n.Addresses)
	}
	e.Text[0] = "mutated"
	if n.TXT[0] != "driver=TujaSDRDriver" {
		t.Error("TXT should be copied")
	}
}

func TestPortFromAddr(t *testing.T) {
	tests := []struct {
		addr    string
		want    int
		wantErr bool
	}{
		{":8090", 8090, false},
		{"0.0.0.0:80", 80, false},
		{"[::]:9000", 9000, false},
		{"8090", 0, true},
		{":http", 0, true},
		{":70000", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, err := PortFromAddr(tt.addr)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("PortFromAddr(%q) = %d, %v", tt.addr, got, err)
			}
		})
	}
}
