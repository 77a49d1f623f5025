// Package mdns advertises the radionode API over multicast DNS and browses
// for other nodes on the local network.
package mdns

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

// Service is the DNS-SD service type of the HTTP API.
const Service = "_radionode._tcp"

const domain = "local."

// Node is a discovered radionode instance.
type Node struct {
	Instance  string   `json:"instance"`
	Hostname  string   `json:"hostname"`
	Addresses []net.IP `json:"addresses"`
	Port      int      `json:"port"`
	TXT       []string `json:"txt"`
}

// Advertiser keeps a service registration alive until Shutdown.
type Advertiser struct {
	server *zeroconf.Server
	logger *slog.Logger
}

// Advertise registers instance on port with the given TXT records.
func Advertise(instance string, port int, txt []string, logger *slog.Logger) (*Advertiser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	server, err := zeroconf.Register(instance, Service, domain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("mdns register: %w", err)
	}
	logger.Info("Advertising over mDNS", "instance", instance, "service", Service, "port", port)
	return &Advertiser{server: server, logger: logger}, nil
}

// Shutdown withdraws the registration.
func (a *Advertiser) Shutdown() {
	a.server.Shutdown()
	a.logger.Debug("mDNS advertisement withdrawn")
}

// Discover browses for radionode services until timeout and returns the
// deduplicated results.
func Discover(ctx context.Context, timeout time.Duration) ([]Node, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("mdns resolver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(map[string]Node)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case e, ok := <-entries:
				if !ok {
					return
				}
				if e == nil {
					continue
				}
				n := nodeFromEntry(e)
				found[fmt.Sprintf("%s|%d", n.Hostname, n.Port)] = n
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, Service, domain, entries); err != nil {
		return nil, fmt.Errorf("mdns browse: %w", err)
	}
	<-done

	out := make([]Node, 0, len(found))
	for _, n := range found {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b Node) int { return strings.Compare(a.Instance, b.Instance) })
	return out, nil
}

func nodeFromEntry(e *zeroconf.ServiceEntry) Node {
	addrs := make([]net.IP, 0, len(e.AddrIPv4)+len(e.AddrIPv6))
	addrs = append(addrs, e.AddrIPv4...)
	addrs = append(addrs, e.AddrIPv6...)
	return Node{
		Instance:  unescape(e.Instance),
		Hostname:  e.HostName,
		Addresses: addrs,
		Port:      e.Port,
		TXT:       slices.Clone(e.Text),
	}
}

// unescape drops DNS-SD escapes such as "\ ".
func unescape(s string) string {
	return strings.ReplaceAll(s, `\ `, " ")
}

// PortFromAddr extracts the port of a listen address such as ":8090".
func PortFromAddr(addr string) (int, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return 0, fmt.Errorf("invalid port in %q", addr)
	}
	return n, nil
}
