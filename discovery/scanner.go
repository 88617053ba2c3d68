package discovery

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// QueryPort is the UDP port controllers listen on for discovery queries.
	QueryPort = 9131

	// ResponsePort is the UDP port the protocol documents for responses.
	// In practice controllers answer the querying socket directly, so the
	// scanner never binds it; the constant is kept for protocol completeness.
	ResponsePort = 33327

	// Query is the discovery datagram. "BlueFalls" is the controller
	// vendor's protocol family name and appears in both directions.
	Query = "Query,BlueFalls,"

	// ResponsePrefix opens every controller response; the remainder of the
	// datagram is the pack serial number.
	ResponsePrefix = "Response,BlueFalls,"

	// DefaultTimeout is the per-probe wait for a response.
	DefaultTimeout = time.Second

	// DefaultConcurrency is how many probes run at once during a scan.
	DefaultConcurrency = 50
)

// Option configures a Scanner.
type Option func(*Scanner)

// WithTimeout sets the per-probe response timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithConcurrency bounds the number of in-flight probes during Scan.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithPort overrides the query port (default QueryPort). Tests point this
// at a loopback responder.
func WithPort(port int) Option {
	return func(s *Scanner) {
		if port > 0 {
			s.port = port
		}
	}
}

// WithLogger attaches a logger. The default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}

// Scanner finds spa controllers by probing subnet addresses with the
// discovery query. A Scanner carries no per-scan state and is safe for
// concurrent use.
type Scanner struct {
	timeout     time.Duration
	concurrency int
	port        int
	log         *zap.Logger
}

// NewScanner returns a scanner with the protocol defaults: one second per
// probe, fifty probes in flight.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		timeout:     DefaultTimeout,
		concurrency: DefaultConcurrency,
		port:        QueryPort,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan probes every host address in the IPv4 network and returns the ones
// that answered, in ascending address order. Cancelling the context stops
// new probes; the responders found so far come back alongside ctx.Err().
func (s *Scanner) Scan(ctx context.Context, network *net.IPNet) ([]string, error) {
	hosts := enumerateHosts(network)
	if hosts == nil {
		return nil, fmt.Errorf("subnet %s: only IPv4 networks can be scanned", network)
	}

	s.log.Debug("scanning subnet",
		zap.String("subnet", network.String()),
		zap.Int("hosts", len(hosts)),
		zap.Int("concurrency", s.concurrency))

	var (
		mu    sync.Mutex
		found []net.IP
	)

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	var scanErr error
	for _, host := range hosts {
		if err := ctx.Err(); err != nil {
			scanErr = err
			break
		}
		select {
		case <-ctx.Done():
			scanErr = ctx.Err()
		case sem <- struct{}{}:
		}
		if scanErr != nil {
			break
		}

		wg.Add(1)
		go func(ip net.IP) {
			defer wg.Done()
			defer func() { <-sem }()

			if s.Probe(ctx, ip.String()) {
				mu.Lock()
				found = append(found, ip)
				mu.Unlock()
			}
		}(host)
	}
	wg.Wait()

	sort.Slice(found, func(i, j int) bool {
		return bytes.Compare(found[i], found[j]) < 0
	})

	out := make([]string, len(found))
	for i, ip := range found {
		out[i] = ip.String()
	}

	s.log.Debug("scan finished", zap.Int("responders", len(out)))
	return out, scanErr
}

// ScanCIDR parses a CIDR subnet and scans it.
func (s *Scanner) ScanCIDR(ctx context.Context, cidr string) ([]string, error) {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("parse subnet: %w", err)
	}
	return s.Scan(ctx, network)
}

// Probe sends one discovery query to host and reports whether a controller
// answered. Each probe opens its own UDP socket on an ephemeral port and
// reads a single datagram: the answer must come from the probed address and
// start with ResponsePrefix. Timeouts and send failures are quiet; a probe
// of an empty address is simply false.
func (s *Scanner) Probe(ctx context.Context, host string) bool {
	if ctx.Err() != nil {
		return false
	}

	dst, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, strconv.Itoa(s.port)))
	if err != nil {
		s.log.Debug("probe address", zap.String("host", host), zap.Error(err))
		return false
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		s.log.Debug("probe socket", zap.Error(err))
		return false
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return false
	}

	if _, err := conn.WriteToUDP([]byte(Query), dst); err != nil {
		s.log.Debug("probe send", zap.String("host", host), zap.Error(err))
		return false
	}

	buf := make([]byte, 256)
	n, src, err := conn.ReadFromUDP(buf)
	if err != nil {
		return false
	}

	if !src.IP.Equal(dst.IP) {
		s.log.Debug("probe answer from wrong source",
			zap.String("host", host),
			zap.String("source", src.IP.String()))
		return false
	}
	if !strings.HasPrefix(string(buf[:n]), ResponsePrefix) {
		return false
	}

	s.log.Debug("controller answered",
		zap.String("host", host),
		zap.String("response", string(buf[:n])))
	return true
}

// LocalIP returns this machine's outbound IPv4 address. Connecting a UDP
// socket toward a far-away address makes the kernel pick the route's local
// address without sending a packet. With no route at all it falls back to
// the loopback address.
func LocalIP() string {
	conn, err := net.Dial("udp4", "10.254.254.254:1")
	if err != nil {
		return "127.0.0.1"
	}
	defer func() { _ = conn.Close() }()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// enumerateHosts lists the probeable addresses of an IPv4 network in
// ascending order. Point-to-point networks (/31) and single addresses
// (/32) are probed as listed; anything wider drops the network and
// broadcast addresses. Returns nil for networks it cannot enumerate.
func enumerateHosts(network *net.IPNet) []net.IP {
	if network == nil {
		return nil
	}
	base := network.IP.To4()
	if base == nil {
		return nil
	}
	ones, bits := network.Mask.Size()
	if bits != 32 {
		return nil
	}

	start := binary.BigEndian.Uint32(base.Mask(network.Mask).To4())
	count := 1 << (bits - ones)

	switch count {
	case 1:
		return []net.IP{ipFromUint32(start)}
	case 2:
		return []net.IP{ipFromUint32(start), ipFromUint32(start + 1)}
	}

	hosts := make([]net.IP, 0, count-2)
	for off := uint32(1); off < uint32(count-1); off++ {
		hosts = append(hosts, ipFromUint32(start+off))
	}
	return hosts
}

func ipFromUint32(v uint32) net.IP {
	ip := make(net.IP, net.IPv4len)
	binary.BigEndian.PutUint32(ip, v)
	return ip
}
