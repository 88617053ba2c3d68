package sim

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/poolhouse/arcticspa/discovery"
	"github.com/poolhouse/arcticspa/internal/logging"
	"github.com/poolhouse/arcticspa/payload"
	"github.com/poolhouse/arcticspa/protocol"
)

// Config holds the simulator configuration
type Config struct {
	Host          string
	Port          int           // 0 picks an ephemeral port; see Addr
	LogLevel      string
	PushInterval  time.Duration // interval between heartbeat frames; 0 disables them
	Discovery     bool          // answer UDP discovery probes
	DiscoveryPort int           // 0 uses the standard query port
}

// Sim emulates an Arctic Spa pack controller: a TCP listener speaking the
// frame protocol plus an optional UDP responder for discovery probes.
type Sim struct {
	config      *Config
	state       *state
	listener    net.Listener
	udp         *net.UDPConn
	acceptErr   chan error
	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]net.Conn
}

// New creates a new Sim instance
func New(config *Config) (*Sim, error) {
	// Initialize logging
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	return &Sim{
		config:      config,
		state:       newState(),
		activeConns: make(map[string]net.Conn),
	}, nil
}

// Start binds the listener and begins accepting connections. It returns
// immediately; use Run for the blocking, signal-aware variant.
func (s *Sim) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	logging.Info("Starting Arctic Spa controller simulator",
		zap.String("addr", listener.Addr().String()),
		zap.String("serial", s.state.serial()),
		zap.Duration("push_interval", s.config.PushInterval),
	)

	if s.config.Discovery {
		if err := s.startDiscovery(); err != nil {
			_ = listener.Close()
			return err
		}
	}

	s.acceptErr = make(chan error, 1)
	go func() {
		s.acceptErr <- s.acceptConnections()
	}()

	return nil
}

// Run starts the simulator and blocks until a shutdown signal or an
// accept-loop error.
func (s *Sim) Run() error {
	if err := s.Start(); err != nil {
		return err
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping simulator...")
		return s.Shutdown(context.Background())
	case err := <-s.acceptErr:
		return err
	}
}

// Addr returns the bound listener address, or "" before Start.
func (s *Sim) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// DiscoveryAddr returns the bound UDP responder address, or "" when
// discovery is disabled.
func (s *Sim) DiscoveryAddr() string {
	if s.udp == nil {
		return ""
	}
	return s.udp.LocalAddr().String()
}

// startDiscovery binds the UDP responder that answers discovery probes.
func (s *Sim) startDiscovery() error {
	port := s.config.DiscoveryPort
	if port == 0 {
		port = discovery.QueryPort
	}

	udpAddr := &net.UDPAddr{IP: net.ParseIP(s.config.Host), Port: port}
	conn, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return fmt.Errorf("failed to bind discovery responder: %w", err)
	}
	s.udp = conn

	logging.Info("Discovery responder listening",
		zap.String("addr", conn.LocalAddr().String()),
	)

	s.wg.Add(1)
	go s.answerProbes()
	return nil
}

// answerProbes replies to discovery query datagrams with the identity
// response a real controller sends.
func (s *Sim) answerProbes() {
	defer s.wg.Done()

	buf := make([]byte, 256)
	for {
		n, addr, err := s.udp.ReadFromUDP(buf)
		if err != nil {
			// Check if the socket was closed (during shutdown)
			if opErr, ok := err.(*net.OpError); ok && opErr.Err.Error() == "use of closed network connection" {
				return
			}
			logging.Error("Discovery read failed", zap.Error(err))
			continue
		}

		if !strings.HasPrefix(string(buf[:n]), discovery.Query) {
			logging.Debug("Ignoring non-query datagram",
				zap.String("remote_addr", addr.String()),
				zap.Int("bytes", n),
			)
			continue
		}

		reply := discovery.ResponsePrefix + s.state.serial()
		if _, err := s.udp.WriteToUDP([]byte(reply), addr); err != nil {
			logging.Error("Discovery reply failed",
				zap.String("remote_addr", addr.String()),
				zap.Error(err),
			)
			continue
		}

		logging.Info("Answered discovery probe",
			zap.String("remote_addr", addr.String()),
		)
	}
}

// acceptConnections accepts and handles incoming connections
func (s *Sim) acceptConnections() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if listener was closed (during shutdown)
			if opErr, ok := err.(*net.OpError); ok && opErr.Err.Error() == "use of closed network connection" {
				return nil
			}
			logging.Error("Failed to accept connection", zap.Error(err))
			continue
		}

		// Handle connection in goroutine
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection runs the read loop for a single client connection.
func (s *Sim) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()

	// Track active connection
	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.activeConns, remoteAddr)
		s.mu.Unlock()
		logging.Info("Client disconnected", zap.String("remote_addr", remoteAddr))
	}()

	logging.Info("Client connected", zap.String("remote_addr", remoteAddr))

	sess := &session{conn: conn}

	if s.config.PushInterval > 0 {
		stop := make(chan struct{})
		defer close(stop)
		s.wg.Add(1)
		go s.pushHeartbeats(sess, stop)
	}

	var pending []byte
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for len(pending) >= protocol.HeaderSize {
				frame, rest, derr := protocol.DecodeFrame(pending)
				if derr != nil {
					if protocol.IsIncomplete(derr) {
						break
					}
					logging.Error("Corrupt stream from client",
						zap.String("remote_addr", remoteAddr),
						zap.Error(derr),
					)
					return
				}
				pending = rest

				if herr := s.handleFrame(sess, frame, remoteAddr); herr != nil {
					logging.Warn("Closing connection",
						zap.String("remote_addr", remoteAddr),
						zap.Error(herr),
					)
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// handleFrame processes one decoded frame from a client: requests are
// answered from the current state, commands mutate it and get a fresh Live
// frame echoed back.
func (s *Sim) handleFrame(sess *session, frame *protocol.Frame, remoteAddr string) error {
	logging.LogFrame("recv", frame)

	switch frame.Type {
	case protocol.MsgTypeHeartbeat:
		return nil

	case protocol.MsgTypeCommand:
		cmd, err := payload.DecodeCommand(frame.Payload)
		if err != nil {
			logging.Warn("Dropping malformed command",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return nil
		}
		if s.state.apply(cmd) {
			// A real pack reboots on reset; the session just drops.
			return fmt.Errorf("pack reset requested")
		}
		logging.Info("Applied command",
			zap.String("remote_addr", remoteAddr),
			zap.Ints("fields", cmd.Fields()),
		)
		return sess.send(protocol.MsgTypeLive, s.state.snapshotLive())

	case protocol.MsgTypeLive:
		return sess.send(protocol.MsgTypeLive, s.state.snapshotLive())

	case protocol.MsgTypeOnzenLive:
		return sess.send(protocol.MsgTypeOnzenLive, s.state.snapshotOnzenLive())

	case protocol.MsgTypeConfiguration:
		return sess.send(protocol.MsgTypeConfiguration, s.state.snapshotConfiguration())

	case protocol.MsgTypeInformation:
		return sess.send(protocol.MsgTypeInformation, s.state.snapshotInformation())

	case protocol.MsgTypeSettings:
		return sess.send(protocol.MsgTypeSettings, s.state.snapshotSettings())

	default:
		// A real pack stays silent for message types it does not serve.
		logging.Debug("Ignoring unsupported request",
			zap.String("remote_addr", remoteAddr),
			zap.Stringer("type", frame.Type),
		)
		return nil
	}
}

// pushHeartbeats emits a heartbeat frame every PushInterval until the
// connection's read loop exits.
func (s *Sim) pushHeartbeats(sess *session, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := sess.send(protocol.MsgTypeHeartbeat, nil); err != nil {
				return
			}
		}
	}
}

// Shutdown gracefully shuts down the simulator
func (s *Sim) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down simulator...")

	// Close listener to stop accepting new connections
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			logging.Error("Error closing listener", zap.Error(err))
		}
	}

	// Close the discovery responder
	if s.udp != nil {
		if err := s.udp.Close(); err != nil {
			logging.Error("Error closing discovery responder", zap.Error(err))
		}
	}

	// Close all active connections
	s.mu.Lock()
	for addr, conn := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	// Wait for all goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	case <-time.After(10 * time.Second):
		logging.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	// Sync logger
	logging.Sync()

	return nil
}

// GetActiveConnections returns the number of active connections
func (s *Sim) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

// session serializes writes to one client connection so the request
// handler and the heartbeat pusher share a single sequence counter.
type session struct {
	conn net.Conn
	mu   sync.Mutex
	seq  uint32
}

// send encodes and writes one frame, advancing the sequence counter.
func (c *session) send(typ protocol.MessageType, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame, err := protocol.EncodeFrame(typ, c.seq, body)
	if err != nil {
		return err
	}
	c.seq++

	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("write %s frame: %w", typ, err)
	}
	return nil
}
