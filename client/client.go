package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/poolhouse/arcticspa/payload"
	"github.com/poolhouse/arcticspa/protocol"
)

const (
	// DefaultConnectTimeout is the per-attempt dial timeout.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultPollTimeout bounds a Poll call when the caller passes no
	// explicit timeout.
	DefaultPollTimeout = 5 * time.Second

	// DefaultReadBuffer is the per-read buffer size. Controller frames are
	// small; a Live message with every field set is well under 200 bytes.
	DefaultReadBuffer = 4096
)

// Dialer opens TCP connections. The default is a plain net.Dialer; tests
// substitute fakes to exercise timeout and refusal paths.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Option configures a Client.
type Option func(*Client)

// WithPort overrides the controller TCP port (default protocol.Port).
func WithPort(port int) Option {
	return func(c *Client) { c.port = port }
}

// WithDialer replaces the dialer used by Connect.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithRegistry replaces the payload decoder registry. The default is
// payload.DefaultRegistry.
func WithRegistry(reg *protocol.Registry) Option {
	return func(c *Client) { c.decoder = protocol.NewDecoder(reg) }
}

// WithLogger attaches a logger. The default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithReadBuffer overrides the per-read buffer size.
func WithReadBuffer(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.readBuf = size
		}
	}
}

// Client is a session with one spa controller. A Client is safe for
// concurrent use; operations serialize on an internal mutex, so a blocked
// Poll delays other calls until its deadline passes.
type Client struct {
	host    string
	port    int
	dialer  Dialer
	decoder *protocol.Decoder
	log     *zap.Logger
	readBuf int

	mu      sync.Mutex
	conn    net.Conn
	seq     uint32 // next outbound frame sequence
	pending []byte // bytes of an incomplete trailing frame between reads
}

// New returns a client for the controller at host. The zero-value options
// match the shipped controller: TCP port 65534 and the default payload
// registry.
func New(host string, opts ...Option) *Client {
	c := &Client{
		host:    host,
		port:    protocol.Port,
		dialer:  &net.Dialer{},
		log:     zap.NewNop(),
		readBuf: DefaultReadBuffer,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.decoder == nil {
		c.decoder = protocol.NewDecoder(payload.DefaultRegistry())
	}
	return c
}

// Host returns the controller host the client was built with.
func (c *Client) Host() string {
	return c.host
}

// Connect dials the controller with the default timeout and a single
// attempt. Any existing connection is closed first.
func (c *Client) Connect(ctx context.Context) error {
	return c.ConnectWithRetry(ctx, DefaultConnectTimeout, 1)
}

// ConnectWithRetry dials the controller, allowing up to attempts tries with
// the given per-attempt timeout. A timed-out attempt moves on to the next;
// any other dial error (refusal, unreachable network) fails immediately
// since retrying cannot fix it. Retrying stops at the first success.
func (c *Client) ConnectWithRetry(ctx context.Context, timeout time.Duration, attempts int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.closeLocked()

	if c.host == "" {
		return ErrNoHost
	}
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	if attempts < 1 {
		attempts = 1
	}

	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		dialCtx, cancel := context.WithTimeout(ctx, timeout)
		conn, err := c.dialer.DialContext(dialCtx, "tcp", addr)
		cancel()

		if err == nil {
			c.conn = conn
			c.log.Debug("connected",
				zap.String("addr", addr),
				zap.Int("attempt", attempt))
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isTimeout(err) {
			return fmt.Errorf("%w: %v", ErrConnectFailed, err)
		}

		c.log.Debug("connect attempt timed out",
			zap.String("addr", addr),
			zap.Int("attempt", attempt))
		lastErr = err
	}

	return fmt.Errorf("%w after %d attempt(s): %v", ErrConnectTimeout, attempts, lastErr)
}

// Disconnect closes the connection and drops any buffered bytes. Calling it
// on a disconnected client is a no-op.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

// Connected reports whether the client holds an open connection. It does
// not probe the socket; a dead peer shows up as an error on the next read
// or write.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Request asks the controller to send the named message types. Duplicate
// types are collapsed, keeping first-seen order, and all request frames go
// out in a single write. An empty type list is a no-op.
func (c *Client) Request(ctx context.Context, types ...protocol.MessageType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	return c.requestLocked(ctx, types)
}

// Poll requests the given message types and reads until every one has been
// answered or timeout elapses. The latest message per type wins; messages
// of other types that arrive meanwhile are kept and returned as well. On
// timeout nothing is returned: a partial snapshot would hide which half of
// the state is stale.
func (c *Client) Poll(ctx context.Context, timeout time.Duration, types ...protocol.MessageType) (map[protocol.MessageType]*protocol.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}

	if err := c.requestLocked(ctx, types); err != nil {
		return nil, err
	}

	want := make(map[protocol.MessageType]bool, len(types))
	for _, typ := range types {
		want[typ] = true
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	results := make(map[protocol.MessageType]*protocol.Message, len(want))
	buf := make([]byte, c.readBuf)

	for {
		outstanding := 0
		for typ := range want {
			if _, ok := results[typ]; !ok {
				outstanding++
			}
		}
		if outstanding == 0 {
			return results, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("poll: %w", err)
		}
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.pending = append(c.pending, buf[:n]...)
			msgs, rest, derr := c.decoder.Decode(c.pending)
			c.pending = append(c.pending[:0], rest...)
			for _, m := range msgs {
				c.log.Debug("message received",
					zap.Stringer("type", m.Type),
					zap.Uint32("seq", m.Sequence),
					zap.Int("payload_bytes", len(m.Payload)))
				results[m.Type] = m
			}
			if derr != nil {
				return nil, fmt.Errorf("poll: %w", derr)
			}
		}
		if err != nil {
			if isTimeout(err) {
				return nil, fmt.Errorf("%w: %d of %d requested types unanswered",
					ErrPollTimeout, outstanding, len(want))
			}
			return nil, fmt.Errorf("poll read: %w", err)
		}
	}
}

// FetchOne polls for a single message type.
func (c *Client) FetchOne(ctx context.Context, typ protocol.MessageType, timeout time.Duration) (*protocol.Message, error) {
	msgs, err := c.Poll(ctx, timeout, typ)
	if err != nil {
		return nil, err
	}
	return msgs[typ], nil
}

// ReadMessages performs one bounded read and decodes whatever complete
// frames the pending buffer now holds. Bytes of a trailing partial frame
// stay buffered for the next call. A context deadline bounds the read;
// without one the call blocks until the controller sends something.
func (c *Client) ReadMessages(ctx context.Context) ([]*protocol.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	buf := make([]byte, c.readBuf)
	n, err := c.readLocked(ctx, buf)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("read: %w", err)
	}
	c.pending = append(c.pending, buf[:n]...)

	msgs, rest, derr := c.decoder.Decode(c.pending)
	c.pending = append(c.pending[:0], rest...)
	if derr != nil {
		return msgs, fmt.Errorf("decode: %w", derr)
	}
	return msgs, nil
}

// ReadRaw performs one bounded read and returns the raw bytes, bypassing
// the frame decoder and the pending buffer.
func (c *Client) ReadRaw(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	buf := make([]byte, c.readBuf)
	n, err := c.readLocked(ctx, buf)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("read: %w", err)
	}
	return buf[:n], nil
}

// Command validates value against cmd and writes a single-field Command
// frame. The connection is checked before the value: an unconnected client
// reports ErrNotConnected even for a value it would reject.
func (c *Client) Command(ctx context.Context, cmd CommandType, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}

	field, raw, err := commandField(cmd, value)
	if err != nil {
		return err
	}

	body := payload.NewCommand()
	body.Set(field, raw)

	frame, err := protocol.EncodeFrame(protocol.MsgTypeCommand, c.seq, body.Encode())
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	c.seq++

	if err := c.writeLocked(ctx, frame); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}

	c.log.Debug("command sent",
		zap.Stringer("command", cmd),
		zap.Uint64("value", raw))
	return nil
}

// requestLocked encodes and sends one zero-payload frame per distinct type.
func (c *Client) requestLocked(ctx context.Context, types []protocol.MessageType) error {
	if len(types) == 0 {
		return nil
	}

	seen := make(map[protocol.MessageType]bool, len(types))
	var out []byte
	for _, typ := range types {
		if seen[typ] {
			continue
		}
		seen[typ] = true

		frame, err := protocol.EncodeFrame(typ, c.seq, nil)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", typ, err)
		}
		c.seq++
		out = append(out, frame...)
	}

	if err := c.writeLocked(ctx, out); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	c.log.Debug("request sent",
		zap.Int("types", len(seen)),
		zap.Int("bytes", len(out)))
	return nil
}

// writeLocked writes data to the connection, honoring any context deadline.
func (c *Client) writeLocked(ctx context.Context, data []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
		defer func() { _ = c.conn.SetWriteDeadline(time.Time{}) }()
	}
	_, err := c.conn.Write(data)
	return err
}

// readLocked performs one read, honoring any context deadline. Without a
// deadline any stale deadline from a previous Poll is cleared first.
func (c *Client) readLocked(ctx context.Context, buf []byte) (int, error) {
	deadline, _ := ctx.Deadline()
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}
	return c.conn.Read(buf)
}

// closeLocked closes the connection and clears the pending buffer.
func (c *Client) closeLocked() error {
	c.pending = nil
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// isTimeout reports whether err is a deadline expiry rather than a hard
// network failure.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
