package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poolhouse/arcticspa/payload"
	"github.com/poolhouse/arcticspa/protocol"
)

// startController runs a loopback TCP listener standing in for a spa pack.
// Every accepted connection is handed to handle on its own goroutine.
func startController(t *testing.T, handle func(net.Conn)) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer func() { _ = conn.Close() }()
				handle(conn)
			}()
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

// answerRequests decodes request frames and writes back the canned replies
// registered for each requested type.
func answerRequests(replies map[protocol.MessageType][][]byte) func(net.Conn) {
	return func(conn net.Conn) {
		var pending []byte
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			pending = append(pending, buf[:n]...)
			for {
				frame, rest, err := protocol.DecodeFrame(pending)
				if err != nil {
					break
				}
				pending = rest
				for _, reply := range replies[frame.Type] {
					if _, err := conn.Write(reply); err != nil {
						return
					}
				}
			}
		}
	}
}

func mustFrame(t *testing.T, typ protocol.MessageType, seq uint32, body []byte) []byte {
	t.Helper()
	frame, err := protocol.EncodeFrame(typ, seq, body)
	if err != nil {
		t.Fatalf("EncodeFrame(%s) error = %v", typ, err)
	}
	return frame
}

// pipeDialer hands out the client end of a net.Pipe. A pipe never coalesces
// writes, so the far end observes exactly the client's write boundaries.
type pipeDialer struct {
	conn net.Conn
}

func (d *pipeDialer) DialContext(context.Context, string, string) (net.Conn, error) {
	return d.conn, nil
}

// newPipeClient returns a connected client backed by a pipe plus the far end.
func newPipeClient(t *testing.T, opts ...Option) (*Client, net.Conn) {
	t.Helper()

	srv, cli := net.Pipe()
	t.Cleanup(func() {
		_ = srv.Close()
		_ = cli.Close()
	})

	opts = append([]Option{WithDialer(&pipeDialer{conn: cli})}, opts...)
	c := New("pipe", opts...)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return c, srv
}

// scriptDialer returns canned outcomes per dial attempt and counts calls.
type scriptDialer struct {
	mu    sync.Mutex
	calls int
	steps []func() (net.Conn, error)
}

func (d *scriptDialer) DialContext(context.Context, string, string) (net.Conn, error) {
	d.mu.Lock()
	i := d.calls
	d.calls++
	d.mu.Unlock()

	if i < len(d.steps) {
		return d.steps[i]()
	}
	return nil, errors.New("scripted dialer exhausted")
}

func (d *scriptDialer) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// timeoutError satisfies net.Error with Timeout() == true.
type timeoutError struct{}

func (timeoutError) Error() string   { return "dial timed out" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestConnectDisconnect(t *testing.T) {
	port := startController(t, func(conn net.Conn) {
		_, _ = conn.Read(make([]byte, 1))
	})

	c := New("127.0.0.1", WithPort(port))
	if c.Connected() {
		t.Fatal("Connected() = true before Connect")
	}

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !c.Connected() {
		t.Fatal("Connected() = false after Connect")
	}

	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	if c.Connected() {
		t.Fatal("Connected() = true after Disconnect")
	}

	// Disconnecting again is a no-op.
	if err := c.Disconnect(); err != nil {
		t.Fatalf("second Disconnect() error = %v", err)
	}
}

func TestConnectEmptyHost(t *testing.T) {
	c := New("")
	if err := c.Connect(context.Background()); !errors.Is(err, ErrNoHost) {
		t.Fatalf("Connect() error = %v, want ErrNoHost", err)
	}
}

func TestConnectRefused(t *testing.T) {
	// Grab a port that is guaranteed closed.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	c := New("127.0.0.1", WithPort(port))
	if err := c.Connect(context.Background()); !errors.Is(err, ErrConnectFailed) {
		t.Fatalf("Connect() error = %v, want ErrConnectFailed", err)
	}
}

func TestConnectRetrySemantics(t *testing.T) {
	pipeConn := func() (net.Conn, error) {
		srv, cli := net.Pipe()
		t.Cleanup(func() {
			_ = srv.Close()
			_ = cli.Close()
		})
		return cli, nil
	}

	tests := []struct {
		name      string
		steps     []func() (net.Conn, error)
		attempts  int
		wantErr   error
		wantCalls int
	}{
		{
			name: "success stops retrying",
			steps: []func() (net.Conn, error){
				func() (net.Conn, error) { return nil, timeoutError{} },
				pipeConn,
			},
			attempts:  5,
			wantErr:   nil,
			wantCalls: 2,
		},
		{
			name: "all attempts time out",
			steps: []func() (net.Conn, error){
				func() (net.Conn, error) { return nil, timeoutError{} },
				func() (net.Conn, error) { return nil, timeoutError{} },
				func() (net.Conn, error) { return nil, timeoutError{} },
			},
			attempts:  3,
			wantErr:   ErrConnectTimeout,
			wantCalls: 3,
		},
		{
			name: "hard error fails fast",
			steps: []func() (net.Conn, error){
				func() (net.Conn, error) { return nil, errors.New("connection refused") },
			},
			attempts:  3,
			wantErr:   ErrConnectFailed,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialer := &scriptDialer{steps: tt.steps}
			c := New("10.0.0.1", WithDialer(dialer))

			err := c.ConnectWithRetry(context.Background(), 50*time.Millisecond, tt.attempts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ConnectWithRetry() error = %v, want %v", err, tt.wantErr)
			}
			if got := dialer.callCount(); got != tt.wantCalls {
				t.Errorf("dial attempts = %d, want %d", got, tt.wantCalls)
			}
			if (err == nil) != c.Connected() {
				t.Errorf("Connected() = %v after error %v", c.Connected(), err)
			}
		})
	}
}

func TestReconnectClearsPendingBuffer(t *testing.T) {
	liveFrame := mustFrame(t, protocol.MsgTypeLive, 9, (&payload.Live{TemperatureFahrenheit: 100}).Encode())

	var conns atomic.Int32
	port := startController(t, func(conn net.Conn) {
		if conns.Add(1) == 1 {
			// First connection: half a frame, then hold until the client
			// hangs up.
			_, _ = conn.Write(liveFrame[:10])
		} else {
			_, _ = conn.Write(liveFrame)
		}
		_, _ = conn.Read(make([]byte, 1))
	})

	c := New("127.0.0.1", WithPort(port))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msgs, err := c.ReadMessages(ctx)
	if err != nil {
		t.Fatalf("ReadMessages() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("ReadMessages() on a half frame = %d messages, want 0", len(msgs))
	}

	// Reconnect. The buffered half frame must not survive, or the stream
	// below would be misaligned.
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("reconnect error = %v", err)
	}

	msgs, err = c.ReadMessages(ctx)
	if err != nil {
		t.Fatalf("ReadMessages() after reconnect error = %v", err)
	}
	if len(msgs) != 1 || msgs[0].Type != protocol.MsgTypeLive {
		t.Fatalf("ReadMessages() after reconnect = %v, want one Live message", msgs)
	}
}

func TestRequestNotConnected(t *testing.T) {
	c := New("127.0.0.1")
	err := c.Request(context.Background(), protocol.MsgTypeLive)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Request() error = %v, want ErrNotConnected", err)
	}
}

func TestRequestDedupeSingleWrite(t *testing.T) {
	c, srv := newPipeClient(t)

	type readResult struct {
		data []byte
		err  error
	}
	got := make(chan readResult, 1)
	go func() {
		buf := make([]byte, 4096)
		n, err := srv.Read(buf)
		got <- readResult{data: buf[:n], err: err}
	}()

	err := c.Request(context.Background(),
		protocol.MsgTypeLive, protocol.MsgTypeLive,
		protocol.MsgTypeSettings, protocol.MsgTypeLive)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	res := <-got
	if res.err != nil {
		t.Fatalf("server read error = %v", res.err)
	}

	// A pipe read returns at most one write's worth of bytes, so both
	// frames arriving together proves the request went out as one write.
	if len(res.data) != 2*protocol.HeaderSize {
		t.Fatalf("request write = %d bytes, want %d", len(res.data), 2*protocol.HeaderSize)
	}

	first, rest, err := protocol.DecodeFrame(res.data)
	if err != nil {
		t.Fatalf("decode first request frame: %v", err)
	}
	second, rest, err := protocol.DecodeFrame(rest)
	if err != nil {
		t.Fatalf("decode second request frame: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("trailing bytes after request frames: %d", len(rest))
	}

	if first.Type != protocol.MsgTypeLive || second.Type != protocol.MsgTypeSettings {
		t.Errorf("request types = %s, %s; want Live, Settings", first.Type, second.Type)
	}
	if first.Sequence != 0 || second.Sequence != 1 {
		t.Errorf("request sequences = %d, %d; want 0, 1", first.Sequence, second.Sequence)
	}
	if len(first.Payload) != 0 || len(second.Payload) != 0 {
		t.Error("request frames must carry no payload")
	}
}

func TestRequestEmptyIsNoOp(t *testing.T) {
	c, srv := newPipeClient(t)

	if err := c.Request(context.Background()); err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	// Nothing may have been written.
	_ = srv.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	buf := make([]byte, 16)
	if n, err := srv.Read(buf); err == nil {
		t.Fatalf("server read %d bytes, want none", n)
	}
}

func TestPoll(t *testing.T) {
	liveStale := mustFrame(t, protocol.MsgTypeLive, 1, (&payload.Live{TemperatureFahrenheit: 98}).Encode())
	liveFresh := mustFrame(t, protocol.MsgTypeLive, 2, (&payload.Live{TemperatureFahrenheit: 101}).Encode())
	onzen := mustFrame(t, protocol.MsgTypeOnzenLive, 3, (&payload.OnzenLive{PH100: 720}).Encode())
	extra := mustFrame(t, protocol.MsgTypeSettings, 4, (&payload.Settings{FiltrationFrequency: 2}).Encode())
	heartbeat := mustFrame(t, protocol.MsgTypeHeartbeat, 5, nil)

	port := startController(t, answerRequests(map[protocol.MessageType][][]byte{
		protocol.MsgTypeLive:      {heartbeat, extra, liveStale},
		protocol.MsgTypeOnzenLive: {liveFresh, onzen},
	}))

	c := New("127.0.0.1", WithPort(port))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = c.Disconnect() }()

	msgs, err := c.Poll(context.Background(), 2*time.Second,
		protocol.MsgTypeLive, protocol.MsgTypeOnzenLive)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	if len(msgs) != 3 {
		t.Errorf("Poll() returned %d types, want 3 (requested 2 + 1 extra)", len(msgs))
	}

	live, ok := msgs[protocol.MsgTypeLive]
	if !ok {
		t.Fatal("Poll() result missing Live")
	}
	if got := live.Body.(*payload.Live).TemperatureFahrenheit; got != 101 {
		t.Errorf("Live temperature = %d, want 101 (latest message wins)", got)
	}

	if _, ok := msgs[protocol.MsgTypeOnzenLive]; !ok {
		t.Error("Poll() result missing OnzenLive")
	}
	if _, ok := msgs[protocol.MsgTypeSettings]; !ok {
		t.Error("Poll() result missing the extra Settings message")
	}
}

func TestPollTimeoutReturnsNothing(t *testing.T) {
	live := mustFrame(t, protocol.MsgTypeLive, 1, (&payload.Live{TemperatureFahrenheit: 100}).Encode())

	// The controller answers Live but never OnzenLive.
	port := startController(t, answerRequests(map[protocol.MessageType][][]byte{
		protocol.MsgTypeLive: {live},
	}))

	c := New("127.0.0.1", WithPort(port))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = c.Disconnect() }()

	msgs, err := c.Poll(context.Background(), 150*time.Millisecond,
		protocol.MsgTypeLive, protocol.MsgTypeOnzenLive)
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("Poll() error = %v, want ErrPollTimeout", err)
	}
	if msgs != nil {
		t.Fatalf("Poll() on timeout returned %d messages, want none", len(msgs))
	}
}

func TestPollNotConnected(t *testing.T) {
	c := New("127.0.0.1")
	if _, err := c.Poll(context.Background(), time.Second, protocol.MsgTypeLive); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Poll() error = %v, want ErrNotConnected", err)
	}
}

func TestPollNoTypes(t *testing.T) {
	c, _ := newPipeClient(t)

	msgs, err := c.Poll(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("Poll() with no types = %d messages, want 0", len(msgs))
	}
}

func TestPollReassemblesSplitFrames(t *testing.T) {
	heartbeat := mustFrame(t, protocol.MsgTypeHeartbeat, 1, nil)
	live := mustFrame(t, protocol.MsgTypeLive, 2, (&payload.Live{TemperatureFahrenheit: 102}).Encode())
	stream := append(append([]byte{}, heartbeat...), live...)

	port := startController(t, func(conn net.Conn) {
		buf := make([]byte, 4096)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		// Split mid-heartbeat and mid-live to force reassembly.
		_, _ = conn.Write(stream[:25])
		time.Sleep(30 * time.Millisecond)
		_, _ = conn.Write(stream[25:])
		_, _ = conn.Read(make([]byte, 1))
	})

	c := New("127.0.0.1", WithPort(port))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = c.Disconnect() }()

	msgs, err := c.Poll(context.Background(), 2*time.Second, protocol.MsgTypeLive)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if got := msgs[protocol.MsgTypeLive].Body.(*payload.Live).TemperatureFahrenheit; got != 102 {
		t.Errorf("Live temperature = %d, want 102", got)
	}
}

func TestFetchOne(t *testing.T) {
	info := mustFrame(t, protocol.MsgTypeInformation, 1,
		(&payload.Information{PackSerialNumber: "A123456"}).Encode())

	port := startController(t, answerRequests(map[protocol.MessageType][][]byte{
		protocol.MsgTypeInformation: {info},
	}))

	c := New("127.0.0.1", WithPort(port))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = c.Disconnect() }()

	msg, err := c.FetchOne(context.Background(), protocol.MsgTypeInformation, 2*time.Second)
	if err != nil {
		t.Fatalf("FetchOne() error = %v", err)
	}
	if msg.Type != protocol.MsgTypeInformation {
		t.Fatalf("FetchOne() type = %s, want Information", msg.Type)
	}
	if got := msg.Body.(*payload.Information).PackSerialNumber; got != "A123456" {
		t.Errorf("serial = %q, want %q", got, "A123456")
	}
}

func TestReadMessagesReassembly(t *testing.T) {
	c, srv := newPipeClient(t)

	live := mustFrame(t, protocol.MsgTypeLive, 1, (&payload.Live{TemperatureFahrenheit: 99}).Encode())
	half := len(live) / 2

	go func() { _, _ = srv.Write(live[:half]) }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msgs, err := c.ReadMessages(ctx)
	if err != nil {
		t.Fatalf("ReadMessages() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("ReadMessages() on half frame = %d messages, want 0", len(msgs))
	}

	go func() { _, _ = srv.Write(live[half:]) }()

	msgs, err = c.ReadMessages(ctx)
	if err != nil {
		t.Fatalf("ReadMessages() error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("ReadMessages() after second half = %d messages, want 1", len(msgs))
	}
	if got := msgs[0].Body.(*payload.Live).TemperatureFahrenheit; got != 99 {
		t.Errorf("Live temperature = %d, want 99", got)
	}
}

func TestReadRaw(t *testing.T) {
	c, srv := newPipeClient(t)

	junk := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01}
	go func() { _, _ = srv.Write(junk) }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := c.ReadRaw(ctx)
	if err != nil {
		t.Fatalf("ReadRaw() error = %v", err)
	}
	if string(data) != string(junk) {
		t.Errorf("ReadRaw() = % X, want % X", data, junk)
	}
}

func TestCommandWritesFrame(t *testing.T) {
	c, srv := newPipeClient(t)

	type readResult struct {
		data []byte
		err  error
	}
	got := make(chan readResult, 1)
	go func() {
		buf := make([]byte, 4096)
		n, err := srv.Read(buf)
		got <- readResult{data: buf[:n], err: err}
	}()

	if err := c.Command(context.Background(), CmdTemperatureSetpoint, 102); err != nil {
		t.Fatalf("Command() error = %v", err)
	}

	res := <-got
	if res.err != nil {
		t.Fatalf("server read error = %v", res.err)
	}

	frame, rest, err := protocol.DecodeFrame(res.data)
	if err != nil {
		t.Fatalf("decode command frame: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("trailing bytes after command frame: %d", len(rest))
	}
	if frame.Type != protocol.MsgTypeCommand {
		t.Fatalf("frame type = %s, want Command", frame.Type)
	}
	if frame.Sequence != 0 {
		t.Errorf("frame sequence = %d, want 0", frame.Sequence)
	}

	cmd, err := payload.DecodeCommand(frame.Payload)
	if err != nil {
		t.Fatalf("DecodeCommand() error = %v", err)
	}
	if cmd.Len() != 1 {
		t.Fatalf("command fields = %d, want 1", cmd.Len())
	}
	if v, ok := cmd.Value(1); !ok || v != 102 {
		t.Errorf("setpoint field = %d (set=%v), want 102", v, ok)
	}
}

func TestCommandSequenceAdvances(t *testing.T) {
	c, srv := newPipeClient(t)

	frames := make(chan *protocol.Frame, 3)
	go func() {
		var pending []byte
		buf := make([]byte, 4096)
		for {
			n, err := srv.Read(buf)
			if err != nil {
				close(frames)
				return
			}
			pending = append(pending, buf[:n]...)
			for {
				frame, rest, err := protocol.DecodeFrame(pending)
				if err != nil {
					break
				}
				pending = rest
				frames <- frame
			}
		}
	}()

	ctx := context.Background()
	if err := c.Request(ctx, protocol.MsgTypeLive, protocol.MsgTypeSettings); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if err := c.Command(ctx, CmdLights, true); err != nil {
		t.Fatalf("Command() error = %v", err)
	}

	want := []uint32{0, 1, 2}
	for i, wantSeq := range want {
		frame := <-frames
		if frame.Sequence != wantSeq {
			t.Errorf("frame %d sequence = %d, want %d", i, frame.Sequence, wantSeq)
		}
	}
}

func TestCommandNotConnectedChecksFirst(t *testing.T) {
	c := New("127.0.0.1")

	// The value is invalid too; the connection check wins.
	err := c.Command(context.Background(), CmdPump1, true)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Command() error = %v, want ErrNotConnected", err)
	}
}

func TestCommandRejectsBadValueBeforeWriting(t *testing.T) {
	c, srv := newPipeClient(t)

	err := c.Command(context.Background(), CmdPump1, true)
	if !errors.Is(err, ErrValueType) {
		t.Fatalf("Command() error = %v, want ErrValueType", err)
	}

	_ = srv.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	buf := make([]byte, 16)
	if n, err := srv.Read(buf); err == nil {
		t.Fatalf("server read %d bytes after rejected command, want none", n)
	}
}
