package scmi

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// newPipeClient returns a client wired to an in-memory connection and the
// agent side of the pipe.
func newPipeClient(t *testing.T) (*Client, net.Conn) {
	t.Helper()

	clientConn, agentConn := net.Pipe()
	t.Cleanup(func() {
		clientConn.Close()
		agentConn.Close()
	})

	c := &Client{
		cfg:  Config{RequestTimeout: time.Second},
		conn: clientConn,
	}
	return c, agentConn
}

// readAgentFrame reads one complete frame from the agent side of the pipe.
func readAgentFrame(t *testing.T, conn net.Conn) (Header, []byte) {
	t.Helper()

	var sizeBytes [frameLengthFieldSize]byte
	if _, err := io.ReadFull(conn, sizeBytes[:]); err != nil {
		t.Errorf("reading frame length: %v", err)
		return Header{}, nil
	}

	body := make([]byte, binary.LittleEndian.Uint16(sizeBytes[:]))
	if _, err := io.ReadFull(conn, body); err != nil {
		t.Errorf("reading frame body: %v", err)
		return Header{}, nil
	}

	h, payload, err := ParseFrame(append(sizeBytes[:], body...))
	if err != nil {
		t.Errorf("parsing request frame: %v", err)
	}
	return h, payload
}

func TestClient_Call(t *testing.T) {
	c, agent := newPipeClient(t)

	go func() {
		h, req := readAgentFrame(t, agent)
		if h.ProtocolID != 0x19 || h.MessageID != 0x4 {
			t.Errorf("request header = %+v, want protocol 0x19 message 0x4", h)
		}
		if len(req) != 2 {
			t.Errorf("request payload = % x, want 2 bytes", req)
		}
		agent.Write(EncodeFrame(h, []byte{0, 0, 0, 0, 0x2A, 0x00}))
	}()

	payload, err := c.Call(context.Background(), 0x19, 0x4, []byte{0x05, 0x00})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(payload) != 6 || payload[4] != 0x2A {
		t.Errorf("payload = % x, want status word then 0x2A", payload)
	}

	stats := c.GetStats()
	if stats.RequestsTx != 1 || stats.ResponsesRx != 1 || stats.ErrorsTotal != 0 {
		t.Errorf("stats = %+v, want one clean exchange", stats)
	}
	if !stats.Connected {
		t.Error("stats.Connected = false, want true")
	}
}

func TestClient_Call_TokenMismatch(t *testing.T) {
	c, agent := newPipeClient(t)

	go func() {
		h, _ := readAgentFrame(t, agent)
		h.Token++ // a stale or crossed response
		agent.Write(EncodeFrame(h, []byte{0, 0, 0, 0}))
	}()

	_, err := c.Call(context.Background(), 0x19, 0x1, nil)
	if !errors.Is(err, ErrInvalidFrame) {
		t.Fatalf("Call() error = %v, want ErrInvalidFrame", err)
	}
	if stats := c.GetStats(); stats.ErrorsTotal != 1 {
		t.Errorf("ErrorsTotal = %d, want 1", stats.ErrorsTotal)
	}
}

func TestClient_Call_OversizedFrame(t *testing.T) {
	c, agent := newPipeClient(t)

	go func() {
		readAgentFrame(t, agent)
		var lenBytes [2]byte
		binary.LittleEndian.PutUint16(lenBytes[:], 512)
		agent.Write(lenBytes[:])
	}()

	_, err := c.Call(context.Background(), 0x19, 0x1, nil)
	if !errors.Is(err, ErrInvalidFrame) {
		t.Fatalf("Call() error = %v, want ErrInvalidFrame", err)
	}
}

func TestClient_Call_AfterClose(t *testing.T) {
	c, _ := newPipeClient(t)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	_, err := c.Call(context.Background(), 0x19, 0x1, nil)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Call() after close error = %v, want ErrNotConnected", err)
	}

	if c.IsConnected() {
		t.Error("IsConnected() = true after close")
	}
}

func TestClient_Call_ContextCancelled(t *testing.T) {
	c, _ := newPipeClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Call(ctx, 0x19, 0x1, nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Call() error = %v, want ErrTransport", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Call() error = %v, want it to wrap context.Canceled", err)
	}
}

func TestConnect_InvalidEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{"unsupported scheme", "ftp://somewhere"},
		{"malformed url", "://"},
		{"bad serial baud", "serial:///dev/ttyS2?baud=fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Connect(context.Background(), Config{Endpoint: tt.endpoint})
			if !errors.Is(err, ErrConnectionFailed) {
				t.Fatalf("Connect() error = %v, want ErrConnectionFailed", err)
			}
		})
	}
}
