package scmi

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tarm/serial"
)

// Default timeouts for agent communication.
const (
	// defaultConnectTimeout is the maximum time to wait for the initial
	// connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultRequestTimeout bounds one request/response exchange.
	defaultRequestTimeout = 5 * time.Second

	// defaultSerialBaud is used when a serial endpoint gives no baud rate.
	defaultSerialBaud = 115200

	// readBufferSize is the size of the receive buffer. The agent's channel
	// is far smaller, so anything larger than this means the stream is
	// corrupted.
	readBufferSize = 256
)

// Config holds agent connection configuration.
type Config struct {
	// Endpoint is the agent connection URL.
	// Supported formats:
	//   - "unix:///run/scmi-agent.sock" (Unix socket)
	//   - "tcp://localhost:7021" (TCP)
	//   - "serial:///dev/ttyS2?baud=115200" (serial link)
	Endpoint string

	// ConnectTimeout is the maximum time to wait for connection.
	// Default: 10 seconds.
	ConnectTimeout time.Duration

	// RequestTimeout bounds a single request/response exchange.
	// Default: 5 seconds.
	RequestTimeout time.Duration
}

// Stats holds operational statistics.
type Stats struct {
	RequestsTx   uint64
	ResponsesRx  uint64
	ErrorsTotal  uint64
	LastActivity time.Time
	Connected    bool
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Client is a synchronous SCMI transport client.
//
// Every Call blocks until the agent replies or the exchange deadline
// expires; the client serialises callers internally so at most one request
// is in flight on the connection.
type Client struct {
	cfg  Config
	conn io.ReadWriteCloser

	// reqMu serialises request/response exchanges.
	reqMu sync.Mutex

	// token numbers exchanges so responses can be matched to requests.
	token uint16

	closed   atomic.Bool
	logger   Logger
	loggerMu sync.RWMutex

	requestsTx   atomic.Uint64
	responsesRx  atomic.Uint64
	errorsTotal  atomic.Uint64
	lastActivity atomic.Int64 // Unix timestamp
}

// Connect establishes a connection to the SCMI agent.
//
// The endpoint URL determines the transport:
//   - "unix:///run/scmi-agent.sock" → Unix socket
//   - "tcp://localhost:7021" → TCP socket
//   - "serial:///dev/ttyS2?baud=115200" → serial link
//
// Parameters:
//   - ctx: Context for cancellation of the initial connection
//   - cfg: Connection configuration
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the connection cannot be established
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	conn, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:  cfg,
		conn: conn,
	}
	c.lastActivity.Store(time.Now().Unix())
	return c, nil
}

// dial opens the transport connection described by the endpoint URL.
func dial(ctx context.Context, cfg Config) (io.ReadWriteCloser, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint URL: %w", ErrConnectionFailed, err)
	}

	switch u.Scheme {
	case "unix", "tcp":
		address := u.Path
		if u.Scheme == "tcp" {
			address = u.Host
			if address == "" {
				address = "localhost:7021"
			}
		}

		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()

		var dialer net.Dialer
		conn, err := dialer.DialContext(ctx, u.Scheme, address)
		if err != nil {
			return nil, fmt.Errorf("%w: dial failed: %w", ErrConnectionFailed, err)
		}
		return conn, nil

	case "serial":
		baud := defaultSerialBaud
		if v := u.Query().Get("baud"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed <= 0 {
				return nil, fmt.Errorf("%w: invalid baud rate %q", ErrConnectionFailed, v)
			}
			baud = parsed
		}

		// The serial port has no per-operation deadlines, so the request
		// timeout doubles as its read timeout.
		port, err := serial.OpenPort(&serial.Config{
			Name:        u.Path,
			Baud:        baud,
			ReadTimeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: open serial port: %w", ErrConnectionFailed, err)
		}
		return port, nil

	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q (use unix, tcp or serial)",
			ErrConnectionFailed, u.Scheme)
	}
}

// Call performs one synchronous SCMI command exchange.
//
// The request payload is wrapped in a command frame, written to the agent,
// and the method blocks until the matching response frame arrives. The
// returned payload begins with the response status word; protocol clients
// decode it with Status.
//
// Parameters:
//   - ctx: Context checked before each I/O step (the exchange itself is
//     bounded by the configured request timeout)
//   - protocolID: SCMI protocol the message belongs to
//   - messageID: Protocol-specific message identifier
//   - req: Request payload (may be nil)
//
// Returns:
//   - []byte: Response payload (caller owns the slice)
//   - error: ErrTransport on I/O failure, ErrInvalidFrame on framing errors
func (c *Client) Call(ctx context.Context, protocolID, messageID uint8, req []byte) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrNotConnected
	}

	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
	default:
	}

	c.token = (c.token + 1) & headerTokenMask
	header := Header{
		MessageID:  messageID,
		Type:       TypeCommand,
		ProtocolID: protocolID,
		Token:      c.token,
	}

	deadline := time.Now().Add(c.cfg.RequestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.setDeadline(deadline)

	frame := EncodeFrame(header, req)
	if _, err := c.conn.Write(frame); err != nil {
		c.errorsTotal.Add(1)
		return nil, fmt.Errorf("%w: write: %w", ErrTransport, err)
	}
	c.requestsTx.Add(1)

	respHeader, payload, err := c.readFrame()
	if err != nil {
		c.errorsTotal.Add(1)
		return nil, err
	}

	if respHeader.ProtocolID != protocolID || respHeader.MessageID != messageID ||
		respHeader.Token != header.Token {
		c.errorsTotal.Add(1)
		return nil, fmt.Errorf("%w: response header mismatch (got protocol 0x%02X message 0x%02X token %d)",
			ErrInvalidFrame, respHeader.ProtocolID, respHeader.MessageID, respHeader.Token)
	}

	c.responsesRx.Add(1)
	c.lastActivity.Store(time.Now().Unix())

	return payload, nil
}

// readFrame reads one complete frame from the connection.
func (c *Client) readFrame() (Header, []byte, error) {
	var sizeBytes [frameLengthFieldSize]byte
	if _, err := io.ReadFull(c.conn, sizeBytes[:]); err != nil {
		return Header{}, nil, fmt.Errorf("%w: read frame length: %w", ErrTransport, err)
	}

	frameLen := binary.LittleEndian.Uint16(sizeBytes[:])
	if frameLen < 4 {
		return Header{}, nil, fmt.Errorf("%w: frame length %d below header size", ErrInvalidFrame, frameLen)
	}

	total := frameLengthFieldSize + int(frameLen)
	// An oversized frame means the stream is corrupted; there is no safe way
	// to skip an unknown number of bytes on a synchronous channel.
	if total > readBufferSize {
		return Header{}, nil, fmt.Errorf("%w: frame length %d exceeds channel size", ErrInvalidFrame, frameLen)
	}

	buf := make([]byte, total)
	copy(buf[:frameLengthFieldSize], sizeBytes[:])
	if _, err := io.ReadFull(c.conn, buf[frameLengthFieldSize:]); err != nil {
		return Header{}, nil, fmt.Errorf("%w: read frame body: %w", ErrTransport, err)
	}

	return ParseFrame(buf)
}

// setDeadline applies a deadline when the underlying connection supports
// one. Serial links rely on the port's read timeout instead.
func (c *Client) setDeadline(t time.Time) {
	if conn, ok := c.conn.(net.Conn); ok {
		if err := conn.SetDeadline(t); err != nil {
			c.logError("set deadline failed", err)
		}
	}
}

// SetLogger sets the logger for this client.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// IsConnected reports whether the client is usable.
func (c *Client) IsConnected() bool {
	return !c.closed.Load()
}

// GetStats returns current operational statistics.
func (c *Client) GetStats() Stats {
	return Stats{
		RequestsTx:   c.requestsTx.Load(),
		ResponsesRx:  c.responsesRx.Load(),
		ErrorsTotal:  c.errorsTotal.Load(),
		LastActivity: time.Unix(c.lastActivity.Load(), 0),
		Connected:    c.IsConnected(),
	}
}

// Close closes the connection. Safe to call multiple times.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// logError logs an error message if a logger is set.
func (c *Client) logError(msg string, err error) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
