package scmi

import "errors"

// Domain errors for the SCMI transport package.
var (
	// ErrNotConnected is returned when an operation requires a connection
	// but the client is closed or never connected.
	ErrNotConnected = errors.New("scmi: not connected to agent")

	// ErrConnectionFailed is returned when the connection to the agent
	// cannot be established.
	ErrConnectionFailed = errors.New("scmi: connection to agent failed")

	// ErrTransport is returned when sending or receiving a frame fails.
	ErrTransport = errors.New("scmi: transport failure")

	// ErrInvalidFrame is returned when a received frame is malformed.
	ErrInvalidFrame = errors.New("scmi: invalid frame")

	// ErrProtocol is returned when the agent reports a non-zero status.
	ErrProtocol = errors.New("scmi: protocol error")
)
