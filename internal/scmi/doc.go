// Package scmi provides the transport used to reach the platform's System
// Control and Management Interface agent.
//
// The agent is reached over a stream connection (Unix socket, TCP, or a
// serial link) carrying framed SCMI messages. Communication is strictly
// synchronous request/response: the client serialises callers so at most one
// message is in flight, writes the request frame, and blocks until the
// matching response arrives or the transport fails.
//
// # Framing
//
// Each frame on the stream is:
//
//	Byte 0-1: frame length (little-endian) = header(4) + payload
//	Byte 2-5: SCMI message header (little-endian 32-bit word)
//	Byte 6+:  payload
//
// The message header packs message id (bits 7:0), message type (9:8),
// protocol id (17:10) and a token (27:18) used to match responses to
// requests.
//
// # Status
//
// Every response payload begins with a signed 32-bit status. Status
// translation to Go errors lives in this package so protocol clients share
// one mapping.
//
// # Thread Safety
//
// All Client methods are safe for concurrent use; calls are serialised
// internally.
package scmi
