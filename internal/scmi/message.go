package scmi

import (
	"encoding/binary"
	"fmt"
)

// Message header field layout within the 32-bit header word.
const (
	headerMessageIDMask  = 0xFF
	headerTypeShift      = 8
	headerTypeMask       = 0x3
	headerProtocolShift  = 10
	headerProtocolMask   = 0xFF
	headerTokenShift     = 18
	headerTokenMask      = 0x3FF
	frameHeaderSize      = 6 // length(2) + header word(4)
	frameLengthFieldSize = 2
)

// Message types carried in the header word.
const (
	// TypeCommand is a synchronous command (and its response).
	TypeCommand uint8 = 0
)

// Header is the decoded SCMI message header word.
type Header struct {
	MessageID  uint8
	Type       uint8
	ProtocolID uint8
	Token      uint16
}

// word packs the header into its 32-bit wire representation.
func (h Header) word() uint32 {
	return uint32(h.MessageID)&headerMessageIDMask |
		uint32(h.Type&headerTypeMask)<<headerTypeShift |
		uint32(h.ProtocolID&headerProtocolMask)<<headerProtocolShift |
		uint32(h.Token&headerTokenMask)<<headerTokenShift
}

// headerFromWord unpacks a 32-bit header word.
func headerFromWord(w uint32) Header {
	return Header{
		MessageID:  uint8(w & headerMessageIDMask),
		Type:       uint8(w >> headerTypeShift & headerTypeMask),
		ProtocolID: uint8(w >> headerProtocolShift & headerProtocolMask),
		Token:      uint16(w >> headerTokenShift & headerTokenMask),
	}
}

// EncodeFrame wraps a message header and payload in the stream frame format.
//
// The length field counts the header word plus payload, not itself. All
// fields are little-endian, matching the shared-memory transport convention.
//
// Returns:
//   - []byte: Complete frame ready to write to the connection
func EncodeFrame(h Header, payload []byte) []byte {
	buf := make([]byte, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(4+len(payload))) //nolint:gosec // payloads are bounded by the channel size
	binary.LittleEndian.PutUint32(buf[2:6], h.word())
	copy(buf[frameHeaderSize:], payload)
	return buf
}

// ParseFrame parses a complete frame into its header and payload.
//
// Returns:
//   - Header: Decoded message header
//   - []byte: Payload (may be empty; aliases data)
//   - error: ErrInvalidFrame if the frame is malformed
func ParseFrame(data []byte) (Header, []byte, error) {
	if len(data) < frameHeaderSize {
		return Header{}, nil, fmt.Errorf("%w: frame too short (%d bytes)", ErrInvalidFrame, len(data))
	}

	declared := binary.LittleEndian.Uint16(data[0:2])
	expected := len(data) - frameLengthFieldSize
	if int(declared) != expected {
		return Header{}, nil, fmt.Errorf("%w: length mismatch (declared %d, expected %d)",
			ErrInvalidFrame, declared, expected)
	}

	h := headerFromWord(binary.LittleEndian.Uint32(data[2:6]))

	var payload []byte
	if len(data) > frameHeaderSize {
		payload = data[frameHeaderSize:]
	}

	return h, payload, nil
}
