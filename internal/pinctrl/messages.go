package pinctrl

import (
	"encoding/binary"
	"fmt"

	"github.com/nerrad567/scmi-pinctrl/internal/scmi"
)

// ProtocolID identifies the pin-control protocol to the SCMI agent.
const ProtocolID uint8 = 0x19

// Pin-control message identifiers.
const (
	msgProtocolAttributes uint8 = 0x1
	msgDescribeRanges     uint8 = 0x3
	msgMuxGet             uint8 = 0x4
	msgMuxSet             uint8 = 0x5
	msgConfigGet          uint8 = 0x6
	msgConfigSetOverride  uint8 = 0x7
	msgConfigSetAppend    uint8 = 0x8
)

// Wire layout constants.
//
// The configuration messages mirror the platform ABI structures byte for
// byte. The two bytes after the pin field keep the 32-bit fields naturally
// aligned and are always zero.
const (
	// MaxMessageSize is the shared transport buffer capacity: the 128-byte
	// channel minus the 28-byte shared-memory header and 8 bytes of slack.
	MaxMessageSize = 92

	statusSize     = 4
	confHeaderSize = 12 // pin(2) + pad(2) + mask(4) + booleanValues(4)
	slotSize       = 4  // one multi-bit value

	// maxMultiBitSlots is how many multi-bit values fit in the buffer after
	// the fixed configuration header.
	maxMultiBitSlots = (MaxMessageSize - confHeaderSize) / slotSize

	// numRangesMask extracts the range count from the protocol-attributes
	// response.
	numRangesMask = 0xFFFF

	// MaxPin is the largest pin index the 16-bit wire field can carry.
	MaxPin = 0xFFFF
)

// parseStatus decodes and translates the leading status word shared by
// every response payload.
func parseStatus(payload []byte) error {
	if len(payload) < statusSize {
		return fmt.Errorf("%w: response too short for status (%d bytes)", ErrInvalidData, len(payload))
	}
	return scmi.Status(int32(binary.LittleEndian.Uint32(payload[:statusSize]))).Err()
}

// encodeMuxGetRequest builds the mux-get request: {pin u16}.
func encodeMuxGetRequest(pin uint16) []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, pin)
	return buf
}

// parseMuxGetResponse decodes {status i32, function u16}.
func parseMuxGetResponse(payload []byte) (uint16, error) {
	if err := parseStatus(payload); err != nil {
		return 0, err
	}
	if len(payload) < statusSize+2 {
		return 0, fmt.Errorf("%w: mux-get response too short (%d bytes)", ErrInvalidData, len(payload))
	}
	return binary.LittleEndian.Uint16(payload[statusSize : statusSize+2]), nil
}

// encodeMuxSetRequest builds the mux-set request:
// {numPins u8, pad u8, pin u16, function u16}. Only single-pin requests are
// issued by this client, so numPins is always 1.
func encodeMuxSetRequest(pin, function uint16) []byte {
	buf := make([]byte, 6)
	buf[0] = 1
	binary.LittleEndian.PutUint16(buf[2:4], pin)
	binary.LittleEndian.PutUint16(buf[4:6], function)
	return buf
}

// encodeConfigGetRequest builds the config-get request: {pin u16}.
func encodeConfigGetRequest(pin uint16) []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, pin)
	return buf
}

// parseConfigGetResponse decodes
// {status i32, mask u32, booleanValues u32, multiBitValues u32[]} into dst.
//
// The walk runs from mask bit 31 down to 0. Direction matters: multi-bit
// values are laid out in descending parameter order, so consuming slots in
// any other order would pair values with the wrong parameters. Whether a
// parameter takes the next slot or a bit of booleanValues comes from the
// static classification table, never from the response itself.
func parseConfigGetResponse(payload []byte, dst *ConfigSet) error {
	if err := parseStatus(payload); err != nil {
		return err
	}
	if len(payload) < statusSize+8 {
		return fmt.Errorf("%w: config-get response too short (%d bytes)", ErrInvalidData, len(payload))
	}

	mask := binary.LittleEndian.Uint32(payload[statusSize : statusSize+4])
	boolValues := binary.LittleEndian.Uint32(payload[statusSize+4 : statusSize+8])
	slots := payload[statusSize+8:]
	numSlots := len(slots) / slotSize

	slot := 0
	for bit := 31; bit >= 0; bit-- {
		if mask&(1<<bit) == 0 {
			continue
		}
		if bit >= int(NumWireParams) {
			return fmt.Errorf("%w: parameter id %d outside wire domain", ErrInvalidData, bit)
		}

		p := WireParam(bit)
		var arg uint32
		if IsMultiBit(p) {
			if slot >= numSlots {
				return fmt.Errorf("%w: response carries %d multi-bit values, need more", ErrInvalidData, numSlots)
			}
			arg = binary.LittleEndian.Uint32(slots[slot*slotSize : slot*slotSize+slotSize])
			slot++
		} else {
			arg = boolValues >> bit & 1
		}

		if err := dst.Append(p, arg); err != nil {
			return err
		}
	}

	return nil
}

// encodeConfigSetRequest builds the bulk "override" request, which replaces
// a pin's entire configuration:
// {pin u16, pad u16, mask u32, booleanValues u32, multiBitValues u32[]}.
//
// The set is sorted into descending parameter order first; that order is
// what makes the positional multiBitValues array decodable on the far side.
func encodeConfigSetRequest(pin uint16, cfg *ConfigSet) ([]byte, error) {
	cfg.SortDescending()

	var mask, boolValues uint32
	var multiBit []uint32

	for i := 0; i < cfg.Len(); i++ {
		p, arg := cfg.Entry(i)
		if p >= NumWireParams {
			return nil, fmt.Errorf("%w: parameter id %d outside wire domain", ErrInvalidArgument, p)
		}

		mask |= 1 << p

		if IsMultiBit(p) {
			if len(multiBit) >= maxMultiBitSlots {
				return nil, fmt.Errorf("%w: %d multi-bit values exceed %d slots",
					ErrCapacityExceeded, len(multiBit)+1, maxMultiBitSlots)
			}
			multiBit = append(multiBit, arg)
		} else if arg != 0 {
			boolValues |= 1 << p
		}
	}

	buf := make([]byte, confHeaderSize+len(multiBit)*slotSize)
	binary.LittleEndian.PutUint16(buf[0:2], pin)
	binary.LittleEndian.PutUint32(buf[4:8], mask)
	binary.LittleEndian.PutUint32(buf[8:12], boolValues)
	for i, v := range multiBit {
		binary.LittleEndian.PutUint32(buf[confHeaderSize+i*slotSize:], v)
	}

	return buf, nil
}

// encodeConfigAppendRequest builds the incremental "apply" request, which
// changes exactly one parameter and leaves the rest untouched. For boolean
// parameters the multi-bit field is omitted entirely, shortening the
// message.
func encodeConfigAppendRequest(pin uint16, p WireParam, arg uint32) []byte {
	size := confHeaderSize
	multiBit := IsMultiBit(p)
	if multiBit {
		size += slotSize
	}

	buf := make([]byte, size)
	binary.LittleEndian.PutUint16(buf[0:2], pin)
	binary.LittleEndian.PutUint32(buf[4:8], 1<<p)
	if multiBit {
		binary.LittleEndian.PutUint32(buf[confHeaderSize:], arg)
	} else if arg != 0 {
		binary.LittleEndian.PutUint32(buf[8:12], 1<<p)
	}

	return buf
}

// parseProtocolAttributesResponse decodes {status i32, attributes u32} and
// extracts the pin range count from the attributes word.
func parseProtocolAttributesResponse(payload []byte) (int, error) {
	if err := parseStatus(payload); err != nil {
		return 0, err
	}
	if len(payload) < statusSize+4 {
		return 0, fmt.Errorf("%w: attributes response too short (%d bytes)", ErrInvalidData, len(payload))
	}
	attributes := binary.LittleEndian.Uint32(payload[statusSize : statusSize+4])
	return int(attributes & numRangesMask), nil
}

// parseDescribeResponse decodes
// {status i32, ranges {begin u16, numPins u16}[count]}.
func parseDescribeResponse(payload []byte, count int) ([]Range, error) {
	if err := parseStatus(payload); err != nil {
		return nil, err
	}
	if len(payload) < statusSize+count*4 {
		return nil, fmt.Errorf("%w: describe response carries %d bytes, need %d",
			ErrInvalidData, len(payload)-statusSize, count*4)
	}

	ranges := make([]Range, count)
	for i := range ranges {
		off := statusSize + i*4
		ranges[i] = Range{
			Begin:   binary.LittleEndian.Uint16(payload[off : off+2]),
			NumPins: binary.LittleEndian.Uint16(payload[off+2 : off+4]),
		}
	}
	return ranges, nil
}
