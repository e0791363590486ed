package pinctrl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/nerrad567/scmi-pinctrl/internal/scmi"
)

// okStatus returns a payload holding a SUCCESS status word followed by rest.
func okStatus(rest ...byte) []byte {
	return append(make([]byte, 4), rest...)
}

// errStatus returns a payload holding the given negative status code.
func errStatus(code int32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(code))
	return buf
}

func TestEncodeMuxSetRequest(t *testing.T) {
	got := encodeMuxSetRequest(0x1234, 0x5678)

	// numPins(1), pad(0), pin LE, function LE
	want := []byte{0x01, 0x00, 0x34, 0x12, 0x78, 0x56}
	if !bytes.Equal(got, want) {
		t.Errorf("encodeMuxSetRequest() = % x, want % x", got, want)
	}
}

func TestEncodeMuxGetRequest(t *testing.T) {
	got := encodeMuxGetRequest(0xBEEF)
	want := []byte{0xEF, 0xBE}
	if !bytes.Equal(got, want) {
		t.Errorf("encodeMuxGetRequest() = % x, want % x", got, want)
	}
}

func TestParseMuxGetResponse(t *testing.T) {
	function, err := parseMuxGetResponse(okStatus(0x03, 0x00))
	if err != nil {
		t.Fatalf("parseMuxGetResponse() error = %v", err)
	}
	if function != 3 {
		t.Errorf("function = %d, want 3", function)
	}
}

func TestParseMuxGetResponse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		wantErr error
	}{
		{"platform error status", errStatus(-1), scmi.ErrProtocol},
		{"short status", []byte{0x00}, ErrInvalidData},
		{"missing function field", okStatus(0x03), ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMuxGetResponse(tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeConfigAppendRequest_Boolean(t *testing.T) {
	got := encodeConfigAppendRequest(0x0102, WireBiasPullUp, 1)

	if len(got) != confHeaderSize {
		t.Fatalf("length = %d, want %d (boolean omits the value slot)", len(got), confHeaderSize)
	}
	if pin := binary.LittleEndian.Uint16(got[0:2]); pin != 0x0102 {
		t.Errorf("pin = %#x, want 0x0102", pin)
	}
	if got[2] != 0 || got[3] != 0 {
		t.Errorf("padding bytes = %x %x, want zero", got[2], got[3])
	}
	if mask := binary.LittleEndian.Uint32(got[4:8]); mask != 1<<WireBiasPullUp {
		t.Errorf("mask = %#x, want %#x", mask, uint32(1)<<WireBiasPullUp)
	}
	if boolValues := binary.LittleEndian.Uint32(got[8:12]); boolValues != 1<<WireBiasPullUp {
		t.Errorf("booleanValues = %#x, want %#x", boolValues, uint32(1)<<WireBiasPullUp)
	}
}

func TestEncodeConfigAppendRequest_BooleanFalse(t *testing.T) {
	got := encodeConfigAppendRequest(7, WireOutputEnable, 0)

	if boolValues := binary.LittleEndian.Uint32(got[8:12]); boolValues != 0 {
		t.Errorf("booleanValues = %#x, want 0 for a cleared flag", boolValues)
	}
	if mask := binary.LittleEndian.Uint32(got[4:8]); mask != 1<<WireOutputEnable {
		t.Errorf("mask = %#x, want %#x", mask, uint32(1)<<WireOutputEnable)
	}
}

func TestEncodeConfigAppendRequest_MultiBit(t *testing.T) {
	got := encodeConfigAppendRequest(7, WireSlewRate, 9)

	if len(got) != confHeaderSize+slotSize {
		t.Fatalf("length = %d, want %d", len(got), confHeaderSize+slotSize)
	}
	if mask := binary.LittleEndian.Uint32(got[4:8]); mask != 1<<WireSlewRate {
		t.Errorf("mask = %#x, want %#x", mask, uint32(1)<<WireSlewRate)
	}
	if boolValues := binary.LittleEndian.Uint32(got[8:12]); boolValues != 0 {
		t.Errorf("booleanValues = %#x, want 0", boolValues)
	}
	if slot := binary.LittleEndian.Uint32(got[12:16]); slot != 9 {
		t.Errorf("value slot = %d, want 9", slot)
	}
}

func TestEncodeConfigSetRequest(t *testing.T) {
	var cfg ConfigSet
	// Appended out of wire order on purpose.
	for _, e := range []struct {
		p   WireParam
		arg uint32
	}{
		{WireBiasPullUp, 1},
		{WireSlewRate, 2},
		{WireDriveStrength, 6},
	} {
		if err := cfg.Append(e.p, e.arg); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := encodeConfigSetRequest(0x0042, &cfg)
	if err != nil {
		t.Fatalf("encodeConfigSetRequest() error = %v", err)
	}

	if len(got) != confHeaderSize+2*slotSize {
		t.Fatalf("length = %d, want %d", len(got), confHeaderSize+2*slotSize)
	}
	if pin := binary.LittleEndian.Uint16(got[0:2]); pin != 0x0042 {
		t.Errorf("pin = %#x, want 0x42", pin)
	}

	wantMask := uint32(1)<<WireSlewRate | 1<<WireDriveStrength | 1<<WireBiasPullUp
	if mask := binary.LittleEndian.Uint32(got[4:8]); mask != wantMask {
		t.Errorf("mask = %#x, want %#x", mask, wantMask)
	}
	if boolValues := binary.LittleEndian.Uint32(got[8:12]); boolValues != 1<<WireBiasPullUp {
		t.Errorf("booleanValues = %#x, want %#x", boolValues, uint32(1)<<WireBiasPullUp)
	}

	// Multi-bit values land in descending parameter order: slew-rate (23)
	// before drive-strength (9).
	if slot := binary.LittleEndian.Uint32(got[12:16]); slot != 2 {
		t.Errorf("first slot = %d, want slew-rate arg 2", slot)
	}
	if slot := binary.LittleEndian.Uint32(got[16:20]); slot != 6 {
		t.Errorf("second slot = %d, want drive-strength arg 6", slot)
	}
}

func TestEncodeConfigSetRequest_SlotCapacity(t *testing.T) {
	var cfg ConfigSet
	// The entry cap allows more multi-bit entries than the message buffer
	// has slots for; the encoder must reject the overflow.
	for i := 0; i <= maxMultiBitSlots; i++ {
		if err := cfg.Append(WireSlewRate, uint32(i)); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	_, err := encodeConfigSetRequest(1, &cfg)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("error = %v, want ErrCapacityExceeded", err)
	}
}

func TestParseConfigGetResponse(t *testing.T) {
	payload := okStatus(make([]byte, 12)...)
	mask := uint32(1)<<WireSlewRate | 1<<WireBiasPullUp
	binary.LittleEndian.PutUint32(payload[4:8], mask)
	binary.LittleEndian.PutUint32(payload[8:12], 1<<WireBiasPullUp)
	binary.LittleEndian.PutUint32(payload[12:16], 4) // slew-rate value

	var cfg ConfigSet
	if err := parseConfigGetResponse(payload, &cfg); err != nil {
		t.Fatalf("parseConfigGetResponse() error = %v", err)
	}

	if cfg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cfg.Len())
	}

	// The walk is descending, so slew-rate (23) decodes before pull-up (5).
	p, arg := cfg.Entry(0)
	if p != WireSlewRate || arg != 4 {
		t.Errorf("Entry(0) = (%d, %d), want (%d, 4)", p, arg, WireSlewRate)
	}
	p, arg = cfg.Entry(1)
	if p != WireBiasPullUp || arg != 1 {
		t.Errorf("Entry(1) = (%d, %d), want (%d, 1)", p, arg, WireBiasPullUp)
	}
}

func TestParseConfigGetResponse_BooleanFalse(t *testing.T) {
	payload := okStatus(make([]byte, 8)...)
	binary.LittleEndian.PutUint32(payload[4:8], 1<<WireOutputEnable)
	// booleanValues left zero: the parameter is applied with a false flag.

	var cfg ConfigSet
	if err := parseConfigGetResponse(payload, &cfg); err != nil {
		t.Fatalf("parseConfigGetResponse() error = %v", err)
	}

	p, arg := cfg.Entry(0)
	if p != WireOutputEnable || arg != 0 {
		t.Errorf("Entry(0) = (%d, %d), want (%d, 0)", p, arg, WireOutputEnable)
	}
}

func TestParseConfigGetResponse_Errors(t *testing.T) {
	outOfDomain := okStatus(make([]byte, 8)...)
	binary.LittleEndian.PutUint32(outOfDomain[4:8], 1<<31)

	missingSlot := okStatus(make([]byte, 8)...)
	binary.LittleEndian.PutUint32(missingSlot[4:8], 1<<WireSlewRate)

	tests := []struct {
		name    string
		payload []byte
		wantErr error
	}{
		{"mask bit outside wire domain", outOfDomain, ErrInvalidData},
		{"multi-bit value missing", missingSlot, ErrInvalidData},
		{"truncated header", okStatus(0x01, 0x02), ErrInvalidData},
		{"platform error status", errStatus(-4), scmi.ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg ConfigSet
			err := parseConfigGetResponse(tt.payload, &cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseProtocolAttributesResponse(t *testing.T) {
	payload := okStatus(make([]byte, 4)...)
	binary.LittleEndian.PutUint32(payload[4:8], 0xABCD0003)

	count, err := parseProtocolAttributesResponse(payload)
	if err != nil {
		t.Fatalf("parseProtocolAttributesResponse() error = %v", err)
	}
	// Only the low 16 bits carry the range count.
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestParseDescribeResponse(t *testing.T) {
	payload := okStatus(make([]byte, 8)...)
	binary.LittleEndian.PutUint16(payload[4:6], 0)
	binary.LittleEndian.PutUint16(payload[6:8], 32)
	binary.LittleEndian.PutUint16(payload[8:10], 100)
	binary.LittleEndian.PutUint16(payload[10:12], 16)

	ranges, err := parseDescribeResponse(payload, 2)
	if err != nil {
		t.Fatalf("parseDescribeResponse() error = %v", err)
	}

	want := []Range{{Begin: 0, NumPins: 32}, {Begin: 100, NumPins: 16}}
	for i, r := range want {
		if ranges[i] != r {
			t.Errorf("ranges[%d] = %+v, want %+v", i, ranges[i], r)
		}
	}
}

func TestParseDescribeResponse_Truncated(t *testing.T) {
	payload := okStatus(make([]byte, 4)...)

	_, err := parseDescribeResponse(payload, 2)
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("error = %v, want ErrInvalidData", err)
	}
}
