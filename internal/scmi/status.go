package scmi

import "fmt"

// Status is the signed 32-bit status code leading every SCMI response
// payload.
type Status int32

// Status codes defined by the SCMI specification.
const (
	StatusSuccess       Status = 0
	StatusNotSupported  Status = -1
	StatusInvalidParams Status = -2
	StatusDenied        Status = -3
	StatusNotFound      Status = -4
	StatusOutOfRange    Status = -5
	StatusBusy          Status = -6
	StatusCommsError    Status = -7
	StatusGenericError  Status = -8
	StatusHardwareError Status = -9
	StatusProtocolError Status = -10
)

// statusNames maps status codes to their specification names.
var statusNames = map[Status]string{
	StatusSuccess:       "SUCCESS",
	StatusNotSupported:  "NOT_SUPPORTED",
	StatusInvalidParams: "INVALID_PARAMETERS",
	StatusDenied:        "DENIED",
	StatusNotFound:      "NOT_FOUND",
	StatusOutOfRange:    "OUT_OF_RANGE",
	StatusBusy:          "BUSY",
	StatusCommsError:    "COMMS_ERROR",
	StatusGenericError:  "GENERIC_ERROR",
	StatusHardwareError: "HARDWARE_ERROR",
	StatusProtocolError: "PROTOCOL_ERROR",
}

// String returns the specification name of the status code.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS(%d)", int32(s))
}

// Err translates the status into a Go error.
//
// StatusSuccess maps to nil; everything else wraps ErrProtocol so callers
// can test with errors.Is regardless of the specific remote code.
func (s Status) Err() error {
	if s == StatusSuccess {
		return nil
	}
	return fmt.Errorf("%w: agent returned %s", ErrProtocol, s)
}
