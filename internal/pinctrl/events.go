package pinctrl

// Events receives notifications about pin state transitions. The daemon
// wires an MQTT-backed implementation; tests and the zero-value Driver use
// the no-op default.
//
// Callbacks are invoked synchronously with the driver lock held and must
// not call back into the Driver.
type Events interface {
	// MuxChanged is emitted after a successful mux-set.
	MuxChanged(pin, function uint16)

	// ConfigApplied is emitted after a successful bulk configuration set.
	ConfigApplied(pin uint16, numEntries int)

	// PinClaimed is emitted after a pin is borrowed as a GPIO.
	PinClaimed(pin, savedFunction uint16)

	// PinReleased is emitted after a borrowed pin is restored.
	PinReleased(pin, restoredFunction uint16)
}

// noopEvents discards all notifications.
type noopEvents struct{}

func (noopEvents) MuxChanged(uint16, uint16) {}
func (noopEvents) ConfigApplied(uint16, int) {}
func (noopEvents) PinClaimed(uint16, uint16) {}
func (noopEvents) PinReleased(uint16, uint16) {}
