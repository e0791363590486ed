package pinctrl

// savedPin records a pin's pre-claim state: the mux function it was routed
// to and its full configuration set. The entry owns the ConfigSet from the
// moment it is inserted until Release frees it.
type savedPin struct {
	pin      uint16
	function uint16
	cfg      *ConfigSet
}

// savedPinRegistry is the per-driver collection of borrowed pins, keyed by
// pin number. Insertion order is preserved but carries no meaning; the
// registry is small (pins borrowed as GPIOs are rare) so a list keeps the
// removal pattern simple.
//
// The registry is guarded by the owning Driver's lock.
type savedPinRegistry struct {
	entries []*savedPin
}

// lookup returns the saved entry for pin, or nil.
func (r *savedPinRegistry) lookup(pin uint16) *savedPin {
	for _, e := range r.entries {
		if e.pin == pin {
			return e
		}
	}
	return nil
}

// add inserts a new entry. The caller has verified no entry exists for the
// pin.
func (r *savedPinRegistry) add(e *savedPin) {
	r.entries = append(r.entries, e)
}

// remove deletes the entry for pin and returns whether it was present.
func (r *savedPinRegistry) remove(pin uint16) bool {
	for i, e := range r.entries {
		if e.pin == pin {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			e.cfg.Clear()
			return true
		}
	}
	return false
}

// pins returns the currently borrowed pin numbers in insertion order.
func (r *savedPinRegistry) pins() []uint16 {
	out := make([]uint16, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.pin
	}
	return out
}
