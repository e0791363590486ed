package pinctrl

// Range is one contiguous interval of valid pin indices advertised by the
// platform firmware.
type Range struct {
	Begin   uint16 `json:"begin"`
	NumPins uint16 `json:"num_pins"`
}

// Contains reports whether pin falls inside the range.
func (r Range) Contains(pin uint16) bool {
	return pin >= r.Begin && uint32(pin) < uint32(r.Begin)+uint32(r.NumPins)
}

// RangeTable is the ordered list of valid pin ranges. It is populated once
// during Driver initialisation and read-only afterwards; stale ranges
// require re-initialising the driver.
type RangeTable struct {
	ranges []Range
}

// Contains reports whether pin is a valid pin index.
func (t *RangeTable) Contains(pin uint16) bool {
	for _, r := range t.ranges {
		if r.Contains(pin) {
			return true
		}
	}
	return false
}

// Ranges returns a copy of the table.
func (t *RangeTable) Ranges() []Range {
	out := make([]Range, len(t.ranges))
	copy(out, t.ranges)
	return out
}

// NumPins returns the total number of valid pins across all ranges.
func (t *RangeTable) NumPins() int {
	total := 0
	for _, r := range t.ranges {
		total += int(r.NumPins)
	}
	return total
}
