package pinctrl

import "sort"

// packedConfig is one (parameter, argument) pair packed into a single 32-bit
// scalar: low 8 bits wire parameter id, upper 24 bits argument.
type packedConfig uint32

func packConfig(p WireParam, arg uint32) packedConfig {
	return packedConfig(uint32(p)&0xFF | arg<<8)
}

func (c packedConfig) param() WireParam { return WireParam(c & 0xFF) }
func (c packedConfig) arg() uint32      { return uint32(c) >> 8 }

// ConfigSet is a growable collection of packed configuration entries for one
// pin. Entries are appended in arbitrary order and sorted into wire order
// (descending parameter id) just before bulk encoding.
//
// A ConfigSet is owned by exactly one operation scope at a time: the
// configuration pass that built it, or the saved-pin entry it was moved
// into. It is not safe for concurrent use.
type ConfigSet struct {
	entries []packedConfig
}

// Append adds one (parameter, argument) pair to the set.
//
// Each wire parameter should appear at most once per pin, so the entry count
// is capped at NumWireParams; exceeding it returns ErrCapacityExceeded.
// The backing storage grows by doubling-plus-one and never shrinks.
func (s *ConfigSet) Append(p WireParam, arg uint32) error {
	if len(s.entries) >= int(NumWireParams) {
		return ErrCapacityExceeded
	}
	if len(s.entries) == cap(s.entries) {
		grown := make([]packedConfig, len(s.entries), 2*len(s.entries)+1)
		copy(grown, s.entries)
		s.entries = grown
	}
	s.entries = append(s.entries, packConfig(p, arg))
	return nil
}

// SortDescending orders entries by wire parameter id, descending. This is
// the layout the bulk "override" message requires; parameter ids are unique
// per set by construction, so no tie-break is needed.
func (s *ConfigSet) SortDescending() {
	sort.Slice(s.entries, func(i, j int) bool {
		return s.entries[i].param() > s.entries[j].param()
	})
}

// Len returns the number of entries in the set.
func (s *ConfigSet) Len() int { return len(s.entries) }

// Entry returns the i-th (parameter, argument) pair.
func (s *ConfigSet) Entry(i int) (WireParam, uint32) {
	return s.entries[i].param(), s.entries[i].arg()
}

// Clear releases the backing storage, returning the set to its empty state.
func (s *ConfigSet) Clear() { s.entries = nil }
