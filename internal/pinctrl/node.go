package pinctrl

import (
	"encoding/binary"
	"fmt"
)

// Pinmux tuple layout: pin in the upper bits, mux function in the low 4.
const (
	pinmuxFuncBits = 4
	pinmuxFuncMask = 0xF
)

// Property is one named configuration-source property with its raw value.
//
// The raw encoding follows the configuration-source convention:
//   - empty: use the parameter's documented default
//   - exactly 4 bytes: a big-endian 32-bit argument
//   - anything else: a parse error
type Property struct {
	Name  string
	Value []byte
}

// Arg resolves the property's argument against the given default.
func (p Property) Arg(defaultValue uint32) (uint32, error) {
	switch len(p.Value) {
	case 0:
		return defaultValue, nil
	case 4:
		return binary.BigEndian.Uint32(p.Value), nil
	default:
		return 0, fmt.Errorf("%w: %q carries %d bytes", ErrInvalidProperty, p.Name, len(p.Value))
	}
}

// ConfigNode is one pin-mux configuration node from the configuration
// source: a set of named properties applied to every pin in the node's
// pinmux tuples. Child nodes group related definitions and are applied
// independently, one level deep.
type ConfigNode struct {
	Name       string
	Properties []Property
	PinMux     []uint32
	Children   []*ConfigNode
}

// PinMuxEntry unpacks one pinmux tuple.
func PinMuxEntry(v uint32) (pin, function uint32) {
	return v >> pinmuxFuncBits, v & pinmuxFuncMask
}

// configSet builds the node's ConfigSet from its recognised properties.
// Unrecognised property names are skipped: pinmux nodes routinely carry
// properties that belong to other bindings.
func (n *ConfigNode) configSet() (*ConfigSet, error) {
	cfg := &ConfigSet{}
	for _, prop := range n.Properties {
		mapping, ok := LookupProperty(prop.Name)
		if !ok {
			continue
		}

		arg, err := prop.Arg(mapping.Default)
		if err != nil {
			return nil, err
		}

		wire, err := Convert(mapping.Param)
		if err != nil {
			return nil, fmt.Errorf("%w: property %q", err, prop.Name)
		}

		if err := cfg.Append(wire, arg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
