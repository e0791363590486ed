package pinctrl

import (
	"encoding/binary"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StateFile is the root of the pin-state YAML file. Each state is a named
// configuration node the daemon can apply on demand (or at startup).
type StateFile struct {
	States []StateNode `yaml:"states"`
}

// StateNode is the YAML form of one configuration node.
type StateNode struct {
	// Name identifies the state; required and unique at each level.
	Name string `yaml:"name"`

	// PinMux lists the pins this node configures and the mux function each
	// is routed to.
	PinMux []PinMuxSpec `yaml:"pinmux"`

	// Properties lists named configuration properties in application order.
	// A property with no value uses the parameter's documented default.
	Properties []PropertySpec `yaml:"properties"`

	// Children groups related pinmux definitions under one state. Only one
	// level of nesting is supported.
	Children []StateNode `yaml:"children"`
}

// PinMuxSpec is one pin/function pair.
type PinMuxSpec struct {
	Pin      uint32 `yaml:"pin"`
	Function uint32 `yaml:"function"`
}

// PropertySpec is one named property with an optional explicit value.
type PropertySpec struct {
	Name  string  `yaml:"name"`
	Value *uint32 `yaml:"value"`
}

// LoadStates reads and compiles a pin-state file.
//
// Parameters:
//   - path: Path to the YAML state file
//
// Returns:
//   - []*ConfigNode: Compiled nodes in file order
//   - error: If the file cannot be read, parsed or validated
func LoadStates(path string) ([]*ConfigNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var file StateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing state file: %w", err)
	}

	nodes := make([]*ConfigNode, 0, len(file.States))
	for i := range file.States {
		node, err := compileState(&file.States[i], true)
		if err != nil {
			return nil, fmt.Errorf("state %q: %w", file.States[i].Name, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// compileState turns a StateNode into the ConfigNode boundary form,
// encoding explicit property values as 4-byte big-endian arguments and
// packing pinmux tuples as pin<<4 | function.
func compileState(s *StateNode, allowChildren bool) (*ConfigNode, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("%w: state name is required", ErrInvalidArgument)
	}

	node := &ConfigNode{Name: s.Name}

	for _, pm := range s.PinMux {
		if pm.Pin > MaxPin {
			return nil, fmt.Errorf("%w: pin %d exceeds 16-bit wire width", ErrInvalidArgument, pm.Pin)
		}
		if pm.Function > pinmuxFuncMask {
			return nil, fmt.Errorf("%w: function %d does not fit the 4-bit tuple field",
				ErrInvalidArgument, pm.Function)
		}
		node.PinMux = append(node.PinMux, pm.Pin<<pinmuxFuncBits|pm.Function)
	}

	for _, p := range s.Properties {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: property name is required", ErrInvalidArgument)
		}
		prop := Property{Name: p.Name}
		if p.Value != nil {
			prop.Value = make([]byte, 4)
			binary.BigEndian.PutUint32(prop.Value, *p.Value)
		}
		node.Properties = append(node.Properties, prop)
	}

	for i := range s.Children {
		if !allowChildren {
			return nil, fmt.Errorf("%w: states nest at most one level", ErrInvalidArgument)
		}
		child, err := compileState(&s.Children[i], false)
		if err != nil {
			return nil, fmt.Errorf("child %q: %w", s.Children[i].Name, err)
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}
