package pinctrl

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeStateFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "states.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing state file: %v", err)
	}
	return path
}

func TestLoadStates(t *testing.T) {
	path := writeStateFile(t, `
states:
  - name: uart2-default
    pinmux:
      - pin: 5
        function: 2
      - pin: 6
        function: 2
    properties:
      - name: bias-pull-up
      - name: slew-rate
        value: 2
  - name: spi0
    children:
      - name: clkgrp
        pinmux:
          - pin: 10
            function: 3
`)

	nodes, err := LoadStates(path)
	if err != nil {
		t.Fatalf("LoadStates() error = %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("len(nodes) = %d, want 2", len(nodes))
	}

	uart := nodes[0]
	if uart.Name != "uart2-default" {
		t.Errorf("Name = %q, want uart2-default", uart.Name)
	}
	wantMux := []uint32{5<<4 | 2, 6<<4 | 2}
	if len(uart.PinMux) != 2 || uart.PinMux[0] != wantMux[0] || uart.PinMux[1] != wantMux[1] {
		t.Errorf("PinMux = %v, want %v", uart.PinMux, wantMux)
	}

	if len(uart.Properties) != 2 {
		t.Fatalf("len(Properties) = %d, want 2", len(uart.Properties))
	}
	if uart.Properties[0].Value != nil {
		t.Errorf("bias-pull-up Value = %v, want nil (documented default)", uart.Properties[0].Value)
	}
	// Explicit values are encoded as 4-byte big-endian cells.
	if !bytes.Equal(uart.Properties[1].Value, []byte{0, 0, 0, 2}) {
		t.Errorf("slew-rate Value = %v, want big-endian 2", uart.Properties[1].Value)
	}

	spi := nodes[1]
	if len(spi.Children) != 1 || spi.Children[0].Name != "clkgrp" {
		t.Fatalf("Children = %+v, want one child clkgrp", spi.Children)
	}
	if len(spi.Children[0].PinMux) != 1 || spi.Children[0].PinMux[0] != 10<<4|3 {
		t.Errorf("child PinMux = %v, want [%d]", spi.Children[0].PinMux, 10<<4|3)
	}
}

func TestLoadStates_MissingFile(t *testing.T) {
	_, err := LoadStates(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadStates() expected error for missing file")
	}
}

func TestLoadStates_InvalidYAML(t *testing.T) {
	path := writeStateFile(t, "states: [unclosed")

	_, err := LoadStates(path)
	if err == nil {
		t.Fatal("LoadStates() expected error for invalid YAML")
	}
}

func TestLoadStates_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"missing state name",
			`
states:
  - pinmux:
      - pin: 1
        function: 1
`,
		},
		{
			"pin exceeds wire width",
			`
states:
  - name: bad
    pinmux:
      - pin: 65536
        function: 1
`,
		},
		{
			"function exceeds tuple field",
			`
states:
  - name: bad
    pinmux:
      - pin: 1
        function: 16
`,
		},
		{
			"missing property name",
			`
states:
  - name: bad
    properties:
      - value: 1
`,
		},
		{
			"nested beyond one level",
			`
states:
  - name: top
    children:
      - name: mid
        children:
          - name: deep
            pinmux:
              - pin: 1
                function: 1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeStateFile(t, tt.content)

			_, err := LoadStates(path)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("LoadStates() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}
