package pinctrl

import (
	"context"
	"fmt"
	"sync"
)

// Transport is the synchronous send/receive primitive used to reach the
// SCMI agent. scmi.Client implements it; tests substitute fakes.
type Transport interface {
	Call(ctx context.Context, protocolID, messageID uint8, req []byte) ([]byte, error)
}

// Logger defines the logging interface used by the Driver.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// unmuxedFunction is the mux function meaning "plain GPIO, not routed to a
// peripheral".
const unmuxedFunction = 0

// Direction classifies what a pin is currently doing.
type Direction int

// Direction values reported by Driver.Direction.
const (
	// DirectionFunction means the pin is muxed to a peripheral function.
	DirectionFunction Direction = iota
	// DirectionOutput means the pin is an unmuxed GPIO driving out.
	DirectionOutput
	// DirectionInput means the pin is an unmuxed GPIO reading in.
	DirectionInput
	// DirectionUnknown means the pin is unmuxed with neither buffer enabled.
	DirectionUnknown
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case DirectionFunction:
		return "function"
	case DirectionOutput:
		return "output"
	case DirectionInput:
		return "input"
	default:
		return "unknown"
	}
}

// Driver is the client-side pin-control protocol driver for one device.
//
// All remote state (mux routing, electrical configuration) lives in the
// platform firmware; the Driver holds only the discovered pin ranges and
// the saved state of pins currently borrowed as GPIOs.
//
// Thread Safety: all methods are safe for concurrent use; operations are
// serialised by a per-device lock so multi-step sequences (claim, release,
// node application) never interleave.
type Driver struct {
	transport Transport

	mu     sync.Mutex
	ranges RangeTable
	saved  savedPinRegistry

	logger Logger
	events Events
}

// New creates a Driver speaking through the given transport.
//
// The driver is not usable until Init has discovered the pin ranges.
func New(transport Transport) *Driver {
	return &Driver{
		transport: transport,
		logger:    noopLogger{},
		events:    noopEvents{},
	}
}

// SetLogger sets the logger for the driver.
func (d *Driver) SetLogger(logger Logger) {
	d.logger = logger
}

// SetEvents sets the event sink for pin state transitions.
func (d *Driver) SetEvents(events Events) {
	d.events = events
}

// Init queries the agent for the valid pin ranges.
//
// Two requests are issued: protocol attributes (carrying the range count in
// the low 16 bits of the attributes word) and describe-ranges (carrying the
// records themselves). The range table is immutable afterwards.
func (d *Driver) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	payload, err := d.transport.Call(ctx, ProtocolID, msgProtocolAttributes, nil)
	if err != nil {
		return fmt.Errorf("querying protocol attributes: %w", err)
	}
	count, err := parseProtocolAttributesResponse(payload)
	if err != nil {
		return fmt.Errorf("querying protocol attributes: %w", err)
	}

	payload, err = d.transport.Call(ctx, ProtocolID, msgDescribeRanges, nil)
	if err != nil {
		return fmt.Errorf("describing pin ranges: %w", err)
	}
	ranges, err := parseDescribeResponse(payload, count)
	if err != nil {
		return fmt.Errorf("describing pin ranges: %w", err)
	}

	d.ranges = RangeTable{ranges: ranges}
	d.logger.Info("pin ranges discovered", "ranges", count, "pins", d.ranges.NumPins())
	return nil
}

// Ranges returns the discovered pin ranges.
func (d *Driver) Ranges() []Range {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ranges.Ranges()
}

// ValidPin reports whether pin falls inside a discovered range.
func (d *Driver) ValidPin(pin uint16) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ranges.Contains(pin)
}

// ClaimedPins returns the pins currently borrowed as GPIOs.
func (d *Driver) ClaimedPins() []uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saved.pins()
}

// checkPin narrows a pin index to the 16-bit wire width.
func checkPin(pin uint32) (uint16, error) {
	if pin > MaxPin {
		return 0, fmt.Errorf("%w: pin %d exceeds 16-bit wire width", ErrInvalidArgument, pin)
	}
	return uint16(pin), nil
}

// SetMux routes a pin to a mux function.
func (d *Driver) SetMux(ctx context.Context, pin, function uint32) error {
	p, err := checkPin(pin)
	if err != nil {
		return err
	}
	if function > MaxPin {
		return fmt.Errorf("%w: function %d exceeds 16-bit wire width", ErrInvalidArgument, function)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setMux(ctx, p, uint16(function))
}

// setMux issues a mux-set exchange. Caller holds the lock.
func (d *Driver) setMux(ctx context.Context, pin, function uint16) error {
	payload, err := d.transport.Call(ctx, ProtocolID, msgMuxSet, encodeMuxSetRequest(pin, function))
	if err != nil {
		return fmt.Errorf("setting mux for pin %d: %w", pin, err)
	}
	if err := parseStatus(payload); err != nil {
		return fmt.Errorf("setting mux for pin %d: %w", pin, err)
	}

	d.logger.Debug("mux set", "pin", pin, "function", function)
	d.events.MuxChanged(pin, function)
	return nil
}

// getMux issues a mux-get exchange. Caller holds the lock.
func (d *Driver) getMux(ctx context.Context, pin uint16) (uint16, error) {
	payload, err := d.transport.Call(ctx, ProtocolID, msgMuxGet, encodeMuxGetRequest(pin))
	if err != nil {
		return 0, fmt.Errorf("reading mux for pin %d: %w", pin, err)
	}
	function, err := parseMuxGetResponse(payload)
	if err != nil {
		return 0, fmt.Errorf("reading mux for pin %d: %w", pin, err)
	}
	return function, nil
}

// SetConfig applies a single generic configuration parameter to a pin via
// the incremental "apply" message. A parameter with no wire mapping is a
// hard failure here, unlike in node property parsing.
func (d *Driver) SetConfig(ctx context.Context, pin uint32, param Param, arg uint32) error {
	p, err := checkPin(pin)
	if err != nil {
		return err
	}

	wire, err := Convert(param)
	if err != nil {
		return fmt.Errorf("%w: generic parameter %d", err, param)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	payload, err := d.transport.Call(ctx, ProtocolID, msgConfigSetAppend,
		encodeConfigAppendRequest(p, wire, arg))
	if err != nil {
		return fmt.Errorf("applying config to pin %d: %w", p, err)
	}
	if err := parseStatus(payload); err != nil {
		return fmt.Errorf("applying config to pin %d: %w", p, err)
	}

	d.logger.Debug("config applied", "pin", p, "param", wire, "arg", arg)
	return nil
}

// setConfigs issues a bulk "override" exchange replacing the pin's entire
// configuration. Caller holds the lock.
func (d *Driver) setConfigs(ctx context.Context, pin uint16, cfg *ConfigSet) error {
	req, err := encodeConfigSetRequest(pin, cfg)
	if err != nil {
		return err
	}

	payload, err := d.transport.Call(ctx, ProtocolID, msgConfigSetOverride, req)
	if err != nil {
		return fmt.Errorf("overriding config for pin %d: %w", pin, err)
	}
	if err := parseStatus(payload); err != nil {
		return fmt.Errorf("overriding config for pin %d: %w", pin, err)
	}

	d.events.ConfigApplied(pin, cfg.Len())
	return nil
}

// getConfig issues a config-get exchange and decodes the full configuration
// into a fresh ConfigSet. Caller holds the lock.
func (d *Driver) getConfig(ctx context.Context, pin uint16) (*ConfigSet, error) {
	payload, err := d.transport.Call(ctx, ProtocolID, msgConfigGet, encodeConfigGetRequest(pin))
	if err != nil {
		return nil, fmt.Errorf("reading config for pin %d: %w", pin, err)
	}

	cfg := &ConfigSet{}
	if err := parseConfigGetResponse(payload, cfg); err != nil {
		return nil, fmt.Errorf("reading config for pin %d: %w", pin, err)
	}
	return cfg, nil
}

// ApplyNode applies one configuration node: its recognised properties are
// collected into a single ConfigSet, then each pinmux tuple gets a mux-set
// followed by a bulk configuration override. Child nodes are applied the
// same way, one level deep.
//
// The first failure aborts and propagates; pins already processed are not
// rolled back. Callers must treat node application as pin-by-pin atomic
// only.
func (d *Driver) ApplyNode(ctx context.Context, node *ConfigNode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.applySubnode(ctx, node); err != nil {
		return fmt.Errorf("applying node %q: %w", node.Name, err)
	}

	for _, child := range node.Children {
		if err := d.applySubnode(ctx, child); err != nil {
			return fmt.Errorf("applying node %q: %w", child.Name, err)
		}
	}

	return nil
}

// applySubnode applies a single node level. Caller holds the lock.
func (d *Driver) applySubnode(ctx context.Context, node *ConfigNode) error {
	if len(node.PinMux) == 0 {
		// Not a pinmux node; nothing to apply.
		return nil
	}

	cfg, err := node.configSet()
	if err != nil {
		return err
	}
	defer cfg.Clear()

	for _, tuple := range node.PinMux {
		pin, function := PinMuxEntry(tuple)
		p, err := checkPin(pin)
		if err != nil {
			return err
		}

		if err := d.setMux(ctx, p, uint16(function)); err != nil {
			return err
		}
		if err := d.setConfigs(ctx, p, cfg); err != nil {
			return err
		}
	}

	d.logger.Info("config node applied", "node", node.Name, "pins", len(node.PinMux))
	return nil
}

// Claim borrows a pin as a plain GPIO.
//
// The pin's current mux function and full configuration are read and saved,
// then the pin is switched to the unmuxed function. The sequence is
// all-or-nothing: any failure leaves no saved entry and the pin untouched
// except for steps the firmware already processed.
//
// Claiming a pin that already has a saved entry returns ErrAlreadyClaimed.
func (d *Driver) Claim(ctx context.Context, pin uint32) error {
	p, err := checkPin(pin)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.saved.lookup(p) != nil {
		return fmt.Errorf("%w: pin %d", ErrAlreadyClaimed, p)
	}

	function, err := d.getMux(ctx, p)
	if err != nil {
		return fmt.Errorf("claiming pin %d: %w", p, err)
	}

	cfg, err := d.getConfig(ctx, p)
	if err != nil {
		return fmt.Errorf("claiming pin %d: %w", p, err)
	}

	if err := d.setMux(ctx, p, unmuxedFunction); err != nil {
		cfg.Clear()
		return fmt.Errorf("claiming pin %d: %w", p, err)
	}

	d.saved.add(&savedPin{pin: p, function: function, cfg: cfg})
	d.logger.Info("pin claimed as gpio", "pin", p, "saved_function", function)
	d.events.PinClaimed(p, function)
	return nil
}

// Release returns a borrowed pin to its saved mux function and
// configuration.
//
// The saved entry is consumed either way: if a restore step fails the error
// propagates, but the entry is not kept for a retry — the caller decides
// how to recover, typically by reconfiguring the pin explicitly.
func (d *Driver) Release(ctx context.Context, pin uint32) error {
	p, err := checkPin(pin)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entry := d.saved.lookup(p)
	if entry == nil {
		return fmt.Errorf("%w: pin %d", ErrNotFound, p)
	}

	restoreErr := d.setMux(ctx, p, entry.function)
	if restoreErr == nil {
		restoreErr = d.setConfigs(ctx, p, entry.cfg)
	}

	function := entry.function
	d.saved.remove(p)

	if restoreErr != nil {
		return fmt.Errorf("releasing pin %d: %w", p, restoreErr)
	}

	d.logger.Info("pin released", "pin", p, "restored_function", function)
	d.events.PinReleased(p, function)
	return nil
}

// Direction reports what a pin is currently doing.
//
// A pin muxed to any non-zero function is DirectionFunction. An unmuxed pin
// is classified by its output-enable and input-enable configuration;
// neither enabled means DirectionUnknown.
func (d *Driver) Direction(ctx context.Context, pin uint32) (Direction, error) {
	p, err := checkPin(pin)
	if err != nil {
		return DirectionUnknown, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	function, err := d.getMux(ctx, p)
	if err != nil {
		return DirectionUnknown, err
	}
	if function != unmuxedFunction {
		return DirectionFunction, nil
	}

	cfg, err := d.getConfig(ctx, p)
	if err != nil {
		return DirectionUnknown, err
	}
	defer cfg.Clear()

	// At most one of the buffer-enable parameters should be set; if both
	// are, the later entry wins.
	dir := DirectionUnknown
	for i := 0; i < cfg.Len(); i++ {
		param, arg := cfg.Entry(i)
		switch {
		case param == WireOutputEnable && arg == 1:
			dir = DirectionOutput
		case param == WireInputEnable && arg == 1:
			dir = DirectionInput
		}
	}
	return dir, nil
}

// GetMux reads a pin's current mux function.
func (d *Driver) GetMux(ctx context.Context, pin uint32) (uint16, error) {
	p, err := checkPin(pin)
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.getMux(ctx, p)
}

// GetConfig reads a pin's full configuration as (parameter, argument)
// pairs in descending parameter order.
func (d *Driver) GetConfig(ctx context.Context, pin uint32) ([]ConfigEntry, error) {
	p, err := checkPin(pin)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cfg, err := d.getConfig(ctx, p)
	if err != nil {
		return nil, err
	}
	defer cfg.Clear()

	entries := make([]ConfigEntry, cfg.Len())
	for i := range entries {
		param, arg := cfg.Entry(i)
		entries[i] = ConfigEntry{Param: param, Arg: arg}
	}
	return entries, nil
}

// ConfigEntry is one decoded (parameter, argument) pair, exposed to the
// ops API.
type ConfigEntry struct {
	Param WireParam `json:"param"`
	Arg   uint32    `json:"arg"`
}
