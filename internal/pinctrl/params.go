package pinctrl

// Param is a generic pin-configuration parameter as named by configuration
// sources and the GPIO framework. It is deliberately distinct from the wire
// enumeration: the two evolve independently and are bridged by Convert.
type Param uint8

// Generic configuration parameters, in the conventional pinconf order.
const (
	ParamBiasBusHold Param = iota
	ParamBiasDisable
	ParamBiasHighImpedance
	ParamBiasPullDown
	ParamBiasPullPinDefault
	ParamBiasPullUp
	ParamDriveOpenDrain
	ParamDriveOpenSource
	ParamDrivePushPull
	ParamDriveStrength
	ParamDriveStrengthUA
	ParamInputDebounce
	ParamInputEnable
	ParamInputSchmitt
	ParamInputSchmittEnable
	ParamLowPowerMode
	ParamOutputEnable
	ParamOutput
	ParamPowerSource
	ParamSleepHardwareState
	ParamSlewRate
	ParamSkewDelay

	numParams
)

// WireParam is the protocol's dense numbering of configuration parameters.
//
// The order is part of the wire contract: the bulk configuration message
// sorts entries by descending WireParam, and the configuration-get response
// interleaves multi-bit values in the same order. Do not reorder.
type WireParam uint8

// Wire parameters, exactly as enumerated by the protocol specification.
const (
	WireBiasBusHold WireParam = iota
	WireBiasDisable
	WireBiasHighImpedance
	WireBiasPullDown
	WireBiasPullPinDefault
	WireBiasPullUp
	WireDriveOpenDrain
	WireDriveOpenSource
	WireDrivePushPull
	WireDriveStrength
	WireDriveStrengthUA
	WireInputDebounce
	WireInputEnable
	WireInputSchmitt
	WireInputSchmittEnable
	WireModeLowPower
	WireModePWM
	WireOutput
	WireOutputEnable
	WirePersistState
	WirePowerSource
	WireSkewDelay
	WireSleepHardwareState
	WireSlewRate

	// NumWireParams is the count of distinct wire parameters. Both the
	// "applied" mask and the classification table are 32-bit bitmasks, so
	// this must never exceed 32.
	NumWireParams
)

// multiBitParams classifies which wire parameters carry a multi-bit argument
// (one slot in the value array) rather than a single boolean flag. The
// classification is static protocol knowledge, never derived from responses:
// the two value encodings are interleaved positionally on the wire, so the
// decoder must already know which is which.
const multiBitParams uint32 = 1<<WireSlewRate |
	1<<WireSkewDelay |
	1<<WirePowerSource |
	1<<WireModeLowPower |
	1<<WireInputSchmitt |
	1<<WireInputDebounce |
	1<<WireDriveStrengthUA |
	1<<WireDriveStrength

// IsMultiBit reports whether p carries a multi-bit argument on the wire.
// p must be below NumWireParams; callers validate range first.
func IsMultiBit(p WireParam) bool {
	return multiBitParams&(1<<p) != 0
}

// paramToWire maps generic parameters to their wire equivalents. Parameters
// absent from the map have no wire representation on this platform.
var paramToWire = map[Param]WireParam{
	ParamBiasBusHold:        WireBiasBusHold,
	ParamBiasDisable:        WireBiasDisable,
	ParamBiasHighImpedance:  WireBiasHighImpedance,
	ParamBiasPullDown:       WireBiasPullDown,
	ParamBiasPullPinDefault: WireBiasPullPinDefault,
	ParamBiasPullUp:         WireBiasPullUp,
	ParamDriveOpenDrain:     WireDriveOpenDrain,
	ParamDriveOpenSource:    WireDriveOpenSource,
	ParamDrivePushPull:      WireDrivePushPull,
	ParamDriveStrength:      WireDriveStrength,
	ParamDriveStrengthUA:    WireDriveStrengthUA,
	ParamInputDebounce:      WireInputDebounce,
	ParamInputEnable:        WireInputEnable,
	ParamInputSchmitt:       WireInputSchmitt,
	ParamInputSchmittEnable: WireInputSchmittEnable,
	ParamLowPowerMode:       WireModeLowPower,
	ParamOutputEnable:       WireOutputEnable,
	ParamOutput:             WireOutput,
	ParamPowerSource:        WirePowerSource,
	ParamSleepHardwareState: WireSleepHardwareState,
	ParamSlewRate:           WireSlewRate,
	ParamSkewDelay:          WireSkewDelay,
}

// Convert translates a generic parameter to its wire equivalent.
//
// Returns ErrNotSupported when the parameter has no wire mapping. Callers
// iterating a property list treat that as "skip this property"; the
// single-parameter set path treats it as a hard failure.
func Convert(p Param) (WireParam, error) {
	w, ok := paramToWire[p]
	if !ok {
		return 0, ErrNotSupported
	}
	return w, nil
}

// PropertyParam describes one named configuration-source property: the
// generic parameter it sets and the argument used when the property carries
// no explicit value.
type PropertyParam struct {
	Name    string
	Param   Param
	Default uint32
}

// propertyParams is the table of recognised configuration-source property
// names. Unrecognised names are silently skipped by property parsing; they
// belong to other bindings, not to pin configuration.
var propertyParams = []PropertyParam{
	{"bias-pull-up", ParamBiasPullUp, 1},
	{"bias-pull-down", ParamBiasPullDown, 1},
	{"bias-disable", ParamBiasDisable, 1},
	{"input-enable", ParamInputEnable, 1},
	{"input-disable", ParamInputEnable, 0},
	{"output-enable", ParamOutputEnable, 1},
	{"output-disable", ParamOutputEnable, 0},
	{"slew-rate", ParamSlewRate, 4},
	{"drive-open-drain", ParamDriveOpenDrain, 1},
	{"drive-push-pull", ParamDrivePushPull, 1},
}

// LookupProperty returns the parameter mapping for a property name, or
// false when the name is not a pin-configuration property.
func LookupProperty(name string) (PropertyParam, bool) {
	for _, p := range propertyParams {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyParam{}, false
}

// PropertyNames returns the recognised property names in table order.
// Used by the ops API to report what the daemon understands.
func PropertyNames() []string {
	names := make([]string, len(propertyParams))
	for i, p := range propertyParams {
		names[i] = p.Name
	}
	return names
}
