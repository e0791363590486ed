package mqtt

import "fmt"

// Topic prefixes for the daemon's MQTT surface.
//
// Event topics use the flat scheme: scmi-pinctrl/event/{kind}/{pin}
const (
	// TopicPrefix is the base for all daemon topics.
	TopicPrefix = "scmi-pinctrl"

	// TopicPrefixEvent is the base for pin event topics.
	TopicPrefixEvent = "scmi-pinctrl/event"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "scmi-pinctrl/system"
)

// Topics provides builders for daemon MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	muxTopic := topics.PinMux(42)
//	// Returns: "scmi-pinctrl/event/mux/42"
type Topics struct{}

// PinMux returns the topic for mux change events on a pin.
//
// Example: scmi-pinctrl/event/mux/42
func (Topics) PinMux(pin uint16) string {
	return fmt.Sprintf("%s/mux/%d", TopicPrefixEvent, pin)
}

// PinConfig returns the topic for configuration change events on a pin.
//
// Example: scmi-pinctrl/event/config/42
func (Topics) PinConfig(pin uint16) string {
	return fmt.Sprintf("%s/config/%d", TopicPrefixEvent, pin)
}

// PinClaim returns the topic for GPIO claim events on a pin.
//
// Example: scmi-pinctrl/event/claim/42
func (Topics) PinClaim(pin uint16) string {
	return fmt.Sprintf("%s/claim/%d", TopicPrefixEvent, pin)
}

// PinRelease returns the topic for GPIO release events on a pin.
//
// Example: scmi-pinctrl/event/release/42
func (Topics) PinRelease(pin uint16) string {
	return fmt.Sprintf("%s/release/%d", TopicPrefixEvent, pin)
}

// SystemStatus returns the topic for daemon online/offline status.
//
// Example: scmi-pinctrl/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
