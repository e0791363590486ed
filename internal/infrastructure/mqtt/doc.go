// Package mqtt provides MQTT event publishing for the scmi-pinctrl daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Pin event publishing (mux changes, config changes, claims, releases)
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The daemon publishes pin state transitions so other services can observe
// hardware configuration changes without polling the HTTP API. The daemon
// never subscribes; MQTT is an outbound event surface only.
//
//	scmi-pinctrld → MQTT Broker → observers
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Event publishes are fire-and-forget; pin operations never block on
//     broker round-trips
//   - Reconnect: Exponential backoff 1s-60s
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	driver.SetEvents(mqtt.NewEventPublisher(client))
package mqtt
