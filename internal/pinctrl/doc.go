// Package pinctrl implements the client side of the SCMI pin-control
// protocol: building and parsing the fixed wire message layouts, tracking
// the valid pin ranges advertised by the platform firmware, and keeping the
// driver-side state needed to restore a pin after it has been borrowed as a
// plain GPIO.
//
// # Architecture
//
// The package sits between the SCMI transport and whatever invokes pin
// operations (the HTTP ops API, the state loader, a GPIO consumer):
//
//	┌──────────────┐          ┌──────────────────┐   SCMI    ┌──────────┐
//	│  ops API /   │  calls   │     Driver       │ messages  │ platform │
//	│ state loader │─────────►│   (this pkg)     │◄─────────►│ firmware │
//	└──────────────┘          └──────────────────┘           └──────────┘
//
// # Key Responsibilities
//
//   - Translate generic pin-configuration parameters to the protocol's dense
//     wire enumeration (and back)
//   - Encode the bulk "override" and incremental "apply" configuration
//     messages within the shared transport buffer limit
//   - Discover the valid pin ranges at initialisation
//   - Save a pin's mux function and full configuration before a GPIO claim
//     and restore both on release
//
// # Wire Format
//
// All multi-byte fields are little-endian, matching the shared-memory
// transport convention. Message layouts mirror the platform ABI structures
// byte for byte, including alignment padding.
//
// # Thread Safety
//
// A Driver serialises all operations with an internal per-device lock.
// ConfigSet values are not safe for concurrent use and are owned by exactly
// one operation scope at a time.
package pinctrl
