// scmi-pinctrld - SCMI pin-control daemon
//
// This is the main entry point for the pin-control daemon. It connects to
// an SCMI platform agent, discovers the pin domain, applies configured pin
// states, and exposes pin operations over a local HTTP API with optional
// MQTT event publishing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/scmi-pinctrl/internal/api"
	"github.com/nerrad567/scmi-pinctrl/internal/infrastructure/config"
	"github.com/nerrad567/scmi-pinctrl/internal/infrastructure/logging"
	"github.com/nerrad567/scmi-pinctrl/internal/infrastructure/mqtt"
	"github.com/nerrad567/scmi-pinctrl/internal/pinctrl"
	"github.com/nerrad567/scmi-pinctrl/internal/scmi"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting scmi-pinctrld",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to the SCMI agent
	client, err := scmi.Connect(ctx, scmi.Config{
		Endpoint:       cfg.SCMI.Endpoint,
		ConnectTimeout: cfg.GetConnectTimeout(),
		RequestTimeout: cfg.GetRequestTimeout(),
	})
	if err != nil {
		return fmt.Errorf("connecting to SCMI agent: %w", err)
	}
	defer func() {
		log.Info("closing SCMI connection")
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing SCMI connection", "error", closeErr)
		}
	}()
	client.SetLogger(log.With("component", "scmi"))
	log.Info("SCMI agent connected", "endpoint", cfg.SCMI.Endpoint)

	// Initialise the pin driver and discover the pin domain
	driver := pinctrl.New(client)
	driver.SetLogger(log.With("component", "pinctrl"))

	if err := driver.Init(ctx); err != nil {
		return fmt.Errorf("initialising pin driver: %w", err)
	}
	ranges := driver.Ranges()
	numPins := 0
	for _, rng := range ranges {
		numPins += int(rng.NumPins)
	}
	log.Info("pin domain discovered", "ranges", len(ranges), "pins", numPins)

	// Connect to MQTT broker (optional) and wire pin events
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", cfg.MQTT.Broker,
			"client_id", cfg.MQTT.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		driver.SetEvents(mqtt.NewEventPublisher(mqttClient))
	} else {
		log.Info("MQTT disabled")
	}

	// Load pin states and apply the startup set
	states, err := loadStates(ctx, cfg, driver, log)
	if err != nil {
		return err
	}

	// Start the HTTP API
	server, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log.With("component", "api"),
		Driver:  driver,
		States:  states,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, server, mqttClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. MQTT (if enabled)
	// 3. SCMI connection

	log.Info("scmi-pinctrld stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SCMIPIN_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SCMIPIN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadStates reads the pin-state file (if configured) and applies the
// startup states in the configured order.
//
// Parameters:
//   - ctx: Context for cancellation
//   - cfg: Application configuration
//   - driver: Initialised pin driver
//   - log: Logger instance
//
// Returns:
//   - []*pinctrl.ConfigNode: All loaded states (for the API)
//   - error: If the file cannot be loaded or a startup state fails
func loadStates(ctx context.Context, cfg *config.Config, driver *pinctrl.Driver, log *logging.Logger) ([]*pinctrl.ConfigNode, error) {
	if cfg.Pins.StateFile == "" {
		if len(cfg.Pins.ApplyOnStart) > 0 {
			return nil, fmt.Errorf("pins.apply_on_start requires pins.state_file")
		}
		log.Info("no pin-state file configured")
		return nil, nil
	}

	states, err := pinctrl.LoadStates(cfg.Pins.StateFile)
	if err != nil {
		return nil, fmt.Errorf("loading pin states: %w", err)
	}
	log.Info("pin states loaded", "path", cfg.Pins.StateFile, "states", len(states))

	byName := make(map[string]*pinctrl.ConfigNode, len(states))
	for _, node := range states {
		byName[node.Name] = node
	}

	for _, name := range cfg.Pins.ApplyOnStart {
		node, found := byName[name]
		if !found {
			return nil, fmt.Errorf("startup state %q not found in %s", name, cfg.Pins.StateFile)
		}
		if err := driver.ApplyNode(ctx, node); err != nil {
			return nil, fmt.Errorf("applying startup state %q: %w", name, err)
		}
		log.Info("startup state applied", "state", name)
	}

	return states, nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - server: API server to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, server *api.Server, mqttClient *mqtt.Client) error {
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	return nil
}
