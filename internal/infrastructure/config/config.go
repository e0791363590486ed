package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the SCMI pin-control
// daemon. All configuration is loaded from YAML and can be overridden by
// environment variables.
type Config struct {
	SCMI    SCMIConfig    `yaml:"scmi"`
	Pins    PinsConfig    `yaml:"pins"`
	API     APIConfig     `yaml:"api"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Logging LoggingConfig `yaml:"logging"`
}

// SCMIConfig contains SCMI agent connection settings.
type SCMIConfig struct {
	// Endpoint is the agent connection URL.
	// Supported formats:
	//   - "unix:///run/scmi-agent.sock" (Unix socket)
	//   - "tcp://localhost:7021" (TCP)
	//   - "serial:///dev/ttyS2?baud=115200" (serial link)
	Endpoint string `yaml:"endpoint"`

	// ConnectTimeout is the maximum time to wait for connection (seconds).
	ConnectTimeout int `yaml:"connect_timeout"`

	// RequestTimeout bounds one request/response exchange (seconds).
	RequestTimeout int `yaml:"request_timeout"`
}

// PinsConfig contains pin-state settings.
type PinsConfig struct {
	// StateFile is the path to the YAML pin-state definitions. Optional;
	// without it the daemon serves only ad-hoc operations.
	StateFile string `yaml:"state_file"`

	// ApplyOnStart lists state names to apply after initialisation, in
	// file order of this list.
	ApplyOnStart []string `yaml:"apply_on_start"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// MQTTConfig contains MQTT broker connection settings for pin events.
type MQTTConfig struct {
	// Enabled turns event publishing on. The daemon is fully functional
	// without a broker.
	Enabled bool `yaml:"enabled"`

	// Broker is the MQTT broker URL, e.g. "tcp://localhost:1883".
	Broker string `yaml:"broker"`

	// ClientID identifies this client to the broker.
	ClientID string `yaml:"client_id"`

	// Username for broker authentication (optional).
	Username string `yaml:"username"`

	// Password for broker authentication (optional). Never logged; see
	// String().
	Password string `yaml:"password"`

	// QoS is the MQTT quality of service level (0, 1, or 2).
	QoS int `yaml:"qos"`
}

// String returns a representation with the password masked, safe for
// logging.
func (m MQTTConfig) String() string {
	password := ""
	if m.Password != "" {
		password = "[REDACTED]"
	}
	return fmt.Sprintf("MQTTConfig{Enabled:%t, Broker:%q, ClientID:%q, Username:%q, Password:%s, QoS:%d}",
		m.Enabled, m.Broker, m.ClientID, m.Username, password, m.QoS)
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is the log output format: json or text.
	Format string `yaml:"format"`

	// Output is the log destination: stdout or stderr.
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SCMIPIN_SECTION_KEY
// For example: SCMIPIN_SCMI_ENDPOINT, SCMIPIN_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		SCMI: SCMIConfig{
			Endpoint:       "unix:///run/scmi-agent.sock",
			ConnectTimeout: 10,
			RequestTimeout: 5,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			ClientID: "scmi-pinctrl",
			QoS:      1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCMIPIN_SCMI_ENDPOINT"); v != "" {
		cfg.SCMI.Endpoint = v
	}
	if v := os.Getenv("SCMIPIN_PINS_STATE_FILE"); v != "" {
		cfg.Pins.StateFile = v
	}
	if v := os.Getenv("SCMIPIN_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("SCMIPIN_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
	if v := os.Getenv("SCMIPIN_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("SCMIPIN_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("SCMIPIN_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("SCMIPIN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.SCMI.Endpoint == "" {
		errs = append(errs, "scmi.endpoint is required")
	}
	if c.SCMI.ConnectTimeout < 0 || c.SCMI.RequestTimeout < 0 {
		errs = append(errs, "scmi timeouts must not be negative")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, "mqtt.broker is required when mqtt.enabled is true")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, "logging.level must be debug, info, warn, or error")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetConnectTimeout returns the SCMI connect timeout as a Duration.
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.SCMI.ConnectTimeout) * time.Second
}

// GetRequestTimeout returns the SCMI request timeout as a Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.SCMI.RequestTimeout) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
