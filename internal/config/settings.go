package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// ServerSettings configures the inspection server.
// Precedence: CLI flags > YAML server section > Environment variables > Defaults
type ServerSettings struct {
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlServer represents the optional server section of the document.
type yamlServer struct {
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// ResolveServerSettings merges defaults, environment, the document's server
// section and CLI overrides, in increasing order of precedence.
func ResolveServerSettings(cfg *Config, overrides *CLIOverrides) (ServerSettings, error) {
	settings := defaultServerSettings()

	applyEnvSettings(&settings)

	if cfg != nil {
		section, err := serverSection(cfg)
		if err != nil {
			return ServerSettings{}, fmt.Errorf("server section: %w", err)
		}
		if section != nil {
			if err := applyYAMLSettings(&settings, section); err != nil {
				return ServerSettings{}, fmt.Errorf("server section: %w", err)
			}
		}
		// Ports are often written unquoted, so read the scalar directly.
		if port := strings.TrimSpace(cfg.String("server.port")); port != "" {
			settings.Port = port
		}
	}

	if overrides != nil {
		applyCLIOverrides(&settings, overrides)
	}

	if err := validateSettings(settings); err != nil {
		return ServerSettings{}, err
	}

	return settings, nil
}

// defaultServerSettings returns ServerSettings with default values.
func defaultServerSettings() ServerSettings {
	return ServerSettings{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// serverSection re-decodes the already parsed server mapping into its typed form.
func serverSection(cfg *Config) (*yamlServer, error) {
	raw, ok := cfg.Get("server")
	if !ok || raw == nil {
		return nil, nil
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var section yamlServer
	if err := yaml.Unmarshal(data, &section); err != nil {
		return nil, err
	}
	return &section, nil
}

// applyYAMLSettings applies the server section to settings.
func applyYAMLSettings(settings *ServerSettings, section *yamlServer) error {
	durations := []struct {
		name  string
		raw   string
		field *time.Duration
	}{
		{"shutdown_grace_period", section.ShutdownGracePeriod, &settings.ShutdownGracePeriod},
		{"read_header_timeout", section.ReadHeaderTimeout, &settings.ReadHeaderTimeout},
		{"write_timeout", section.WriteTimeout, &settings.WriteTimeout},
		{"idle_timeout", section.IdleTimeout, &settings.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		value, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.field = value
	}

	if section.EnableRequestLogging != nil {
		settings.EnableRequestLogging = *section.EnableRequestLogging
	}

	if section.RateLimit.RPS != nil {
		settings.RateLimitRPS = *section.RateLimit.RPS
	}

	if section.RateLimit.Burst != nil {
		settings.RateLimitBurst = *section.RateLimit.Burst
	}

	return nil
}

// applyEnvSettings applies environment variable configuration.
func applyEnvSettings(settings *ServerSettings) {
	if port := strings.TrimSpace(os.Getenv("ENVYAML_PORT")); port != "" {
		settings.Port = port
	}

	if rps := strings.TrimSpace(os.Getenv("ENVYAML_RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			settings.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("ENVYAML_RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			settings.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(settings *ServerSettings, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		settings.Port = *overrides.Port
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		settings.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		settings.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateSettings validates the final settings.
func validateSettings(settings ServerSettings) error {
	if settings.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if settings.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit rps must be >= 0")
	}
	if settings.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit burst must be >= 0")
	}
	return nil
}
