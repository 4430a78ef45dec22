package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "MEETINGSYNC_CONFIG"

	sourceBaseEnv     = "WP_BASE"
	registryBaseEnv   = "BMLT_BASE_URL"
	registryUserEnv   = "BMLT_ADMIN_USER"
	registryPassEnv   = "BMLT_ADMIN_PASS"
	serviceBodyEnv    = "BMLT_SERVICE_BODY_ID"
	defaultLatEnv     = "BMLT_DEFAULT_LAT"
	defaultLonEnv     = "BMLT_DEFAULT_LON"
	allowFallbackEnv  = "BMLT_ALLOW_FALLBACK_COORDS"
	defaultProvEnv    = "BMLT_DEFAULT_PROVINCE"
	dataDirEnv        = "DATA_DIR"
	cronExpressionEnv = "SYNC_CRON"
	timezoneEnv       = "SYNC_TIMEZONE"
	metricsAddrEnv    = "METRICS_ADDR"
	logLevelEnv       = "LOG_LEVEL"
)

// Config holds every setting the application needs. It is built once at
// startup and passed to components as a value; nothing reads the environment
// after Load returns.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Registry  RegistryConfig  `yaml:"registry"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
	DataDir   string          `yaml:"dataDir"`
}

// SourceConfig describes the WordPress content API.
type SourceConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// RegistryConfig describes the BMLT Admin API and the target service body.
type RegistryConfig struct {
	BaseURL         string `yaml:"baseUrl"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	ServiceBodyID   int    `yaml:"serviceBodyId"`
	DefaultProvince string `yaml:"defaultProvince"`
}

// GeocodingConfig carries the fallback coordinate policy.
type GeocodingConfig struct {
	DefaultLat          float64 `yaml:"defaultLat"`
	DefaultLon          float64 `yaml:"defaultLon"`
	AllowFallbackCoords bool    `yaml:"allowFallbackCoords"`
}

// SchedulerConfig defines when sync runs execute. An empty cron expression
// means a single run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// MetricsConfig enables the optional /metrics listener when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present), applies environment overrides,
// and validates the result. Validation failures are fatal to the run.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(sourceBaseEnv); v != "" {
		c.Source.BaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv(registryBaseEnv); v != "" {
		c.Registry.BaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv(registryUserEnv); v != "" {
		c.Registry.Username = v
	}
	if v := os.Getenv(registryPassEnv); v != "" {
		c.Registry.Password = v
	}
	if v := os.Getenv(serviceBodyEnv); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Registry.ServiceBodyID = id
		}
	}
	if v := os.Getenv(defaultProvEnv); strings.TrimSpace(v) != "" {
		c.Registry.DefaultProvince = strings.TrimSpace(v)
	}
	if v := os.Getenv(defaultLatEnv); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			c.Geocoding.DefaultLat = lat
		}
	}
	if v := os.Getenv(defaultLonEnv); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			c.Geocoding.DefaultLon = lon
		}
	}
	if v := os.Getenv(allowFallbackEnv); v != "" {
		c.Geocoding.AllowFallbackCoords = v == "1"
	}
	if v := os.Getenv(dataDirEnv); strings.TrimSpace(v) != "" {
		c.DataDir = strings.TrimSpace(v)
	}
	if v := os.Getenv(cronExpressionEnv); v != "" {
		c.Scheduler.CronExpression = v
	}
	if v := os.Getenv(timezoneEnv); v != "" {
		c.Scheduler.Timezone = v
	}
	if v := os.Getenv(metricsAddrEnv); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func (c *Config) validate() error {
	if c.Registry.Username == "" || c.Registry.Password == "" {
		return fmt.Errorf("config: %s and %s are required", registryUserEnv, registryPassEnv)
	}
	base := c.Registry.BaseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("config: %s must include http:// or https:// (got %q)", registryBaseEnv, base)
	}
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Source.BaseURL != "" {
		base.Source.BaseURL = override.Source.BaseURL
	}

	if override.Registry.BaseURL != "" {
		base.Registry.BaseURL = override.Registry.BaseURL
	}
	if override.Registry.Username != "" {
		base.Registry.Username = override.Registry.Username
	}
	if override.Registry.Password != "" {
		base.Registry.Password = override.Registry.Password
	}
	if override.Registry.ServiceBodyID != 0 {
		base.Registry.ServiceBodyID = override.Registry.ServiceBodyID
	}
	if override.Registry.DefaultProvince != "" {
		base.Registry.DefaultProvince = override.Registry.DefaultProvince
	}

	if override.Geocoding.DefaultLat != 0 {
		base.Geocoding.DefaultLat = override.Geocoding.DefaultLat
	}
	if override.Geocoding.DefaultLon != 0 {
		base.Geocoding.DefaultLon = override.Geocoding.DefaultLon
	}
	if override.Geocoding.AllowFallbackCoords {
		base.Geocoding.AllowFallbackCoords = true
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Metrics.Addr != "" {
		base.Metrics.Addr = override.Metrics.Addr
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.DataDir != "" {
		base.DataDir = override.DataDir
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Source: SourceConfig{BaseURL: "https://www.nasuomi.org"},
		Registry: RegistryConfig{
			BaseURL:         "http://127.0.0.1",
			ServiceBodyID:   1,
			DefaultProvince: "Uusimaa",
		},
		Geocoding: GeocodingConfig{
			DefaultLat: 60.1699,
			DefaultLon: 24.9384,
		},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info"},
		DataDir:   "/data",
	}
}
