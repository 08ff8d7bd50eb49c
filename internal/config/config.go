package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Dataset   DatasetConfig   `yaml:"dataset" envconfig:"DATASET"`
	Forecast  ForecastConfig  `yaml:"forecast" envconfig:"FORECAST"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
// Relative paths elsewhere in the config are resolved against BaseDir.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	ExportsDir string `yaml:"exports_dir" envconfig:"EXPORTS_DIR"`
}

// DatasetConfig describes the enrolment input file and its columns.
// Path is bound to ENROL_DATASET_FILE: envconfig also consults the bare tag
// name, and a PATH tag would pick up the shell's $PATH.
type DatasetConfig struct {
	Path            string `yaml:"path" envconfig:"FILE"`
	Sheet           string `yaml:"sheet" envconfig:"SHEET"`
	StateColumn     string `yaml:"state_column" envconfig:"STATE_COLUMN"`
	DistrictColumn  string `yaml:"district_column" envconfig:"DISTRICT_COLUMN"`
	DateColumn      string `yaml:"date_column" envconfig:"DATE_COLUMN"`
	Age5To17Column  string `yaml:"age_5_17_column" envconfig:"AGE_5_17_COLUMN"`
	Age18PlusColumn string `yaml:"age_18_plus_column" envconfig:"AGE_18_PLUS_COLUMN"`
}

// ForecastConfig contains the trailing-mean forecaster settings
type ForecastConfig struct {
	Window            int  `yaml:"window" envconfig:"WINDOW"`
	MinHorizon        int  `yaml:"min_horizon" envconfig:"MIN_HORIZON"`
	MaxHorizon        int  `yaml:"max_horizon" envconfig:"MAX_HORIZON"`
	DefaultHorizon    int  `yaml:"default_horizon" envconfig:"DEFAULT_HORIZON"`
	RequireFullWindow bool `yaml:"require_full_window" envconfig:"REQUIRE_FULL_WINDOW"`
}

// WebSocketConfig contains live session configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
	WriteWait       time.Duration `yaml:"write_wait" envconfig:"WRITE_WAIT"`
	MaxMessageSize  int64         `yaml:"max_message_size" envconfig:"MAX_MESSAGE_SIZE"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, then the config file if one
// exists, then environment variables. Later sources win.
func Load() (*Config, error) {
	cfg := Default()

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Environment variables override file values
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// ResolvePath resolves p against the configured base directory
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.BaseDir, p)
}

// GetDatasetPath returns the resolved dataset file path
func (c *Config) GetDatasetPath() string {
	return c.ResolvePath(c.Dataset.Path)
}

// GetExportsDir returns the resolved exports directory path
func (c *Config) GetExportsDir() string {
	return c.ResolvePath(c.Paths.ExportsDir)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	// JSON is the only supported log format
	c.Logging.Format = "json"

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("dataset path must be specified")
	}

	for name, col := range map[string]string{
		"state_column":       c.Dataset.StateColumn,
		"district_column":    c.Dataset.DistrictColumn,
		"date_column":        c.Dataset.DateColumn,
		"age_5_17_column":    c.Dataset.Age5To17Column,
		"age_18_plus_column": c.Dataset.Age18PlusColumn,
	} {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("dataset %s must not be empty", name)
		}
	}

	if c.Forecast.Window < 1 {
		return fmt.Errorf("forecast window must be at least 1, got %d", c.Forecast.Window)
	}

	if c.Forecast.MinHorizon < 1 || c.Forecast.MaxHorizon < c.Forecast.MinHorizon {
		return fmt.Errorf("invalid forecast horizon bounds: [%d, %d]", c.Forecast.MinHorizon, c.Forecast.MaxHorizon)
	}

	if c.Forecast.DefaultHorizon < c.Forecast.MinHorizon || c.Forecast.DefaultHorizon > c.Forecast.MaxHorizon {
		return fmt.Errorf("default forecast horizon %d outside [%d, %d]",
			c.Forecast.DefaultHorizon, c.Forecast.MinHorizon, c.Forecast.MaxHorizon)
	}

	if c.WebSocket.PingPeriod >= c.WebSocket.PongWait {
		return fmt.Errorf("websocket ping period must be shorter than pong wait")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  10 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			BaseDir:    ".",
			ExportsDir: DefaultExportsDir,
		},
		Dataset: DatasetConfig{
			Path:            DefaultDatasetPath,
			StateColumn:     "state",
			DistrictColumn:  "district",
			DateColumn:      "date",
			Age5To17Column:  "demo_age_5_17",
			Age18PlusColumn: "demo_age_17_",
		},
		Forecast: ForecastConfig{
			Window:         DefaultForecastWindow,
			MinHorizon:     MinForecastHorizon,
			MaxHorizon:     MaxForecastHorizon,
			DefaultHorizon: DefaultForecastHorizon,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
			WriteWait:       10 * time.Second,
			MaxMessageSize:  4096,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    ServiceName,
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
