package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile writes content to a temp config.yaml and points ENROL_CONFIG_FILE at it
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	t.Setenv(EnvPrefix+"_CONFIG_FILE", configFile)
	return configFile
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, DefaultDatasetPath, cfg.Dataset.Path)
				assert.Equal(t, 7, cfg.Forecast.Window)
				assert.Equal(t, 3, cfg.Forecast.MinHorizon)
				assert.Equal(t, 30, cfg.Forecast.MaxHorizon)
				assert.False(t, cfg.Forecast.RequireFullWindow)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "environment variables override defaults",
			env: map[string]string{
				"ENROL_SERVER_PORT":                  "9090",
				"ENROL_SERVER_READ_TIMEOUT":          "30s",
				"ENROL_SECURITY_ALLOWED_ORIGINS":     "http://a.test,http://b.test",
				"ENROL_DATASET_FILE":                 "/srv/enrolment.xlsx",
				"ENROL_DATASET_SHEET":                "Enrolment",
				"ENROL_FORECAST_WINDOW":              "5",
				"ENROL_FORECAST_REQUIRE_FULL_WINDOW": "true",
				"ENROL_LOGGING_LEVEL":                "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "/srv/enrolment.xlsx", cfg.Dataset.Path)
				assert.Equal(t, "Enrolment", cfg.Dataset.Sheet)
				assert.Equal(t, 5, cfg.Forecast.Window)
				assert.True(t, cfg.Forecast.RequireFullWindow)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "file values overlay defaults",
			fileContent: `
server:
  port: 7070
dataset:
  path: data/custom.csv
  date_column: enrolment_date
forecast:
  default_horizon: 14
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "data/custom.csv", cfg.Dataset.Path)
				assert.Equal(t, "enrolment_date", cfg.Dataset.DateColumn)
				assert.Equal(t, "state", cfg.Dataset.StateColumn, "unset file fields keep defaults")
				assert.Equal(t, 14, cfg.Forecast.DefaultHorizon)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
			},
		},
		{
			name:        "environment wins over file",
			fileContent: "server:\n  port: 7070\n",
			env:         map[string]string{"ENROL_SERVER_PORT": "6060"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6060, cfg.Server.Port)
			},
		},
		{
			name:    "invalid port from env",
			env:     map[string]string{"ENROL_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "unparseable env value",
			env:     map[string]string{"ENROL_FORECAST_WINDOW": "seven"},
			wantErr: true,
		},
		{
			name:        "invalid YAML syntax",
			fileContent: "invalid: yaml: content: [unclosed",
			wantErr:     true,
		},
		{
			name:        "default horizon outside bounds",
			fileContent: "forecast:\n  default_horizon: 45\n",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.fileContent != "" {
				writeConfigFile(t, tt.fileContent)
			} else {
				t.Setenv(EnvPrefix+"_CONFIG_FILE", "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

// TestLoadMissingExplicitFile tests that a named but missing config file is an error
func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv(EnvPrefix+"_CONFIG_FILE", "/non/existent/config.yaml")

	_, err := Load()
	assert.Error(t, err)
}

// TestLoadFromFile tests the loadFromFile function
func TestLoadFromFile(t *testing.T) {
	t.Run("overlay keeps untouched fields", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		content := `
websocket:
  read_buffer_size: 4096
  pong_wait: 90s
telemetry:
  trace_exporter: stdout
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

		cfg := Default()
		require.NoError(t, loadFromFile(configFile, cfg))

		assert.Equal(t, 4096, cfg.WebSocket.ReadBufferSize)
		assert.Equal(t, 90*time.Second, cfg.WebSocket.PongWait)
		assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
		assert.Equal(t, 1024, cfg.WebSocket.WriteBufferSize)
	})

	t.Run("non-existent file", func(t *testing.T) {
		err := loadFromFile("/non/existent/file.yaml", Default())
		assert.Error(t, err)
	})
}

// TestValidate tests configuration validation
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "non-positive read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout",
		},
		{
			name:    "non-positive write timeout",
			mutate:  func(c *Config) { c.Server.WriteTimeout = -time.Second },
			wantErr: "write timeout",
		},
		{
			name: "cors without origins",
			mutate: func(c *Config) {
				c.Security.EnableCORS = true
				c.Security.AllowedOrigins = nil
			},
			wantErr: "allowed origin",
		},
		{
			name:    "unknown log output",
			mutate:  func(c *Config) { c.Logging.Output = "syslog" },
			wantErr: "invalid logging output",
		},
		{
			name:    "empty dataset path",
			mutate:  func(c *Config) { c.Dataset.Path = "  " },
			wantErr: "dataset path",
		},
		{
			name:    "empty column name",
			mutate:  func(c *Config) { c.Dataset.Age18PlusColumn = "" },
			wantErr: "age_18_plus_column",
		},
		{
			name:    "zero window",
			mutate:  func(c *Config) { c.Forecast.Window = 0 },
			wantErr: "forecast window",
		},
		{
			name: "inverted horizon bounds",
			mutate: func(c *Config) {
				c.Forecast.MinHorizon = 10
				c.Forecast.MaxHorizon = 5
			},
			wantErr: "horizon bounds",
		},
		{
			name:    "ping not shorter than pong",
			mutate:  func(c *Config) { c.WebSocket.PingPeriod = c.WebSocket.PongWait },
			wantErr: "ping period",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestValidateNormalizesLogging tests the logging fields validate fills in
func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}

// TestConfigPathMethods tests path resolution helpers
func TestConfigPathMethods(t *testing.T) {
	cfg := Default()
	cfg.Paths.BaseDir = "/opt/enrolpulse"

	assert.Equal(t, filepath.Join("/opt/enrolpulse", DefaultDatasetPath), cfg.GetDatasetPath())
	assert.Equal(t, filepath.Join("/opt/enrolpulse", DefaultExportsDir), cfg.GetExportsDir())
	assert.Equal(t, "/abs/file.csv", cfg.ResolvePath("/abs/file.csv"))
	assert.Equal(t, "", cfg.ResolvePath(""))
}

// TestGetConfigFilePath tests config file discovery
func TestGetConfigFilePath(t *testing.T) {
	t.Run("explicit env var", func(t *testing.T) {
		t.Setenv(EnvPrefix+"_CONFIG_FILE", "/etc/enrolpulse.yaml")
		assert.Equal(t, "/etc/enrolpulse.yaml", getConfigFilePath())
	})

	t.Run("config.yaml in working directory", func(t *testing.T) {
		t.Setenv(EnvPrefix+"_CONFIG_FILE", "")
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{}"), 0644))

		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		defer func() { _ = os.Chdir(wd) }()

		assert.Equal(t, "config.yaml", getConfigFilePath())
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv(EnvPrefix+"_CONFIG_FILE", "")
		dir := t.TempDir()

		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		defer func() { _ = os.Chdir(wd) }()

		assert.Equal(t, "", getConfigFilePath())
	})
}

// TestDefault tests the default configuration values
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1<<20, cfg.Server.MaxHeaderBytes)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, float64(DefaultRateLimit), cfg.Security.RateLimit.RPS)
	assert.Equal(t, "demo_age_5_17", cfg.Dataset.Age5To17Column)
	assert.Equal(t, "demo_age_17_", cfg.Dataset.Age18PlusColumn)
	assert.Equal(t, DefaultForecastHorizon, cfg.Forecast.DefaultHorizon)
	assert.Equal(t, ServiceName, cfg.Telemetry.ServiceName)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
	assert.NoError(t, cfg.validate())
}
