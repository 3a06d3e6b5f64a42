package configs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// OdooConfig holds the connection parameters for the remote Odoo server.
type OdooConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MCPConfig identifies this server towards MCP clients.
type MCPConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// FileConfig defines the structure loaded from the YAML configuration file.
type FileConfig struct {
	Odoo OdooConfig `yaml:"odoo"`
	MCP  MCPConfig  `yaml:"mcp"`
}

// Config holds the final application configuration, merged from file and
// environment variables. Fields are loaded from environment variables with
// the prefix "ODOO_MCP_", potentially overriding file settings.
type Config struct {
	// Config file path, loaded first from env.
	ConfigFilePath string `envconfig:"CONFIG_FILE" default:"configs/odoo-mcp.yaml"`

	// File-loaded fields. Env vars win when both are set.
	OdooURL       string `envconfig:"ODOO_URL"`
	OdooDatabase  string `envconfig:"ODOO_DATABASE"`
	OdooUsername  string `envconfig:"ODOO_USERNAME"`
	OdooPassword  string `envconfig:"ODOO_PASSWORD"`
	ServerName    string `envconfig:"SERVER_NAME"`
	ServerVersion string `envconfig:"SERVER_VERSION"`

	// Environment-only fields with defaults.
	ListenAddr               string        `envconfig:"LISTEN_ADDR" default:":8080"`
	AdminListenAddr          string        `envconfig:"ADMIN_LISTEN_ADDR" default:":8081"`
	RPCTimeout               time.Duration `envconfig:"RPC_TIMEOUT" default:"30s"`
	ShutdownTimeout          time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"info"`
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Validate checks that the connection parameters needed for any remote call
// are present after merging.
func (c *Config) Validate() error {
	switch {
	case c.OdooURL == "":
		return fmt.Errorf("odoo server URL is not configured")
	case c.OdooDatabase == "":
		return fmt.Errorf("odoo database is not configured")
	case c.OdooUsername == "":
		return fmt.Errorf("odoo username is not configured")
	case c.OdooPassword == "":
		return fmt.Errorf("odoo password is not configured")
	}
	return nil
}

// Load loads configuration first from environment variables (to get the file
// path), then from the specified YAML file, and finally merges/overrides with
// environment variables again.
func Load() (*Config, error) {
	// 1. Load initial config from env (primarily to get ConfigFilePath).
	var initialCfg Config
	if err := envconfig.Process("odoo_mcp", &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	// 2. Load config from the YAML file if it exists. A missing file is not
	// an error: connection parameters may come entirely from the environment.
	fileCfg := FileConfig{}
	if initialCfg.ConfigFilePath != "" {
		yamlFile, err := os.ReadFile(initialCfg.ConfigFilePath)
		switch {
		case os.IsNotExist(err):
			slog.Info("Config file not found, using environment variables only.", "path", initialCfg.ConfigFilePath)
		case err != nil:
			return nil, fmt.Errorf("failed to read config file '%s': %w", initialCfg.ConfigFilePath, err)
		default:
			if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", initialCfg.ConfigFilePath, err)
			}
			slog.Info("Loaded configuration from file.", "path", initialCfg.ConfigFilePath)
		}
	}

	// 3. Start from file values, then process env vars again so they win.
	finalCfg := initialCfg
	finalCfg.OdooURL = fileCfg.Odoo.URL
	finalCfg.OdooDatabase = fileCfg.Odoo.Database
	finalCfg.OdooUsername = fileCfg.Odoo.Username
	finalCfg.OdooPassword = fileCfg.Odoo.Password
	finalCfg.ServerName = fileCfg.MCP.Name
	finalCfg.ServerVersion = fileCfg.MCP.Version

	if err := envconfig.Process("odoo_mcp", &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}

	if finalCfg.ServerName == "" {
		finalCfg.ServerName = "odoo-mcp"
	}
	if finalCfg.ServerVersion == "" {
		finalCfg.ServerVersion = "0.1.0"
	}

	return &finalCfg, nil
}
