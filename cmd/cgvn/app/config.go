package app

import (
	stderrors "errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/cgvn/internal/config"
	"github.com/agentstation/cgvn/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel    string // --log-level
	EnvLogLevel string // LOG_LEVEL
	LogFormat   string
	LogOutput   string

	// Pipeline configuration
	Pipeline *config.Pipeline
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (CGVN_*)
// 3. .env files
// 4. Config file (./.cgvn.yaml, then ~/.cgvn.yaml)
// 5. Defaults
//
// An explicit configFile must exist; the searched locations may not.
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("CGVN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	config.SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "failed to read "+configFile, err)
		}
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".cgvn")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "failed to read config file", err)
			}
		}
	}

	pipelineConfig, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	return &Config{
		ConfigFile:  v.ConfigFileUsed(),
		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
		Pipeline:    pipelineConfig,
	}, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// logLevels are the levels accepted from --log-level and LOG_LEVEL.
var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// ResolveLogLevel returns the log level of the run and, when a setting was
// invalid or contradicted another, a warning for the user. Precedence is
// --log-level, then -v/-q (warn when both are set), then LOG_LEVEL, then
// info.
func (c *Config) ResolveLogLevel() (level, warning string) {
	switch {
	case c.LogLevel != "":
		return checkLogLevel("--log-level", c.LogLevel)
	case c.Verbose && c.Quiet:
		return "warn", "both --verbose and --quiet specified, using --quiet"
	case c.Verbose:
		return "debug", ""
	case c.Quiet:
		return "warn", ""
	case c.EnvLogLevel != "":
		return checkLogLevel("LOG_LEVEL", c.EnvLogLevel)
	}
	return "info", ""
}

func checkLogLevel(source, level string) (string, string) {
	if slices.Contains(logLevels, level) {
		return level, ""
	}
	return "info", fmt.Sprintf("invalid log level %q from %s, using \"info\"", level, source)
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
