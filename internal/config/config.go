// Package config resolves all environment-variable configuration into a
// single struct at process startup. Nothing else in the program reads the
// environment directly; the resolved Config is passed down explicitly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variable names understood by the binary. API keys are also
// passed through unmodified to the Python child in launcher mode.
const (
	EnvAPIKey       = "APARAVI_API_KEY"
	EnvAPIURL       = "APARAVI_API_URL"
	EnvTimeout      = "APARAVI_TIMEOUT"
	EnvMaxRetries   = "APARAVI_MAX_RETRIES"
	EnvInitialDelay = "APARAVI_INITIAL_DELAY"
	EnvLlamaAPIKey  = "LLAMA_CLOUD_API_KEY"
	EnvHome         = "APARAVI_MCP_HOME"
	EnvPython       = "APARAVI_PYTHON"
	EnvLogLevel     = "APARAVI_LOG"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultAPIURL       = "https://eaas-dev.aparavi.com"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRetries   = 10
	DefaultInitialDelay = 2 * time.Second
)

// Log levels controlling client progress output on stderr.
const (
	LogNone    = "none"
	LogNormal  = "normal"
	LogVerbose = "verbose"
)

// Config holds the resolved process configuration.
type Config struct {
	// APIKey authenticates against the Aparavi API. Required in native
	// serve mode; optional in launcher mode where the child validates it.
	APIKey string

	// APIURL is the Aparavi API base URL.
	APIURL string

	// Timeout bounds individual HTTP requests to the vendor API.
	Timeout time.Duration

	// MaxRetries is the number of task-ready polling attempts.
	MaxRetries int

	// InitialDelay is the first task-ready polling delay; subsequent
	// delays grow by 2 seconds per attempt.
	InitialDelay time.Duration

	// LlamaAPIKey authenticates the LlamaParse OCR pipeline component.
	LlamaAPIKey string

	// Home is the package root containing mcp-server.py, requirements.txt
	// and the .venv directory used in launcher mode.
	Home string

	// PythonPath optionally pins the base interpreter used to create the
	// virtual environment instead of probing PATH.
	PythonPath string

	// LogLevel is one of "none", "normal", "verbose".
	LogLevel string
}

// FromEnv builds a Config from the process environment.
// Malformed numeric values are an error rather than a silent default.
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIKey:       os.Getenv(EnvAPIKey),
		APIURL:       DefaultAPIURL,
		Timeout:      DefaultTimeout,
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
		LlamaAPIKey:  os.Getenv(EnvLlamaAPIKey),
		Home:         ".",
		PythonPath:   os.Getenv(EnvPython),
		LogLevel:     LogNormal,
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", EnvTimeout, v)
		}
		cfg.Timeout = time.Duration(secs) * time.Second
	}

	if v := os.Getenv(EnvMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s: %q", EnvMaxRetries, v)
		}
		cfg.MaxRetries = n
	}

	if v := os.Getenv(EnvInitialDelay); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 0 {
			return nil, fmt.Errorf("invalid %s: %q", EnvInitialDelay, v)
		}
		cfg.InitialDelay = time.Duration(secs) * time.Second
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		switch v {
		case LogNone, LogNormal, LogVerbose:
			cfg.LogLevel = v
		default:
			return nil, fmt.Errorf("invalid %s: %q (want none, normal or verbose)", EnvLogLevel, v)
		}
	}

	return cfg, nil
}

// RequireAPIKey returns an error if no Aparavi API key is configured.
// Native serve mode calls this before constructing the client.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("%s environment variable is required", EnvAPIKey)
	}
	return nil
}
