package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{EnvAPIKey, EnvAPIURL, EnvTimeout, EnvMaxRetries, EnvInitialDelay, EnvLlamaAPIKey, EnvHome, EnvPython, EnvLogLevel} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("Expected default API URL %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected default max retries %d, got %d", DefaultMaxRetries, cfg.MaxRetries)
	}
	if cfg.Home != "." {
		t.Errorf("Expected default home '.', got %s", cfg.Home)
	}
	if cfg.LogLevel != LogNormal {
		t.Errorf("Expected default log level %q, got %q", LogNormal, cfg.LogLevel)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIKey, "key-123")
	t.Setenv(EnvAPIURL, "https://eaas.aparavi.com")
	t.Setenv(EnvTimeout, "120")
	t.Setenv(EnvMaxRetries, "5")
	t.Setenv(EnvInitialDelay, "1")
	t.Setenv(EnvLogLevel, "verbose")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.APIKey != "key-123" {
		t.Errorf("Expected API key override, got %q", cfg.APIKey)
	}
	if cfg.APIURL != "https://eaas.aparavi.com" {
		t.Errorf("Expected API URL override, got %q", cfg.APIURL)
	}
	if cfg.Timeout != 120*time.Second {
		t.Errorf("Expected 120s timeout, got %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("Expected 5 retries, got %d", cfg.MaxRetries)
	}
	if cfg.InitialDelay != time.Second {
		t.Errorf("Expected 1s initial delay, got %v", cfg.InitialDelay)
	}
	if cfg.LogLevel != LogVerbose {
		t.Errorf("Expected verbose log level, got %q", cfg.LogLevel)
	}
}

func TestFromEnvInvalidNumbers(t *testing.T) {
	cases := map[string]string{
		EnvTimeout:      "abc",
		EnvMaxRetries:   "0",
		EnvInitialDelay: "-1",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("Expected error for %s=%q", key, value)
			}
		})
	}
}

func TestFromEnvInvalidLogLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	if _, err := FromEnv(); err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Error("Expected error for missing API key")
	}

	cfg.APIKey = "key"
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("Unexpected error with key present: %v", err)
	}
}
