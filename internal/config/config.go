// Package config owns actionNERD configuration: the completion-service
// credential and provider, overlay timing, and logging switches.
// Config lives in .actionnerd/config.json (or .yaml); the API key can
// also come from environment variables. A settings surface may rewrite
// the file at any time, so Manager watches it and republishes changes
// without a restart.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all actionNERD configuration.
type Config struct {
	// Completion service settings
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"` // gemini, openai
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// TimeoutSeconds bounds a single completion call on the
	// orchestrator side.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`

	// BrowserURL is the CDP debugger websocket/http endpoint to attach to.
	BrowserURL string `json:"browser_url,omitempty" yaml:"browser_url,omitempty"`

	Overlay OverlayConfig `json:"overlay" yaml:"overlay"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// OverlayConfig tunes the UI state machine.
type OverlayConfig struct {
	// RequestTimeoutSeconds is the hard wait for GET_ACTIONS before
	// the overlay gives up and returns to idle.
	RequestTimeoutSeconds int `json:"request_timeout_seconds,omitempty" yaml:"request_timeout_seconds,omitempty"`

	// TeardownDelayMs delays surface removal so an exit animation can
	// play. Not correctness-relevant.
	TeardownDelayMs int `json:"teardown_delay_ms,omitempty" yaml:"teardown_delay_ms,omitempty"`
}

// LoggingConfig controls the file logger.
type LoggingConfig struct {
	DebugMode bool `json:"debug_mode" yaml:"debug_mode"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Provider:       "gemini",
		TimeoutSeconds: 8,
		Overlay: OverlayConfig{
			RequestTimeoutSeconds: 10,
			TeardownDelayMs:       150,
		},
	}
}

// HasCredential reports whether a completion credential is configured.
func (c Config) HasCredential() bool {
	return c.APIKey != ""
}

// Timeout returns the completion call bound as a duration.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 8 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RequestTimeout returns the overlay-side GET_ACTIONS wait bound.
func (c Config) RequestTimeout() time.Duration {
	if c.Overlay.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Overlay.RequestTimeoutSeconds) * time.Second
}

// TeardownDelay returns the surface teardown delay.
func (c Config) TeardownDelay() time.Duration {
	if c.Overlay.TeardownDelayMs <= 0 {
		return 150 * time.Millisecond
	}
	return time.Duration(c.Overlay.TeardownDelayMs) * time.Millisecond
}

// DefaultDir returns the actionNERD dot directory, honoring
// ACTIONNERD_HOME for tests and portable setups.
func DefaultDir() string {
	if dir := os.Getenv("ACTIONNERD_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".actionnerd"
	}
	return filepath.Join(home, ".actionnerd")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.json")
}

// UsageDBPath returns the usage database path under dir.
func UsageDBPath(dir string) string {
	return filepath.Join(dir, "usage.db")
}

// Load reads the config file at path. A missing file is not an error:
// defaults plus environment fallback apply. YAML is detected by
// extension, everything else parses as JSON.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to env resolution.
	case err != nil:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	default:
		if isYAMLPath(path) {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config: %w", err)
			}
		} else {
			if err := json.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	applyEnvFallback(&cfg)
	return cfg, nil
}

// Save writes the config to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	var data []byte
	var err error
	if isYAMLPath(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvFallback fills the credential from the environment when the
// file left it empty. Priority: ACTIONNERD_API_KEY > GEMINI_API_KEY >
// OPENAI_API_KEY, with the provider following the variable that won.
func applyEnvFallback(cfg *Config) {
	if cfg.APIKey != "" {
		return
	}
	if key := os.Getenv("ACTIONNERD_API_KEY"); key != "" {
		cfg.APIKey = key
		return
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.APIKey = key
		cfg.Provider = "gemini"
		return
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.APIKey = key
		cfg.Provider = "openai"
	}
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
