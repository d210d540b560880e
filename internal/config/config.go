// Package config provides the Config struct and loader for .boardroom.yaml
// configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up from the working directory upward.
const ConfigFileName = ".boardroom.yaml"

// Default values for configuration. New() references them and no other
// code should duplicate them.
const (
	DefaultChairmanModel = "google/gemini-3-pro-preview"
	DefaultTitleModel    = "google/gemini-2.5-flash"

	DefaultBaseURL    = "https://openrouter.ai/api/v1"
	DefaultTimeoutSec = 300

	DefaultServerPort = 8001
	DefaultDataDir    = "data"
)

// DefaultCouncilModels is the council used when no board members are
// configured.
var DefaultCouncilModels = []string{
	"openai/gpt-5.1",
	"google/gemini-3-pro-preview",
	"anthropic/claude-sonnet-4.5",
	"x-ai/grok-4",
}

// CouncilConfig selects the default council and chairman models.
type CouncilConfig struct {
	Models        []string `yaml:"models,omitempty"`
	ChairmanModel string   `yaml:"chairman_model,omitempty"`
	TitleModel    string   `yaml:"title_model,omitempty"`
}

// GatewayConfig holds backend API settings. The API key is environment
// only (OPENROUTER_API_KEY); it never lives in the config file.
type GatewayConfig struct {
	BaseURL     string                    `yaml:"base_url,omitempty"`
	TimeoutSec  int                       `yaml:"timeout_sec,omitempty"`
	ModelParams map[string]map[string]any `yaml:"model_params,omitempty"`
}

// ServerConfig holds API server settings. The auth secret is environment
// only (BOARDROOM_AUTH_SECRET); empty disables authentication and scopes
// all data to a single local user.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	DataDir        string   `yaml:"data_dir,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// Config is the top-level configuration loaded from .boardroom.yaml.
type Config struct {
	Council CouncilConfig `yaml:"council,omitempty"`
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`

	// Populated from the environment, not the file.
	APIKey     string `yaml:"-"`
	AuthSecret string `yaml:"-"`
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	return &Config{
		Council: CouncilConfig{
			Models:        append([]string(nil), DefaultCouncilModels...),
			ChairmanModel: DefaultChairmanModel,
			TitleModel:    DefaultTitleModel,
		},
		Gateway: GatewayConfig{
			BaseURL:    DefaultBaseURL,
			TimeoutSec: DefaultTimeoutSec,
		},
		Server: ServerConfig{
			Port:    DefaultServerPort,
			DataDir: DefaultDataDir,
		},
	}
}

// Load finds .boardroom.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults. If no config
// file is found, returns defaults with a nil error. Real I/O errors (e.g.
// permission denied) are returned to the caller. Environment-only fields
// are read from the process environment either way.
func Load(startDir string) (*Config, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fromEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", ConfigFileName, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}

	merge(cfg, &fileCfg)
	fromEnv(cfg)
	return cfg, nil
}

func fromEnv(cfg *Config) {
	cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.AuthSecret = os.Getenv("BOARDROOM_AUTH_SECRET")
}

// findConfigFile walks up from dir looking for .boardroom.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ConfigFileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// merge overlays non-zero values from src onto dst.
func merge(dst, src *Config) {
	if len(src.Council.Models) > 0 {
		dst.Council.Models = src.Council.Models
	}
	if src.Council.ChairmanModel != "" {
		dst.Council.ChairmanModel = src.Council.ChairmanModel
	}
	if src.Council.TitleModel != "" {
		dst.Council.TitleModel = src.Council.TitleModel
	}

	if src.Gateway.BaseURL != "" {
		dst.Gateway.BaseURL = src.Gateway.BaseURL
	}
	if src.Gateway.TimeoutSec != 0 {
		dst.Gateway.TimeoutSec = src.Gateway.TimeoutSec
	}
	if len(src.Gateway.ModelParams) > 0 {
		dst.Gateway.ModelParams = src.Gateway.ModelParams
	}

	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.DataDir != "" {
		dst.Server.DataDir = src.Server.DataDir
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
}

// UserDataDir returns the data directory for one user's conversations,
// board members and prompt overrides.
func (c *Config) UserDataDir(userID string) string {
	return filepath.Join(c.Server.DataDir, "users", userID)
}
