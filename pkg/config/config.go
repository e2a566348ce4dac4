// Package config loads archmap configuration from a TOML file with
// environment variable overrides for credentials.
//
// The file lives at ~/.config/archmap/config.toml by default. A missing file
// is not an error; defaults apply. GITHUB_TOKEN and GEMINI_API_KEY always win
// over the file so credentials can stay out of it entirely.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/autoclouddeploy/archmap/pkg/errors"
	"github.com/autoclouddeploy/archmap/pkg/genai"
)

// Cache backend names accepted in [CacheConfig.Backend].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full archmap configuration.
type Config struct {
	GitHub  GitHubConfig  `toml:"github"`
	Gemini  GeminiConfig  `toml:"gemini"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
	Dataset DatasetConfig `toml:"dataset"`
}

// GitHubConfig configures access to the GitHub API.
type GitHubConfig struct {
	// Token authenticates API requests. Optional; unauthenticated requests
	// work with lower rate limits. Overridden by GITHUB_TOKEN.
	Token string `toml:"token"`
}

// GeminiConfig configures the Gemini generation backend.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API.
	// Overridden by GEMINI_API_KEY.
	APIKey string `toml:"api_key"`

	// Model names the Gemini model to use.
	Model string `toml:"model"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	// Backend is one of file, redis, or none.
	Backend string `toml:"backend"`

	// Dir is the file backend's directory. Empty means the default
	// under the user cache directory.
	Dir string `toml:"dir"`

	// Redis connection settings, used when Backend is redis.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `toml:"addr"`
}

// DatasetConfig holds defaults for dataset builds.
type DatasetConfig struct {
	// Query is the GitHub search query for candidate repositories.
	Query string `toml:"query"`

	// Limit caps how many repositories a build fetches.
	Limit int `toml:"limit"`

	// Dir is the dataset output directory.
	Dir string `toml:"dir"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Gemini: GeminiConfig{Model: genai.DefaultModel},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{Addr: ":8080"},
		Dataset: DatasetConfig{
			Query: "topic:terraform language:HCL",
			Limit: 25,
			Dir:   "dataset",
		},
	}
}

// DefaultPath returns the default configuration file location,
// ~/.config/archmap/config.toml (or the platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "archmap", "config.toml"), nil
}

// Load reads the configuration file at path, overlaying it on the defaults
// and then applying environment overrides. A missing file yields the defaults
// without error; a malformed file is an error.
//
// When path is empty, the default location is used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			cfg.applyEnv()
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeParse, err, "parse config %s", path)
	}

	cfg.applyEnv()
	return cfg, cfg.validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"unknown cache backend %q (want file, redis, or none)", c.Cache.Backend)
	}
}
