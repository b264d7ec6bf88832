package config

import (
	"log"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "AXPRESS_CONFIG"

	defaultBackendURL  = "http://127.0.0.1:8000"
	defaultTimeout     = 10 * time.Minute
	defaultDownloadDir = "downloads"
	defaultLogLevel    = "info"
)

// Config holds high-level settings required across the application.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig describes how to reach the research backend.
type BackendConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig sets where save-as downloads land.
type StorageConfig struct {
	DownloadDir string `yaml:"downloadDir"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

type envOverrides struct {
	BackendURL  string        `env:"AXPRESS_BACKEND_URL"`
	Timeout     time.Duration `env:"AXPRESS_HTTP_TIMEOUT"`
	DownloadDir string        `env:"AXPRESS_DOWNLOAD_DIR"`
	LogLevel    string        `env:"AXPRESS_LOG_LEVEL"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return load(os.Getenv(configPathEnv), nil)
}

// LoadFile is Load with an explicit config path; an empty path means defaults only.
func LoadFile(path string) Config {
	return load(path, nil)
}

func load(path string, environ map[string]string) Config {
	cfg := defaultConfig()

	if path != "" {
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

	cfg.applyEnvOverrides(environ)
	cfg.validate()

	return cfg
}

func (c *Config) applyEnvOverrides(environ map[string]string) {
	var overrides envOverrides
	if err := env.ParseWithOptions(&overrides, env.Options{Environment: environ}); err != nil {
		log.Printf("config: cannot parse environment: %v (ignoring overrides)", err)
		return
	}

	override := Config{
		Backend: BackendConfig{BaseURL: overrides.BackendURL, Timeout: overrides.Timeout},
		Storage: StorageConfig{DownloadDir: overrides.DownloadDir},
		Logging: LoggingConfig{Level: overrides.LogLevel},
	}
	*c = mergeConfig(*c, override)
}

func (c *Config) validate() {
	parsed, err := url.Parse(c.Backend.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		log.Printf("config: invalid backend url %q, reverting to %s", c.Backend.BaseURL, defaultBackendURL)
		c.Backend.BaseURL = defaultBackendURL
	}
	if c.Backend.Timeout <= 0 {
		log.Printf("config: invalid backend timeout %s, reverting to %s", c.Backend.Timeout, defaultTimeout)
		c.Backend.Timeout = defaultTimeout
	}
}

func mergeConfig(base, override Config) Config {
	if override.Backend.BaseURL != "" {
		base.Backend.BaseURL = override.Backend.BaseURL
	}
	if override.Backend.Timeout != 0 {
		base.Backend.Timeout = override.Backend.Timeout
	}

	if override.Storage.DownloadDir != "" {
		base.Storage.DownloadDir = override.Storage.DownloadDir
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Backend: BackendConfig{BaseURL: defaultBackendURL, Timeout: defaultTimeout},
		Storage: StorageConfig{DownloadDir: defaultDownloadDir},
		Logging: LoggingConfig{Level: defaultLogLevel},
	}
}
