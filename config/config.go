// Package config loads application settings from config.yaml plus a .env
// file for secrets. The config file is searched upward from the working
// directory so tests and binaries in cmd/ resolve the same file.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envFile    = ".env"
	configFile = "config.yaml"
)

// AppConfig is the full application configuration.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Store     StoreConfig     `yaml:"store"`
	Retention RetentionConfig `yaml:"retention"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// GeminiConfig names the two models in play: the primary conversational
// model and the cheaper router model used only for yes/no intent checks.
type GeminiConfig struct {
	Model       string `yaml:"model"`
	RouterModel string `yaml:"router_model"`
}

// StoreConfig selects the session store backend.
type StoreConfig struct {
	Type       string `yaml:"type"`       // "sqlite" or "postgres"
	Connection string `yaml:"connection"` // file path or DSN
}

// RetentionConfig controls the idle-session pruning job. A zero
// MaxIdleDays disables pruning.
type RetentionConfig struct {
	Schedule    string `yaml:"schedule"`
	MaxIdleDays int    `yaml:"max_idle_days"`
}

var config *AppConfig

// Init loads .env and config.yaml. Missing files fall back to defaults;
// a malformed config file panics since nothing sensible can run without
// one.
func Init() {
	base := basePath()
	godotenv.Load(filepath.Join(base, envFile))

	c := defaults()
	data, err := os.ReadFile(filepath.Join(base, configFile))
	if err == nil {
		if err := yaml.Unmarshal(data, &c); err != nil {
			panic("invalid " + configFile + ": " + err.Error())
		}
	}
	config = &c
}

// Get returns the loaded configuration, initializing on first use.
func Get() AppConfig {
	if config == nil {
		Init()
	}
	return *config
}

// APIKey reads the Gemini API key from the environment.
func APIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func defaults() AppConfig {
	return AppConfig{
		Server:  ServerConfig{Port: 8080},
		Logging: LoggingConfig{Level: "info"},
		Gemini: GeminiConfig{
			Model:       "gemini-3-flash-preview",
			RouterModel: "gemini-2.5-flash-lite",
		},
		Store: StoreConfig{Type: "sqlite", Connection: "iron-golem.sqlite"},
		Retention: RetentionConfig{
			Schedule:    "0 0 3 * * *",
			MaxIdleDays: 0,
		},
	}
}

// basePath walks up from the working directory to the first directory
// containing config.yaml. Falls back to the working directory itself.
func basePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, configFile)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}
