package config

import (
	"dario.cat/mergo"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config represents the application configuration
type Config struct {
	Provider ProviderConfig `yaml:"provider,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
	Player   PlayerConfig   `yaml:"player,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// ProviderConfig describes the broadcaster site that channels and streams are scraped from
type ProviderConfig struct {
	BaseURL    string        `yaml:"base_url,omitempty"`
	AjaxPath   string        `yaml:"ajax_path,omitempty"`
	AjaxAction string        `yaml:"ajax_action,omitempty"`
	ServerTab  string        `yaml:"server_tab,omitempty"`
	UserAgent  string        `yaml:"user_agent,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	// Maximum outbound requests per second to the provider.  0 disables pacing.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// CacheConfig controls how long the channel directory is reused before being scraped again
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl,omitempty"`
}

// PlayerConfig contains media player settings
type PlayerConfig struct {
	Type     string `yaml:"type,omitempty"` // "mpv", "custom"
	Path     string `yaml:"path,omitempty"`
	Args     string `yaml:"args,omitempty"`
	Autoplay bool   `yaml:"autoplay,omitempty"`
}

// UIConfig contains UI display preferences
type UIConfig struct {
	Columns    int `yaml:"columns,omitempty"`
	LabelWidth int `yaml:"label_width,omitempty"`
}

// ServerConfig contains settings for the browser UI served by `rotv serve`
type ServerConfig struct {
	Addr       string        `yaml:"addr,omitempty"`
	SessionTTL time.Duration `yaml:"session_ttl,omitempty"`
	// Upper bound on browser sessions held in memory.  The least recently seen one is evicted past it.
	MaxSessions int `yaml:"max_sessions,omitempty"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty"`
	FilePath string `yaml:"file_path,omitempty"`
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties.  Dynamic properties are those that are determined at runtime, for example log file location which is different per OS.
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply environment variable overrides
func Load() (*Config, error) {
	// 1. Start with base defaults
	cfg := Default()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	// 2. If no config file exists on disk, then write a default one
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// If there is an error saving the default config, then still let the application startup using the defaults.
		_ = save(cfg, configPath)
	}

	// 3. Apply dynamic defaults if necessary
	applyDynamicDefaults(cfg)

	// 4. Load the config from disk and merge it into the base defaults
	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	// Overrides the config with any values coming from the loaded file
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	// 5. Apply the environment variable overrides which take precedence
	applyEnvVarOverrides(cfg)

	return cfg, nil
}

// applyDynamicDefaults sets runtime-determined default values for any properties that haven't been explicitly configured.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func save(cfg *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	updateFn(cfg)

	return save(cfg, configPath)
}

// Path returns the location the config file is read from
func Path() (string, error) {
	return getConfigPath()
}

// getConfigPath returns the path to the config file.  Uses the environment variable override if present, else tries
// to use OS config location defaults.
func getConfigPath() (string, error) {
	configPath := os.Getenv("ROTV_CONFIG_PATH")
	if configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "rotv", "config.yaml"), nil
}

// Default creates a config with all static default values.  Dynamic defaults such as the log path are not set.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			BaseURL:    "https://rds.live/",
			AjaxPath:   "/wp-admin/admin-ajax.php",
			AjaxAction: "get_video_source",
			ServerTab:  "server1",
			UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0 Safari/537.36",
			Timeout:    10 * time.Second,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Player: PlayerConfig{
			Type: "mpv",
			Path: "mpv",
		},
		UI: UIConfig{
			Columns:    3,
			LabelWidth: 15,
		},
		Server: ServerConfig{
			Addr:        ":8501",
			SessionTTL:  12 * time.Hour,
			MaxSessions: 10000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultLogFilePath returns the path to the log file.  Tries to use expected OS location defaults.
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to logging in the current directory if home directory cannot be determined
		return filepath.Join(".", "rotv.log")
	}

	switch runtime.GOOS {
	case "windows":
		// Windows:  %LOCALAPPDATA%\rotv\logs
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, "rotv", "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", "rotv", "logs")
		}
	case "darwin":
		// macOS:  ~/Library/Logs/rotv
		basePath = filepath.Join(homedir, "Library", "Logs", "rotv")
	default:
		// Linux/BSD:  XDG_STATE_HOME
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, "rotv", "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", "rotv", "logs")
		}
	}

	err = os.MkdirAll(basePath, 0700)
	if err != nil {
		return filepath.Join(".", "rotv.log")
	}
	return filepath.Join(basePath, "rotv.log")
}
