package config

import (
	"github.com/stretchr/testify/assert"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "rotv-config-test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}

	t.Cleanup(func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			t.Fatalf("Failed to remove temp directory: %v", err)
		}
	})

	tmpConfigPath := filepath.Join(tmpDir, "config.yaml")
	setEnv(t, "ROTV_CONFIG_PATH", tmpConfigPath)

	t.Cleanup(func() {
		cleanupEnvVars(t)
	})

	return tmpConfigPath
}

// TestConfigIntegration tests the config package with actual file operations
// This test uses a temporary directory to avoid interfering with real user configs
func TestConfigIntegration(t *testing.T) {
	t.Run("LoadDefaultConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		config := loadConfig(t)

		assert.Equal(t, "https://rds.live/", config.Provider.BaseURL)
		assert.Equal(t, "server1", config.Provider.ServerTab)
		assert.Equal(t, "get_video_source", config.Provider.AjaxAction)
		assert.Equal(t, time.Hour, config.Cache.TTL)
		assert.Equal(t, "mpv", config.Player.Type)
		assert.Equal(t, 3, config.UI.Columns)
		assert.Equal(t, 15, config.UI.LabelWidth)
		assert.Equal(t, "info", config.Logging.Level)
		assert.NotEmpty(t, config.Logging.FilePath)

		if _, err := os.Stat(tmpConfigPath); os.IsNotExist(err) {
			t.Errorf("Config file was not created at %s", tmpConfigPath)
		}

		// The 'dynamic' configurations must not be saved when the default config was written
		savedConfig, _ := loadFromDisk(tmpConfigPath)
		assert.Empty(t, savedConfig.Logging.FilePath)
		assert.Equal(t, time.Hour, savedConfig.Cache.TTL)
	})

	t.Run("SaveAndLoadConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		customConfig := &Config{
			Provider: ProviderConfig{
				BaseURL:           "https://mirror.example/",
				ServerTab:         "server2",
				Timeout:           3 * time.Second,
				RequestsPerSecond: 2,
			},
			Cache: CacheConfig{TTL: 5 * time.Minute},
			Player: PlayerConfig{
				Type:     "custom",
				Path:     "/usr/bin/vlc",
				Args:     "--fullscreen",
				Autoplay: true,
			},
			UI: UIConfig{Columns: 4},
			Logging: LoggingConfig{
				Level:    "error",
				FilePath: "/var/log/rotv.log",
			},
		}

		saveConfig(t, customConfig, tmpConfigPath)
		loadedConfig := loadConfig(t)

		assert.Equal(t, "https://mirror.example/", loadedConfig.Provider.BaseURL)
		assert.Equal(t, "server2", loadedConfig.Provider.ServerTab)
		assert.Equal(t, 3*time.Second, loadedConfig.Provider.Timeout)
		assert.Equal(t, 2.0, loadedConfig.Provider.RequestsPerSecond)
		// Unset fields keep their defaults
		assert.Equal(t, "/wp-admin/admin-ajax.php", loadedConfig.Provider.AjaxPath)
		assert.Equal(t, 5*time.Minute, loadedConfig.Cache.TTL)
		assert.Equal(t, "custom", loadedConfig.Player.Type)
		assert.Equal(t, "/usr/bin/vlc", loadedConfig.Player.Path)
		assert.Equal(t, "--fullscreen", loadedConfig.Player.Args)
		assert.True(t, loadedConfig.Player.Autoplay)
		assert.Equal(t, 4, loadedConfig.UI.Columns)
		assert.Equal(t, 15, loadedConfig.UI.LabelWidth)
		assert.Equal(t, "error", loadedConfig.Logging.Level)
		assert.Equal(t, "/var/log/rotv.log", loadedConfig.Logging.FilePath)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		if err := os.WriteFile(tmpConfigPath, []byte("invalid: yaml: ["), 0600); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err := Load()
		if err == nil {
			t.Error("Expected error when loading invalid YAML, got nil")
		}
	})

	t.Run("EnvironmentVariableOverrides", func(t *testing.T) {
		setupTestConfig(t)

		setEnv(t, "ROTV_CONFIG_PROVIDER_BASE_URL", "https://other.example/")
		setEnv(t, "ROTV_CONFIG_PROVIDER_TIMEOUT", "2s")
		setEnv(t, "ROTV_CONFIG_PROVIDER_REQUESTS_PER_SECOND", "0.5")
		setEnv(t, "ROTV_CONFIG_CACHE_TTL", "30m")
		setEnv(t, "ROTV_CONFIG_PLAYER_TYPE", "custom")
		setEnv(t, "ROTV_CONFIG_PLAYER_PATH", "/vlc")
		setEnv(t, "ROTV_CONFIG_PLAYER_AUTOPLAY", "true")
		setEnv(t, "ROTV_CONFIG_SERVER_ADDR", "127.0.0.1:9000")
		setEnv(t, "ROTV_CONFIG_LOGGING_LEVEL", "warn")
		setEnv(t, "ROTV_CONFIG_LOGGING_FILE_PATH", "/rotv.log")

		config := loadConfig(t)

		assert.Equal(t, "https://other.example/", config.Provider.BaseURL)
		assert.Equal(t, 2*time.Second, config.Provider.Timeout)
		assert.Equal(t, 0.5, config.Provider.RequestsPerSecond)
		assert.Equal(t, 30*time.Minute, config.Cache.TTL)
		assert.Equal(t, "custom", config.Player.Type)
		assert.Equal(t, "/vlc", config.Player.Path)
		assert.True(t, config.Player.Autoplay)
		assert.Equal(t, "127.0.0.1:9000", config.Server.Addr)
		assert.Equal(t, "warn", config.Logging.Level)
		assert.Equal(t, "/rotv.log", config.Logging.FilePath)

		// Env var overrides must not be persisted to disk
		unsetEnv(t, "ROTV_CONFIG_LOGGING_LEVEL")

		config = loadConfig(t)

		assert.Equal(t, "info", config.Logging.Level)
	})

	t.Run("SectionEnvironmentOverrides", func(t *testing.T) {
		setupTestConfig(t)
		t.Setenv("ROTV_CONFIG_PROVIDER_AJAX_PATH", "/api/source")
		t.Setenv("ROTV_CONFIG_PROVIDER_AJAX_ACTION", "load_stream")
		t.Setenv("ROTV_CONFIG_UI_COLUMNS", "5")
		t.Setenv("ROTV_CONFIG_UI_LABEL_WIDTH", "20")
		t.Setenv("ROTV_CONFIG_SERVER_SESSION_TTL", "2h")
		t.Setenv("ROTV_CONFIG_SERVER_MAX_SESSIONS", "50")

		config := loadConfig(t)

		assert.Equal(t, "/api/source", config.Provider.AjaxPath)
		assert.Equal(t, "load_stream", config.Provider.AjaxAction)
		assert.Equal(t, 5, config.UI.Columns)
		assert.Equal(t, 20, config.UI.LabelWidth)
		assert.Equal(t, 2*time.Hour, config.Server.SessionTTL)
		assert.Equal(t, 50, config.Server.MaxSessions)
	})

	t.Run("NonPositiveColumnsIgnored", func(t *testing.T) {
		setupTestConfig(t)
		t.Setenv("ROTV_CONFIG_UI_COLUMNS", "0")

		config := loadConfig(t)

		assert.Equal(t, 3, config.UI.Columns)
	})

	t.Run("InvalidEnvironmentValueIgnored", func(t *testing.T) {
		setupTestConfig(t)
		setEnv(t, "ROTV_CONFIG_CACHE_TTL", "soon")

		config := loadConfig(t)

		assert.Equal(t, time.Hour, config.Cache.TTL)
	})

	t.Run("ModifyConfig", func(t *testing.T) {
		setupTestConfig(t)
		config := loadConfig(t)

		assert.Equal(t, "mpv", config.Player.Type)

		err := UpdateConfig(func(config *Config) {
			config.Player.Type = "custom"
		})
		if err != nil {
			t.Fatalf("Failed to update config: %v", err)
		}

		config = loadConfig(t)
		assert.Equal(t, "custom", config.Player.Type)
	})
}

func TestSupportedEnvVarsHavePrefixAndDescription(t *testing.T) {
	for _, v := range SupportedEnvVars() {
		assert.True(t, strings.HasPrefix(v.Name, "ROTV_CONFIG_"), v.Name)
		assert.NotEmpty(t, v.Desc, v.Name)
	}
}

// Every leaf of the YAML config can be overridden by ROTV_CONFIG_<SECTION>_<FIELD>
func TestSupportedEnvVarsCoverConfig(t *testing.T) {
	names := make(map[string]bool)
	for _, v := range SupportedEnvVars() {
		names[v.Name] = true
	}

	cfgType := reflect.TypeOf(Config{})
	for i := 0; i < cfgType.NumField(); i++ {
		section := cfgType.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			field := section.Type.Field(j)
			name := "ROTV_CONFIG_" + strings.ToUpper(yamlName(section)+"_"+yamlName(field))
			assert.True(t, names[name], "missing environment override %s", name)
		}
	}
}

func yamlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	return name
}

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	err := os.Setenv(key, value)
	if err != nil {
		t.Fatalf("Failed to set environment variable: %v", err)
	}
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	err := os.Unsetenv(key)
	if err != nil {
		t.Fatalf("Failed to unset environment variable: %v", err)
	}
}

func saveConfig(t *testing.T, config *Config, configPath string) {
	t.Helper()
	if err := save(config, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
}

func loadConfig(t *testing.T) *Config {
	t.Helper()
	config, err := Load()
	if err != nil {
		t.Fatalf("Loading of config failed: %v", err)
	}
	return config
}

// Removes any env vars with the ROTV_CONFIG prefix to ensure test isolation
func cleanupEnvVars(t *testing.T) {
	t.Helper()

	for _, envVar := range os.Environ() {
		if key := strings.Split(envVar, "=")[0]; strings.HasPrefix(key, "ROTV_CONFIG") {
			unsetEnv(t, key)
		}
	}
}
