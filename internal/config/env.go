package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/PizzaHomicide/rotv/internal/log"
)

// EnvVar documents a single supported environment variable override
type EnvVar struct {
	Name  string
	Desc  string
	apply func(*Config, string) error
}

var supportedEnvVars = []EnvVar{
	{
		// Only here for documentation purposes.  It points to where the config should be loaded, so it is handled
		// prior to loading the config.
		Name:  "ROTV_CONFIG_PATH",
		Desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) error { return nil },
	},
	{
		Name:  "ROTV_CONFIG_PROVIDER_BASE_URL",
		Desc:  "Sets the broadcaster homepage that channels are scraped from.  Default: https://rds.live/",
		apply: func(c *Config, s string) error { c.Provider.BaseURL = s; return nil },
	},
	{
		Name:  "ROTV_CONFIG_PROVIDER_AJAX_PATH",
		Desc:  "Sets the path of the provider's AJAX endpoint.  Default: /wp-admin/admin-ajax.php",
		apply: func(c *Config, s string) error { c.Provider.AjaxPath = s; return nil },
	},
	{
		Name:  "ROTV_CONFIG_PROVIDER_AJAX_ACTION",
		Desc:  "Sets the action posted to the AJAX endpoint.  Default: get_video_source",
		apply: func(c *Config, s string) error { c.Provider.AjaxAction = s; return nil },
	},
	{
		Name:  "ROTV_CONFIG_PROVIDER_USER_AGENT",
		Desc:  "Sets the User-Agent sent to the provider.  Default: a desktop Chrome identity",
		apply: func(c *Config, s string) error { c.Provider.UserAgent = s; return nil },
	},
	{
		Name:  "ROTV_CONFIG_PROVIDER_SERVER_TAB",
		Desc:  "Sets the stream server tab requested from the provider.  Default: server1",
		apply: func(c *Config, s string) error { c.Provider.ServerTab = s; return nil },
	},
	{
		Name:  "ROTV_CONFIG_PROVIDER_TIMEOUT",
		Desc:  "Sets the timeout for each request to the provider, e.g. 10s.  Default: 10s",
		apply: func(c *Config, s string) error { return setDuration(&c.Provider.Timeout, s) },
	},
	{
		Name: "ROTV_CONFIG_PROVIDER_REQUESTS_PER_SECOND",
		Desc: "Limits outbound requests per second to the provider.  0 disables the limit.  Default: 0",
		apply: func(c *Config, s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return err
			}
			c.Provider.RequestsPerSecond = v
			return nil
		},
	},
	{
		Name:  "ROTV_CONFIG_CACHE_TTL",
		Desc:  "Sets how long the channel list is cached, e.g. 30m.  Default: 1h",
		apply: func(c *Config, s string) error { return setDuration(&c.Cache.TTL, s) },
	},
	{
		Name:  "ROTV_CONFIG_PLAYER_TYPE",
		Desc:  "Sets the video player type.  Should be one of `mpv` or `custom`.  Default: mpv",
		apply: func(c *Config, s string) error { c.Player.Type = s; return nil },
	},
	{
		Name:  "ROTV_CONFIG_PLAYER_PATH",
		Desc:  "Sets the path to a video player binary.  Default: mpv",
		apply: func(c *Config, s string) error { c.Player.Path = s; return nil },
	},
	{
		Name:  "ROTV_CONFIG_PLAYER_ARGS",
		Desc:  "Sets additional video player arguments.  Default: None",
		apply: func(c *Config, s string) error { c.Player.Args = s; return nil },
	},
	{
		Name: "ROTV_CONFIG_PLAYER_AUTOPLAY",
		Desc: "Launches the player as soon as a stream is resolved.  Default: false",
		apply: func(c *Config, s string) error {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return err
			}
			c.Player.Autoplay = v
			return nil
		},
	},
	{
		Name:  "ROTV_CONFIG_UI_COLUMNS",
		Desc:  "Sets how many channels are shown per grid row.  Default: 3",
		apply: func(c *Config, s string) error { return setPositiveInt(&c.UI.Columns, s) },
	},
	{
		Name:  "ROTV_CONFIG_UI_LABEL_WIDTH",
		Desc:  "Sets how many characters of a channel name are shown under its logo.  Default: 15",
		apply: func(c *Config, s string) error { return setPositiveInt(&c.UI.LabelWidth, s) },
	},
	{
		Name:  "ROTV_CONFIG_SERVER_ADDR",
		Desc:  "Sets the listen address for `rotv serve`.  Default: :8501",
		apply: func(c *Config, s string) error { c.Server.Addr = s; return nil },
	},
	{
		Name:  "ROTV_CONFIG_SERVER_SESSION_TTL",
		Desc:  "Sets how long an idle browser session is kept, e.g. 2h.  Default: 12h",
		apply: func(c *Config, s string) error { return setDuration(&c.Server.SessionTTL, s) },
	},
	{
		Name:  "ROTV_CONFIG_SERVER_MAX_SESSIONS",
		Desc:  "Sets how many browser sessions are kept in memory.  Default: 10000",
		apply: func(c *Config, s string) error { return setPositiveInt(&c.Server.MaxSessions, s) },
	},
	{
		Name:  "ROTV_CONFIG_LOGGING_LEVEL",
		Desc:  "Sets the logging level.  One of: debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) error { c.Logging.Level = s; return nil },
	},
	{
		Name:  "ROTV_CONFIG_LOGGING_FILE_PATH",
		Desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) error { c.Logging.FilePath = s; return nil },
	},
}

// SupportedEnvVars returns the documented environment variable overrides
func SupportedEnvVars() []EnvVar {
	return supportedEnvVars
}

func applyEnvVarOverrides(c *Config) {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.Name); value != "" {
			if err := envVar.apply(c, value); err != nil {
				// The logger is not configured yet on first load, so this is mostly useful on reloads
				log.Warn("Ignoring invalid environment override", "name", envVar.Name, "value", value, "error", err)
			}
		}
	}
}

func setDuration(target *time.Duration, s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*target = d
	return nil
}

func setPositiveInt(target *int, s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("must be positive, got %d", v)
	}
	*target = v
	return nil
}
