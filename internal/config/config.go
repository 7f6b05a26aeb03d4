package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/terraconstructs/postboard/internal/logging"
)

// EnvPrefix is prepended to every environment variable, e.g. POSTBOARD_API_URL.
const EnvPrefix = "POSTBOARD"

// Config holds the settings shared by postctl commands and the gateway.
type Config struct {
	// APIURL is the root of the postboard REST API.
	APIURL string

	// SessionDir holds one subdirectory of session files per API origin.
	SessionDir string

	// Timeout bounds each API request.
	Timeout time.Duration

	Debug     bool
	LogFormat logging.Format

	// NonInteractive disables prompts and spinners.
	NonInteractive bool

	// Gateway settings
	ListenAddr     string
	AllowedOrigins []string
	// Ephemeral keeps the gateway's session in memory only.
	Ephemeral bool
}

// SetDefaults registers default values on the global viper instance.
func SetDefaults() {
	viper.SetDefault("api_url", "http://localhost:3000")
	viper.SetDefault("session_dir", defaultSessionDir())
	viper.SetDefault("timeout", 30*time.Second)
	viper.SetDefault("debug", false)
	viper.SetDefault("log_format", string(logging.FormatText))
	viper.SetDefault("non_interactive", false)
	viper.SetDefault("listen_addr", "localhost:4000")
	viper.SetDefault("allowed_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	viper.SetDefault("ephemeral", false)
}

// Init wires environment variables and the optional config file into viper.
// An explicit file must exist; the default ~/.postboard/config.yaml may be absent.
func Init(configFile string) error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	SetDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".postboard"))
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// Load reads the current viper values into a Config and validates them.
func Load() (*Config, error) {
	SetDefaults()

	format, err := logging.ParseFormat(viper.GetString("log_format"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:         strings.TrimRight(viper.GetString("api_url"), "/"),
		SessionDir:     viper.GetString("session_dir"),
		Timeout:        viper.GetDuration("timeout"),
		Debug:          viper.GetBool("debug"),
		LogFormat:      format,
		NonInteractive: viper.GetBool("non_interactive"),
		ListenAddr:     viper.GetString("listen_addr"),
		AllowedOrigins: viper.GetStringSlice("allowed_origins"),
		Ephemeral:      viper.GetBool("ephemeral"),
	}

	if cfg.APIURL == "" {
		return nil, fmt.Errorf("api_url is required")
	}
	u, err := url.Parse(cfg.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api_url %q must be an absolute http(s) URL", cfg.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api_url %q must use http or https", cfg.APIURL)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.SessionDir == "" && !cfg.Ephemeral {
		return nil, fmt.Errorf("session_dir is required")
	}

	return cfg, nil
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "postboard", "sessions")
	}
	return filepath.Join(home, ".postboard", "sessions")
}
