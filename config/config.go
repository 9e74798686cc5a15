// Package config resolves settings from defaults, an optional omnibot.toml,
// a .env file and OMNIBOT_* environment variables, in increasing priority.
// Command-line flags bound by the caller win over all of them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "omnibot"
	configType = "toml"
	envPrefix  = "OMNIBOT"
)

// Keys.
const (
	KeyPort            = "port"
	KeyGatewayBaseURL  = "gateway.base_url"
	KeyGatewayAPIKey   = "gateway.api_key"
	KeyGatewayTimeout  = "gateway.timeout"
	KeyGatewayProbe    = "gateway.probe"
	KeyPrefsBackend    = "prefs.backend"
	KeyPrefsPath       = "prefs.path"
	KeyTasksFile       = "tasks.file"
	KeySessionTTL      = "session.ttl"
	KeyReadTimeout     = "server.read_timeout"
	KeyWriteTimeout    = "server.write_timeout"
	KeyIdleTimeout     = "server.idle_timeout"
	KeyShutdownTimeout = "server.shutdown_timeout"
	KeyModels          = "models"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var ErrInvalidBackend = errors.New("unknown preferences backend")

type Config struct {
	Port       string
	Gateway    Gateway
	Prefs      Prefs
	TasksFile  string
	SessionTTL time.Duration
	Server     Server
	// Models maps a model id to the upstream model name the gateway should
	// use instead of the built-in one.
	Models map[string]string
}

type Gateway struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Probe   bool
}

type Prefs struct {
	Backend string
	Path    string
}

type Server struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// New returns a viper instance with defaults and environment binding set up.
// Flags can be bound to it before Load is called.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyGatewayBaseURL, "https://openrouter.ai/api/v1/")
	v.SetDefault(KeyGatewayAPIKey, "")
	v.SetDefault(KeyGatewayTimeout, 60*time.Second)
	v.SetDefault(KeyGatewayProbe, true)
	v.SetDefault(KeyPrefsBackend, BackendFile)
	v.SetDefault(KeyPrefsPath, defaultPrefsPath())
	v.SetDefault(KeyTasksFile, "")
	v.SetDefault(KeySessionTTL, 30*time.Minute)
	v.SetDefault(KeyReadTimeout, 15*time.Second)
	// Long enough for a full fan-out behind a synchronous request.
	v.SetDefault(KeyWriteTimeout, 90*time.Second)
	v.SetDefault(KeyIdleTimeout, 60*time.Second)
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Plain PORT and OPENAI_API_KEY as used by hosting platforms and the
	// openai tooling.
	_ = v.BindEnv(KeyPort, envPrefix+"_PORT", "PORT")
	_ = v.BindEnv(KeyGatewayAPIKey, envPrefix+"_GATEWAY_API_KEY", "OPENAI_API_KEY")

	return v
}

// Load reads dotenv and the config file into v and returns the resolved
// Config. configFile may be empty, in which case omnibot.toml is searched in
// the working directory and the user config directory; a missing file is not
// an error.
func Load(v *viper.Viper, configFile, dotenv string) (Config, error) {
	if err := LoadDotEnv(dotenv); err != nil {
		return Config{}, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Port: v.GetString(KeyPort),
		Gateway: Gateway{
			BaseURL: v.GetString(KeyGatewayBaseURL),
			APIKey:  v.GetString(KeyGatewayAPIKey),
			Timeout: v.GetDuration(KeyGatewayTimeout),
			Probe:   v.GetBool(KeyGatewayProbe),
		},
		Prefs: Prefs{
			Backend: strings.ToLower(v.GetString(KeyPrefsBackend)),
			Path:    v.GetString(KeyPrefsPath),
		},
		TasksFile:  v.GetString(KeyTasksFile),
		SessionTTL: v.GetDuration(KeySessionTTL),
		Server: Server{
			ReadTimeout:     v.GetDuration(KeyReadTimeout),
			WriteTimeout:    v.GetDuration(KeyWriteTimeout),
			IdleTimeout:     v.GetDuration(KeyIdleTimeout),
			ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		},
		Models: v.GetStringMapString(KeyModels),
	}
	if cfg.Prefs.Backend == BackendSQLite && cfg.Prefs.Path == defaultPrefsPath() {
		cfg.Prefs.Path = strings.TrimSuffix(cfg.Prefs.Path, ".json") + ".db"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Prefs.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Prefs.Backend)
	}
	if c.Port == "" {
		return errors.New("port is empty")
	}
	if c.Prefs.Path == "" {
		return errors.New("preferences path is empty")
	}
	return nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

// LoadDotEnv loads path (".env" when empty) into the process environment
// without overriding variables that are already set. A missing file is
// ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "omnibot-prefs.json"
	}
	return filepath.Join(dir, configName, "prefs.json")
}
