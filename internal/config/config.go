// Package config loads taskbox settings from defaults, an optional YAML file,
// TASKBOX_* environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tgienger/taskbox/internal/db"
)

// Keys
const (
	KeyDBPath         = "db.path"
	KeyLogFile        = "log.file"
	KeyLogLevel       = "log.level"
	KeyChatSender     = "chat.sender"
	KeyServerAddr     = "server.addr"
	KeyAllowedOrigins = "server.allowed_origins"
)

// Config is the resolved application configuration
type Config struct {
	DBPath         string
	LogFile        string
	LogLevel       string
	ChatSender     string
	ServerAddr     string
	AllowedOrigins []string
}

// Dir returns the configuration directory ($XDG_CONFIG_HOME/taskbox)
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "taskbox"), nil
}

// New returns a viper instance with defaults and env binding applied
func New() (*viper.Viper, error) {
	v := viper.New()

	dbPath, err := db.DefaultPath()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve data directory")
	}
	v.SetDefault(KeyDBPath, dbPath)
	v.SetDefault(KeyLogFile, filepath.Join(filepath.Dir(dbPath), "log", "taskbox.log"))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyChatSender, "Admin")
	v.SetDefault(KeyServerAddr, "127.0.0.1:8420")
	v.SetDefault(KeyAllowedOrigins, []string{"http://localhost:3000"})

	v.SetEnvPrefix("taskbox")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// BindFlags maps command-line flags onto config keys. Flags not present in fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		KeyDBPath:     "db",
		KeyLogFile:    "log-file",
		KeyLogLevel:   "log-level",
		KeyChatSender: "sender",
		KeyServerAddr: "addr",
	}
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return goerr.Wrap(err, "failed to bind flag", goerr.V("flag", name))
		}
	}
	return nil
}

// Load reads the config file and returns the resolved Config. An explicit path
// must exist; otherwise config.yaml in Dir() is used when present.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve config directory")
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, goerr.Wrap(err, "failed to read config file", goerr.V("dir", dir))
			}
		}
	}

	cfg := &Config{
		DBPath:         v.GetString(KeyDBPath),
		LogFile:        v.GetString(KeyLogFile),
		LogLevel:       v.GetString(KeyLogLevel),
		ChatSender:     v.GetString(KeyChatSender),
		ServerAddr:     v.GetString(KeyServerAddr),
		AllowedOrigins: v.GetStringSlice(KeyAllowedOrigins),
	}
	if cfg.DBPath == "" {
		return nil, goerr.New("database path is empty", goerr.V("key", KeyDBPath))
	}
	return cfg, nil
}
