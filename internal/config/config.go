package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const (
	KeyListenAddr = "listen_addr"
	KeyDBPath     = "db_path"
	KeyPhotoPath  = "photo_local_path"
	KeyLogLevel   = "log_level"
	KeyLogFormat  = "log_format"
	KeyLogFile    = "log_file"

	// ConfigDirEnv names the directory searched for config.yaml.
	ConfigDirEnv = "HOMEINV_CONFIG_DIR"

	configFileName = "config"
	configFileType = "yaml"
)

type Config struct {
	ListenAddr string
	DBPath     string
	PhotoPath  string
	LogLevel   string
	LogFormat  string
	LogFile    string
}

var envNames = map[string]string{
	KeyListenAddr: "LISTEN_ADDR",
	KeyDBPath:     "DB_PATH",
	KeyPhotoPath:  "PHOTO_LOCAL_PATH",
	KeyLogLevel:   "LOG_LEVEL",
	KeyLogFormat:  "LOG_FORMAT",
	KeyLogFile:    "LOG_FILE",
}

var defaults = map[string]string{
	KeyListenAddr: ":8080",
	KeyDBPath:     "/data/homeinv.db",
	KeyPhotoPath:  "/data/photos",
	KeyLogLevel:   "info",
	KeyLogFormat:  "json",
	KeyLogFile:    "",
}

// Load reads configuration from the environment and an optional config.yaml.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom resolves configuration through v. Values bound on v before the
// call, such as command-line flags, take precedence over the environment,
// which takes precedence over config.yaml and the defaults.
func LoadFrom(v *viper.Viper) (*Config, error) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	for key, env := range envNames {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	return &Config{
		ListenAddr: v.GetString(KeyListenAddr),
		DBPath:     v.GetString(KeyDBPath),
		PhotoPath:  v.GetString(KeyPhotoPath),
		LogLevel:   v.GetString(KeyLogLevel),
		LogFormat:  v.GetString(KeyLogFormat),
		LogFile:    v.GetString(KeyLogFile),
	}, nil
}
