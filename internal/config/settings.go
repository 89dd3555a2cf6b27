package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "QUADSIM"

// Settings are the runtime options of the CLI, as opposed to the physics of
// a single flight.
type Settings struct {
	DataDir string         `mapstructure:"data_dir"`
	Log     LogSettings    `mapstructure:"log"`
	Index   IndexSettings  `mapstructure:"index"`
	Influx  InfluxSettings `mapstructure:"influx"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// Graylog is a GELF UDP address; empty disables shipping.
	Graylog string `mapstructure:"graylog"`
}

type IndexSettings struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
}

type InfluxSettings struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	Token      string `mapstructure:"token"`
	Org        string `mapstructure:"org"`
	Bucket     string `mapstructure:"bucket"`
	BackupPath string `mapstructure:"backup_path"`
}

func setDefaults() {
	viper.SetDefault("data_dir", "./data")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.graylog", "")
	viper.SetDefault("index.enabled", true)
	viper.SetDefault("index.driver", "sqlite")
	viper.SetDefault("index.path", "")
	viper.SetDefault("index.dsn", "")
	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.url", "http://localhost:8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "quadsim")
	viper.SetDefault("influx.bucket", "telemetry")
	viper.SetDefault("influx.backup_path", "")
}

// LoadSettings reads defaults, then quadsim.yaml from the working directory
// (or the explicit file), then QUADSIM_* environment variables.
func LoadSettings(file string) (*Settings, error) {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName("quadsim")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if s.Index.Path == "" {
		s.Index.Path = filepath.Join(s.DataDir, "index.db")
	}
	return &s, nil
}
