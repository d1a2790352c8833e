package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName   = "enkai"
	EnvPrefix = "ENKAI"
)

// Config holds user settings merged from the config file, ENKAI_* environment
// variables and command-line flags, in increasing precedence.
type Config struct {
	// Backup keeps <file>.enkai.bak next to every file written.
	Backup bool `mapstructure:"backup"`

	Debug   bool   `mapstructure:"debug"`
	LogFile string `mapstructure:"log_file"`

	// AutoStage stages saved files before continuing a merge or rebase.
	AutoStage bool `mapstructure:"auto_stage"`

	Theme ThemeConfig `mapstructure:"theme"`
}

// ThemeConfig selects a named palette. Each palette maps color keys such as
// "header_bg" to lipgloss color strings; missing keys keep the default.
type ThemeConfig struct {
	Default string             `mapstructure:"default"`
	Themes  map[string]Palette `mapstructure:"themes"`
}

type Palette map[string]string

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"backup":   "backup",
	"debug":    "debug",
	"log-file": "log_file",
}

func Default() *Config {
	return &Config{
		AutoStage: true,
		Theme:     ThemeConfig{Default: "default"},
	}
}

// Dir is $XDG_CONFIG_HOME/enkai or the platform equivalent.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// Load reads configuration. An explicit path must exist; the default
// location is optional. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	def := Default()
	v.SetDefault("backup", def.Backup)
	v.SetDefault("debug", def.Debug)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("auto_stage", def.AutoStage)
	v.SetDefault("theme.default", def.Theme.Default)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if strings.TrimSpace(cfg.Theme.Default) == "" {
		cfg.Theme.Default = def.Theme.Default
	}
	return cfg, nil
}
