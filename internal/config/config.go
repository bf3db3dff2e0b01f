package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL = "http://localhost:8000"
	DefaultTheme      = "dark"
)

type RuntimeConfig struct {
	APIBaseURL     string
	DataDir        string
	RequestTimeout time.Duration
	Theme          string
	DebugLog       string
}

type fileConfig struct {
	APIURL         string `yaml:"api_url" mapstructure:"api_url"`
	DataDir        string `yaml:"data_dir" mapstructure:"data_dir"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	Theme          string `yaml:"theme" mapstructure:"theme"`
	DebugLog       string `yaml:"debug_log" mapstructure:"debug_log"`
}

func Default() RuntimeConfig {
	return RuntimeConfig{
		APIBaseURL:     DefaultAPIBaseURL,
		DataDir:        defaultDataDir(),
		RequestTimeout: 15 * time.Second,
		Theme:          DefaultTheme,
	}
}

func (c RuntimeConfig) SessionDBPath() string {
	return filepath.Join(c.DataDir, "tasktag.db")
}

// DefaultPath is $XDG_CONFIG_HOME/tasktag/config.yaml, or the platform
// config dir when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); dir != "" {
		return filepath.Join(dir, "tasktag", "config.yaml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".tasktag", "config.yaml")
	}
	return filepath.Join(dir, "tasktag", "config.yaml")
}

func defaultDataDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); dir != "" {
		return filepath.Join(dir, "tasktag")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tasktag"
	}
	return filepath.Join(home, ".local", "share", "tasktag")
}

// Load applies the file at path (DefaultPath when empty) and then the
// environment on top of Default. A missing file is not an error.
func Load(path string) (RuntimeConfig, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg, err := FromFile(path, Default())
	if err != nil {
		return cfg, err
	}
	return FromEnv(cfg), nil
}

// FromFile overlays the YAML file at path on base. Empty or invalid
// values keep the base value.
func FromFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return base, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return base, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg := base
	if s := strings.TrimSpace(fc.APIURL); s != "" {
		cfg.APIBaseURL = s
	}
	if s := strings.TrimSpace(fc.DataDir); s != "" {
		cfg.DataDir = s
	}
	if fc.TimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	if isTheme(fc.Theme) {
		cfg.Theme = strings.ToLower(fc.Theme)
	}
	if s := strings.TrimSpace(fc.DebugLog); s != "" {
		cfg.DebugLog = s
	}
	return cfg, nil
}

func FromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("TASKTAG_API_URL"); ok {
		cfg.APIBaseURL = v
	}
	if v, ok := getEnvString("TASKTAG_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := getEnvInt("TASKTAG_TIMEOUT_SECONDS"); ok && v > 0 {
		cfg.RequestTimeout = time.Duration(v) * time.Second
	}
	if v, ok := getEnvString("TASKTAG_THEME"); ok && isTheme(v) {
		cfg.Theme = strings.ToLower(v)
	}
	if v, ok := getEnvString("TASKTAG_DEBUG_LOG"); ok {
		cfg.DebugLog = v
	}
	return cfg
}

// WriteDefault writes cfg to path as YAML. An existing file is left alone
// unless overwrite is set.
func WriteDefault(path string, cfg RuntimeConfig, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	out, err := yaml.Marshal(fileConfig{
		APIURL:         cfg.APIBaseURL,
		DataDir:        cfg.DataDir,
		TimeoutSeconds: int(cfg.RequestTimeout / time.Second),
		Theme:          cfg.Theme,
		DebugLog:       cfg.DebugLog,
	})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

func isTheme(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark", "light":
		return true
	}
	return false
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
