// Package config loads backview settings. Environment variables
// (BACKVIEW_LOG_LEVEL, BACKVIEW_API_ENDPOINT, ...) override the YAML file,
// which overrides the defaults.
package config

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "BACKVIEW"

type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	API    APIConfig    `mapstructure:"api" yaml:"api"`
	Render RenderConfig `mapstructure:"render" yaml:"render"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	TimeFormat string `mapstructure:"time_format" yaml:"time_format"`
	Colored    bool   `mapstructure:"colored" yaml:"colored"`
	JSON       bool   `mapstructure:"json" yaml:"json"`
	Backend    string `mapstructure:"backend" yaml:"backend" validate:"oneof=zerolog logrus"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr" validate:"required"`
	Debug          bool     `mapstructure:"debug" yaml:"debug"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type APIConfig struct {
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries" validate:"gte=0"`
	BackoffMin time.Duration `mapstructure:"backoff_min" yaml:"backoff_min" validate:"gt=0"`
	BackoffMax time.Duration `mapstructure:"backoff_max" yaml:"backoff_max" validate:"gtefield=BackoffMin"`
}

type RenderConfig struct {
	Width     int      `mapstructure:"width" yaml:"width" validate:"gte=200"`
	Height    int      `mapstructure:"height" yaml:"height" validate:"gte=150"`
	Timezone  string   `mapstructure:"timezone" yaml:"timezone"`
	OutputDir string   `mapstructure:"output_dir" yaml:"output_dir"`
	Charts    []string `mapstructure:"charts" yaml:"charts"`
}

// Location resolves the timezone used to format timestamp categories
func (r RenderConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("render.timezone: %w", err)
	}
	return loc, nil
}

var defaults = map[string]any{
	"log.level":              "info",
	"log.time_format":        "2006-01-02 15:04:05",
	"log.colored":            true,
	"log.json":               false,
	"log.backend":            "zerolog",
	"server.addr":            ":8080",
	"server.debug":           false,
	"server.allowed_origins": []string{"*"},
	"api.endpoint":           "http://localhost:8000/backtest",
	"api.timeout":            "2m",
	"api.max_retries":        3,
	"api.backoff_min":        "500ms",
	"api.backoff_max":        "10s",
	"render.width":           1024,
	"render.height":          480,
	"render.timezone":        "UTC",
	"render.output_dir":      "charts",
	"render.charts":          []string{},
}

// Load reads the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field ranges and cross field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Render.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// WriteYAML writes the effective configuration
func (c *Config) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return err
	}
	return encoder.Close()
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	stringsType  = reflect.TypeOf([]string(nil))
)

// decodeHook accepts day and week units ("1d", "2w3d") on top of the
// time.ParseDuration syntax, and comma separated lists from the environment
func decodeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}

	raw := strings.TrimSpace(reflect.ValueOf(data).String())
	switch to {
	case stringsType:
		if raw == "" {
			return []string{}, nil
		}
		return strings.Split(raw, ","), nil
	case durationType:
	default:
		return data, nil
	}

	if raw == "" {
		return time.Duration(0), nil
	}

	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	return d, nil
}
