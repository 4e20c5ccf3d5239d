// Package config loads hicat settings from flags, HICAT_* environment
// variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides: num-subcubes is read
// from HICAT_NUM_SUBCUBES.
const EnvPrefix = "HICAT"

// DefaultDotEnv is loaded when present and no other file is named.
const DefaultDotEnv = ".env"

// ErrInvalidConfig marks settings that cannot drive a run.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the merged view of every setting. Keys match flag names.
type Config struct {
	Cube    string `mapstructure:"cube"`
	Header  string `mapstructure:"header"`
	WorkDir string `mapstructure:"workdir"`

	NPix        int      `mapstructure:"npix"`
	NumSubcubes int      `mapstructure:"num-subcubes"`
	OverlapPix  int      `mapstructure:"pixel-overlap"`
	CoordFile   string   `mapstructure:"coord-file"`
	Tiles       []string `mapstructure:"tiles"`

	Threads        int      `mapstructure:"threads"`
	ExtractCommand []string `mapstructure:"extract-cmd"`
	DetectCommand  []string `mapstructure:"detect-cmd"`
	ParamTemplate  string   `mapstructure:"param-template"`

	MaxSepArcsec  float64 `mapstructure:"max-sep-arcsec"`
	MaxFreqDiffHz float64 `mapstructure:"max-freq-diff-hz"`

	Filter    bool    `mapstructure:"filter"`
	UpperDev  float64 `mapstructure:"upper-dev"`
	LowerDev  float64 `mapstructure:"lower-dev"`
	H0        float64 `mapstructure:"h0"`
	Om0       float64 `mapstructure:"om0"`
	LogMDFile string  `mapstructure:"logmd-file"`

	Output        string `mapstructure:"output"`
	Format        string `mapstructure:"format"`
	NoHeader      bool   `mapstructure:"no-header"`
	MetricsFile   string `mapstructure:"metrics-file"`
	EmptyExitCode int    `mapstructure:"empty-exit-code"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	Quiet     bool   `mapstructure:"quiet"`
}

// Option configures Load.
type Option func(*loader) error

type loader struct {
	path  string
	flags []*pflag.FlagSet
}

// WithConfigPath merges the YAML file at path. An empty path is a no-op.
func WithConfigPath(path string) Option {
	return func(l *loader) error {
		l.path = path
		return nil
	}
}

// WithFlags binds a flag set. Flags the user set win over everything else;
// unset flags supply defaults.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(l *loader) error {
		if fs == nil {
			return fmt.Errorf("flag set is required")
		}
		l.flags = append(l.flags, fs)
		return nil
	}
}

// NewViper returns a viper instance reading HICAT_* variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load merges the sources into a Config.
func Load(opts ...Option) (Config, error) {
	l := &loader{}
	for _, o := range opts {
		if err := o(l); err != nil {
			return Config{}, err
		}
	}

	v := NewViper()
	for _, fs := range l.flags {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	if l.path != "" {
		v.SetConfigFile(l.path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, l.path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return c, nil
}

// LoadDotEnv exports KEY=VALUE pairs from path into the environment
// without overriding variables that are already set. A missing default
// file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultDotEnv
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
