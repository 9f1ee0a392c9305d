package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Profiling
	StringThreshold      float64 `mapstructure:"string_threshold" yaml:"string_threshold"`
	IncludeHistogram     bool    `mapstructure:"include_histogram" yaml:"include_histogram"`
	NormalityMaxSample   int     `mapstructure:"normality_max_sample" yaml:"normality_max_sample"`
	NormalityMinSample   int     `mapstructure:"normality_min_sample" yaml:"normality_min_sample"`
	ProfileCategoryLimit int     `mapstructure:"profile_category_limit" yaml:"profile_category_limit"`
	ProfileTopCategories int     `mapstructure:"profile_top_categories" yaml:"profile_top_categories"`
	WordFrequencyTop     int     `mapstructure:"word_frequency_top" yaml:"word_frequency_top"`
	StringSamples        int     `mapstructure:"string_samples" yaml:"string_samples"`

	// Relations and report wording
	Alpha                    float64 `mapstructure:"alpha" yaml:"alpha"`
	SignificanceStdFactor    float64 `mapstructure:"significance_std_factor" yaml:"significance_std_factor"`
	CategoryStatsCap         int     `mapstructure:"category_stats_cap" yaml:"category_stats_cap"`
	SignificantCategoriesCap int     `mapstructure:"significant_categories_cap" yaml:"significant_categories_cap"`
	LiftThreshold            float64 `mapstructure:"lift_threshold" yaml:"lift_threshold"`

	// Loading and execution
	Workers    int    `mapstructure:"workers" yaml:"workers"`
	MaxRows    int    `mapstructure:"max_rows" yaml:"max_rows"`
	ParseDates bool   `mapstructure:"parse_dates" yaml:"parse_dates"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dagloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dagloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := homeDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// defaults are applied beneath the config file and environment.
var defaults = map[string]any{
	"string_threshold":           30.0,
	"include_histogram":          false,
	"normality_max_sample":       5000,
	"normality_min_sample":       8,
	"profile_category_limit":     20,
	"profile_top_categories":     10,
	"word_frequency_top":         10,
	"string_samples":             3,
	"alpha":                      0.05,
	"significance_std_factor":    0.5,
	"category_stats_cap":         15,
	"significant_categories_cap": 10,
	"lift_threshold":             1.5,
	"workers":                    1,
	"max_rows":                   0,
	"parse_dates":                true,
	"output_dir":                 "",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DAGLOOM")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// Defaults returns the built-in configuration without reading a file or the environment.
// output_dir falls back to a relative "reports" directory when the home dir is unknown.
func Defaults() *Global {
	var c Global
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	_ = v.Unmarshal(&c)
	if dir, err := homeDir(); err == nil {
		c.OutputDir = filepath.Join(dir, "reports")
	} else {
		c.OutputDir = "reports"
	}
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := newViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve output_dir default: ~/.dagloom/reports
	if c.OutputDir == "" {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		c.OutputDir = filepath.Join(dir, "reports")
	}
	return &c, nil
}
