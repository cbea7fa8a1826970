package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/blackwell-systems/repopulse/internal/score"
)

// Config is the top-level repopulse configuration. Everything that is
// project-specific domain knowledge (which subtrees belong to which
// component, which ports the services listen on, what counts as
// "complete") lives here rather than in code.
type Config struct {
	ProjectRoot     string               `mapstructure:"project_root"`
	SnapshotPath    string               `mapstructure:"snapshot_path"`
	ExcludeDirs     []string             `mapstructure:"exclude_dirs"`
	Components      map[string]Component `mapstructure:"components"`
	Services        []Service            `mapstructure:"services"`
	Metrics         map[string]Metric    `mapstructure:"metrics"`
	RouteFiles      []string             `mapstructure:"route_files"`
	Caps            score.Caps           `mapstructure:"caps"`
	PrimaryServices []string             `mapstructure:"primary_services"`
	TestMetric      string               `mapstructure:"test_metric"`
	TestThreshold   int                  `mapstructure:"test_threshold"`
	History         History              `mapstructure:"history"`
	Output          Output               `mapstructure:"output"`
}

// Component maps one logical subsystem to the filesystem evidence used
// to score it.
type Component struct {
	Subtree     string        `mapstructure:"subtree"`
	Patterns    []string      `mapstructure:"patterns"`
	ExcludeDirs []string      `mapstructure:"exclude_dirs"`
	Structure   Submetric     `mapstructure:"structure"`
	Integration Submetric     `mapstructure:"integration"`
	Service     string        `mapstructure:"service"`
	Targets     score.Targets `mapstructure:"targets"`
}

// Submetric is a narrower file count within a component (route files,
// page files, migration files).
type Submetric struct {
	Subtree  string   `mapstructure:"subtree"`
	Patterns []string `mapstructure:"patterns"`
}

// Metric is a named top-level count reported under realMetrics.
type Metric struct {
	Subtree  string   `mapstructure:"subtree"`
	Patterns []string `mapstructure:"patterns"`
}

// Service identifies one runtime service to probe each cycle.
type Service struct {
	Name       string `mapstructure:"name"`
	Port       int    `mapstructure:"port"`
	HealthPath string `mapstructure:"health_path"`
}

// History configures the optional SQLite snapshot history.
type History struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// Load reads configuration from the given path (or the default
// location) and returns a Config with all defaults applied. A missing
// config file is fine; a malformed one is not.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("project_root", DefaultProjectRoot)
	v.SetDefault("snapshot_path", DefaultSnapshotPath)
	v.SetDefault("exclude_dirs", DefaultExcludeDirs)
	v.SetDefault("caps.files", DefaultCaps.Files)
	v.SetDefault("caps.structure", DefaultCaps.Structure)
	v.SetDefault("caps.integration", DefaultCaps.Integration)
	v.SetDefault("caps.liveness", DefaultCaps.Liveness)
	v.SetDefault("primary_services", DefaultPrimaryServices)
	v.SetDefault("test_metric", DefaultTestMetric)
	v.SetDefault("test_threshold", DefaultTestThreshold)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.db_path", DBPath())
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("repopulse")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Structured defaults: viper's SetDefault does not merge nested
	// maps well, so apply them post-unmarshal when absent.
	if len(cfg.Components) == 0 {
		cfg.Components = DefaultComponents
	}
	if len(cfg.Services) == 0 {
		cfg.Services = DefaultServices
	}
	if len(cfg.Metrics) == 0 {
		cfg.Metrics = DefaultMetrics
	}
	if len(cfg.RouteFiles) == 0 {
		cfg.RouteFiles = DefaultRouteFiles
	}

	// Dependency caches and VCS internals are always pruned, whatever
	// the config says; counting them gives pathological results.
	cfg.ExcludeDirs = mergeExcludes(cfg.ExcludeDirs, DefaultExcludeDirs)

	cfg.ProjectRoot = expandPath(cfg.ProjectRoot)
	cfg.SnapshotPath = expandPath(cfg.SnapshotPath)
	cfg.History.DBPath = expandPath(cfg.History.DBPath)

	return &cfg, nil
}

// Validate checks the configuration for the malformed cases that must
// be fatal at startup, before any cycle runs.
func Validate(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		return fmt.Errorf("project_root must not be empty")
	}
	if cfg.SnapshotPath == "" {
		return fmt.Errorf("snapshot_path must not be empty")
	}
	if len(cfg.Components) == 0 {
		return fmt.Errorf("at least one component must be configured")
	}

	for _, c := range []struct {
		name string
		v    float64
	}{
		{"caps.files", cfg.Caps.Files},
		{"caps.structure", cfg.Caps.Structure},
		{"caps.integration", cfg.Caps.Integration},
		{"caps.liveness", cfg.Caps.Liveness},
	} {
		if c.v < 0 {
			return fmt.Errorf("%s must not be negative, got %v", c.name, c.v)
		}
	}

	serviceNames := make(map[string]bool, len(cfg.Services))
	for _, s := range cfg.Services {
		if s.Name == "" {
			return fmt.Errorf("service with port %d has no name", s.Port)
		}
		if serviceNames[s.Name] {
			return fmt.Errorf("duplicate service name %q", s.Name)
		}
		serviceNames[s.Name] = true
		if s.Port < 1 || s.Port > 65535 {
			return fmt.Errorf("service %q: port %d out of range", s.Name, s.Port)
		}
	}

	for name, comp := range cfg.Components {
		if comp.Subtree == "" {
			return fmt.Errorf("component %q: subtree must not be empty", name)
		}
		if len(comp.Patterns) == 0 {
			return fmt.Errorf("component %q: at least one pattern required", name)
		}
		for _, pats := range [][]string{comp.Patterns, comp.Structure.Patterns, comp.Integration.Patterns} {
			if err := validatePatterns(name, pats); err != nil {
				return err
			}
		}
		if comp.Service != "" && !serviceNames[comp.Service] {
			return fmt.Errorf("component %q references unknown service %q", name, comp.Service)
		}
		if comp.Targets.Files < 0 || comp.Targets.Structure < 0 || comp.Targets.Integration < 0 {
			return fmt.Errorf("component %q: targets must not be negative", name)
		}
	}

	for name, m := range cfg.Metrics {
		if err := validatePatterns("metric "+name, m.Patterns); err != nil {
			return err
		}
	}

	for _, ps := range cfg.PrimaryServices {
		if !serviceNames[ps] {
			return fmt.Errorf("primary_services references unknown service %q", ps)
		}
	}

	if cfg.TestThreshold < 0 {
		return fmt.Errorf("test_threshold must not be negative, got %d", cfg.TestThreshold)
	}

	return nil
}

// validatePatterns rejects glob patterns that path.Match cannot parse.
func validatePatterns(owner string, patterns []string) error {
	for _, pat := range patterns {
		if _, err := path.Match(pat, "probe"); err != nil {
			return fmt.Errorf("%s: invalid pattern %q: %w", owner, pat, err)
		}
	}
	return nil
}

// mergeExcludes unions two exclude lists, preserving order.
func mergeExcludes(configured, required []string) []string {
	seen := make(map[string]bool, len(configured)+len(required))
	merged := make([]string, 0, len(configured)+len(required))
	for _, d := range append(append([]string{}, configured...), required...) {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		merged = append(merged, d)
	}
	return merged
}

// ComponentExcludes returns the effective prune list for a component:
// the global excludes plus the component's own.
func (c *Config) ComponentExcludes(comp Component) []string {
	return mergeExcludes(comp.ExcludeDirs, c.ExcludeDirs)
}

// ServiceFor returns the probe spec bound to a component, if any.
func (c *Config) ServiceFor(comp Component) (Service, bool) {
	if comp.Service == "" {
		return Service{}, false
	}
	for _, s := range c.Services {
		if s.Name == comp.Service {
			return s, true
		}
	}
	return Service{}, false
}

// DBPath returns the default path to the SQLite history database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
