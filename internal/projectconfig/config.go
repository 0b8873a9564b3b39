// Package projectconfig provides the ProjectConfig struct and loader for
// .underwrite.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".underwrite.yaml"

// maxWalkUp bounds how many directories Load climbs.
const maxWalkUp = 10

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultRulesDir   = "config/rules/"
	DefaultResultsDir = "results/"

	DefaultEngine            = "mock"
	DefaultModel             = "gpt-4"
	DefaultTimeout           = 60
	DefaultWorkers           = 4
	DefaultRequestsPerSecond = 0

	DefaultConfidenceLevel     = 0.95
	DefaultMonthlyApplications = 10000
	DefaultPower               = 0.8

	DefaultCacheDir           = ".underwrite-cache"
	DefaultCacheMemoryEntries = 256
)

// Engines accepted in defaults.engine.
var Engines = []string{"mock", "openai", "copilot-sdk"}

// PathsConfig holds directory and file paths.
type PathsConfig struct {
	Rules    string `yaml:"rules,omitempty"`
	Results  string `yaml:"results,omitempty"`
	Variants string `yaml:"variants,omitempty"`
}

// DefaultsConfig holds default execution parameters.
type DefaultsConfig struct {
	Engine            string  `yaml:"engine,omitempty"`
	Model             string  `yaml:"model,omitempty"`
	Timeout           int     `yaml:"timeout,omitempty"`
	Parallel          *bool   `yaml:"parallel,omitempty"`
	Workers           int     `yaml:"workers,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// AnalysisConfig holds statistical and business impact settings.
type AnalysisConfig struct {
	ConfidenceLevel     float64 `yaml:"confidence_level,omitempty"`
	MonthlyApplications int     `yaml:"monthly_applications,omitempty"`
	Power               float64 `yaml:"power,omitempty"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled       *bool  `yaml:"enabled,omitempty"`
	Dir           string `yaml:"dir,omitempty"`
	MemoryEntries int    `yaml:"memory_entries,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .underwrite.yaml.
type ProjectConfig struct {
	Paths    PathsConfig    `yaml:"paths,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Analysis AnalysisConfig `yaml:"analysis,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Rules:   DefaultRulesDir,
			Results: DefaultResultsDir,
		},
		Defaults: DefaultsConfig{
			Engine:            DefaultEngine,
			Model:             DefaultModel,
			Timeout:           DefaultTimeout,
			Parallel:          boolPtr(false),
			Workers:           DefaultWorkers,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Analysis: AnalysisConfig{
			ConfidenceLevel:     DefaultConfidenceLevel,
			MonthlyApplications: DefaultMonthlyApplications,
			Power:               DefaultPower,
		},
		Cache: CacheConfig{
			Enabled:       boolPtr(false),
			Dir:           DefaultCacheDir,
			MemoryEntries: DefaultCacheMemoryEntries,
		},
	}
}

// Load finds .underwrite.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", FileName, err)
	}
	return cfg, nil
}

// Validate rejects values no command could run with.
func (c *ProjectConfig) Validate() error {
	known := false
	for _, e := range Engines {
		if c.Defaults.Engine == e {
			known = true
			break
		}
	}
	switch {
	case !known:
		return fmt.Errorf("unknown engine %q (want one of %v)", c.Defaults.Engine, Engines)
	case c.Defaults.Timeout < 0:
		return fmt.Errorf("timeout must not be negative, got %d", c.Defaults.Timeout)
	case c.Defaults.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", c.Defaults.Workers)
	case c.Defaults.RequestsPerSecond < 0:
		return fmt.Errorf("requests_per_second must not be negative, got %v", c.Defaults.RequestsPerSecond)
	case c.Analysis.ConfidenceLevel <= 0 || c.Analysis.ConfidenceLevel >= 1:
		return fmt.Errorf("confidence_level must be in (0, 1), got %v", c.Analysis.ConfidenceLevel)
	case c.Analysis.Power <= 0 || c.Analysis.Power >= 1:
		return fmt.Errorf("power must be in (0, 1), got %v", c.Analysis.Power)
	case c.Analysis.MonthlyApplications < 0:
		return fmt.Errorf("monthly_applications must not be negative, got %d", c.Analysis.MonthlyApplications)
	}
	return nil
}

// findConfigFile walks up from dir looking for .underwrite.yaml.
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range maxWalkUp {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Rules != "" {
		dst.Paths.Rules = src.Paths.Rules
	}
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}
	if src.Paths.Variants != "" {
		dst.Paths.Variants = src.Paths.Variants
	}

	// Defaults
	if src.Defaults.Engine != "" {
		dst.Defaults.Engine = src.Defaults.Engine
	}
	if src.Defaults.Model != "" {
		dst.Defaults.Model = src.Defaults.Model
	}
	if src.Defaults.Timeout != 0 {
		dst.Defaults.Timeout = src.Defaults.Timeout
	}
	if src.Defaults.Parallel != nil {
		dst.Defaults.Parallel = src.Defaults.Parallel
	}
	if src.Defaults.Workers != 0 {
		dst.Defaults.Workers = src.Defaults.Workers
	}
	if src.Defaults.RequestsPerSecond != 0 {
		dst.Defaults.RequestsPerSecond = src.Defaults.RequestsPerSecond
	}

	// Analysis
	if src.Analysis.ConfidenceLevel != 0 {
		dst.Analysis.ConfidenceLevel = src.Analysis.ConfidenceLevel
	}
	if src.Analysis.MonthlyApplications != 0 {
		dst.Analysis.MonthlyApplications = src.Analysis.MonthlyApplications
	}
	if src.Analysis.Power != 0 {
		dst.Analysis.Power = src.Analysis.Power
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.MemoryEntries != 0 {
		dst.Cache.MemoryEntries = src.Cache.MemoryEntries
	}
}

func boolPtr(b bool) *bool {
	return &b
}
