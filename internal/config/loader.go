package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ValueSource describes where a configuration value originated from.
type ValueSource string

const (
	SourceDefault  ValueSource = "default"
	SourceFile     ValueSource = "file"
	SourceEnv      ValueSource = "environment"
	SourceOverride ValueSource = "override"
)

const (
	DefaultModel      = "gpt-4"
	DefaultPipCommand = "pip"
)

// ExecutionConfig is the mutable per-session model selection negotiated
// before the first model call.
type ExecutionConfig struct {
	Local bool `json:"local" yaml:"local"`
	// Model is the provider/model identifier; empty means unselected.
	Model  string `json:"model" yaml:"model"`
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// GGUFQuality is the local quantization preference; nil means default.
	GGUFQuality *float64 `json:"gguf_quality,omitempty" yaml:"gguf_quality,omitempty"`
	AutoRun     bool     `json:"auto_run" yaml:"auto_run"`
}

// RuntimeConfig captures the execution settings plus the knobs that shape how
// negotiation talks to the operator and the package environment.
type RuntimeConfig struct {
	Execution  ExecutionConfig `json:"execution" yaml:"execution"`
	Pacing     bool            `json:"pacing" yaml:"pacing"`
	PipCommand string          `json:"pip_command" yaml:"pip_command"`
	Verbose    bool            `json:"verbose" yaml:"verbose"`
}

// Metadata contains provenance details for loaded configuration.
type Metadata struct {
	sources  map[string]ValueSource
	loadedAt time.Time
	path     string
}

// Source returns the origin for the given configuration field.
func (m Metadata) Source(field string) ValueSource {
	if m.sources == nil {
		return SourceDefault
	}
	if src, ok := m.sources[field]; ok {
		return src
	}
	return SourceDefault
}

// LoadedAt returns the timestamp when the configuration was constructed.
func (m Metadata) LoadedAt() time.Time {
	return m.loadedAt
}

// ConfigPath returns the file consulted during load, empty when none was.
func (m Metadata) ConfigPath() string {
	return m.path
}

// Overrides conveys caller-specified values that should win over env/file sources.
type Overrides struct {
	Local       *bool
	Model       *string
	APIKey      *string
	GGUFQuality *float64
	AutoRun     *bool
	Pacing      *bool
	PipCommand  *string
	Verbose     *bool
}

// EnvLookup resolves the value for an environment variable.
type EnvLookup func(string) (string, bool)

// Option customises the loader behaviour.
type Option func(*loadOptions)

type loadOptions struct {
	envLookup  EnvLookup
	readFile   func(string) ([]byte, error)
	homeDir    func() (string, error)
	overrides  Overrides
	configPath string
}

// WithEnv supplies a custom environment lookup implementation.
func WithEnv(lookup EnvLookup) Option {
	return func(o *loadOptions) {
		o.envLookup = lookup
	}
}

// WithOverrides applies caller overrides that take highest precedence.
func WithOverrides(overrides Overrides) Option {
	return func(o *loadOptions) {
		o.overrides = overrides
	}
}

// WithConfigPath forces the loader to read configuration from a specific file.
func WithConfigPath(path string) Option {
	return func(o *loadOptions) {
		o.configPath = path
	}
}

// WithFileReader injects a custom reader, used primarily for tests.
func WithFileReader(reader func(string) ([]byte, error)) Option {
	return func(o *loadOptions) {
		o.readFile = reader
	}
}

// DefaultEnvLookup delegates to os.LookupEnv.
func DefaultEnvLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnvLookup serves lookups from a fixed map. Blank values count as unset.
func MapEnvLookup(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		value, ok := values[key]
		if !ok || value == "" {
			return "", false
		}
		return value, true
	}
}

// Load constructs the runtime configuration by merging defaults, file, env and overrides.
func Load(opts ...Option) (RuntimeConfig, Metadata, error) {
	options := loadOptions{
		envLookup: DefaultEnvLookup,
		readFile:  os.ReadFile,
		homeDir:   os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.envLookup == nil {
		options.envLookup = DefaultEnvLookup
	}

	meta := Metadata{sources: map[string]ValueSource{}, loadedAt: time.Now()}

	cfg := RuntimeConfig{
		Execution: ExecutionConfig{
			Model: DefaultModel,
		},
		Pacing:     true,
		PipCommand: DefaultPipCommand,
	}

	if err := applyFile(&cfg, &meta, options); err != nil {
		return RuntimeConfig{}, Metadata{}, err
	}
	if err := applyEnv(&cfg, &meta, options); err != nil {
		return RuntimeConfig{}, Metadata{}, err
	}
	applyOverrides(&cfg, &meta, options.overrides)
	normalizeRuntimeConfig(&cfg)
	// A local session never inherits a model chosen by a weaker source than
	// the one that asked for local mode.
	if cfg.Execution.Local && sourceRank(meta.Source("model")) < sourceRank(meta.Source("local")) {
		cfg.Execution.Model = ""
	}

	if err := Validate(cfg); err != nil {
		return RuntimeConfig{}, Metadata{}, err
	}
	return cfg, meta, nil
}

// Validate rejects values negotiation cannot work with.
func Validate(cfg RuntimeConfig) error {
	if q := cfg.Execution.GGUFQuality; q != nil && (*q < 0 || *q > 1) {
		return fmt.Errorf("gguf_quality must be within [0, 1], got %v", *q)
	}
	if strings.TrimSpace(cfg.PipCommand) == "" {
		return errors.New("pip_command must not be empty")
	}
	return nil
}

type fileConfig struct {
	Local       *bool    `yaml:"local"`
	Model       *string  `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	GGUFQuality *float64 `yaml:"gguf_quality"`
	AutoRun     *bool    `yaml:"auto_run"`
	Pacing      *bool    `yaml:"pacing"`
	PipCommand  string   `yaml:"pip_command"`
	Verbose     *bool    `yaml:"verbose"`
}

func applyFile(cfg *RuntimeConfig, meta *Metadata, opts loadOptions) error {
	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		configPath, _ = ResolveConfigPath(opts.envLookup, opts.homeDir)
	}
	if configPath == "" {
		return nil
	}

	data, err := opts.readFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	meta.path = configPath
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if parsed.Local != nil {
		cfg.Execution.Local = *parsed.Local
		meta.sources["local"] = SourceFile
	}
	if parsed.Model != nil {
		cfg.Execution.Model = *parsed.Model
		meta.sources["model"] = SourceFile
	}
	if parsed.APIKey != "" {
		cfg.Execution.APIKey = parsed.APIKey
		meta.sources["api_key"] = SourceFile
	}
	if parsed.GGUFQuality != nil {
		quality := *parsed.GGUFQuality
		cfg.Execution.GGUFQuality = &quality
		meta.sources["gguf_quality"] = SourceFile
	}
	if parsed.AutoRun != nil {
		cfg.Execution.AutoRun = *parsed.AutoRun
		meta.sources["auto_run"] = SourceFile
	}
	if parsed.Pacing != nil {
		cfg.Pacing = *parsed.Pacing
		meta.sources["pacing"] = SourceFile
	}
	if parsed.PipCommand != "" {
		cfg.PipCommand = parsed.PipCommand
		meta.sources["pip_command"] = SourceFile
	}
	if parsed.Verbose != nil {
		cfg.Verbose = *parsed.Verbose
		meta.sources["verbose"] = SourceFile
	}
	return nil
}

func applyEnv(cfg *RuntimeConfig, meta *Metadata, opts loadOptions) error {
	lookup := opts.envLookup

	if value, ok := lookup("INTERPRETER_LOCAL"); ok && value != "" {
		parsed, err := parseBoolEnv(value)
		if err != nil {
			return fmt.Errorf("parse INTERPRETER_LOCAL: %w", err)
		}
		cfg.Execution.Local = parsed
		meta.sources["local"] = SourceEnv
	}
	if value, ok := lookup("INTERPRETER_MODEL"); ok && value != "" {
		cfg.Execution.Model = value
		meta.sources["model"] = SourceEnv
	}
	if value, ok := lookup("INTERPRETER_GGUF_QUALITY"); ok && value != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("parse INTERPRETER_GGUF_QUALITY: %w", err)
		}
		cfg.Execution.GGUFQuality = &parsed
		meta.sources["gguf_quality"] = SourceEnv
	}
	if value, ok := lookup("INTERPRETER_AUTO_RUN"); ok && value != "" {
		parsed, err := parseBoolEnv(value)
		if err != nil {
			return fmt.Errorf("parse INTERPRETER_AUTO_RUN: %w", err)
		}
		cfg.Execution.AutoRun = parsed
		meta.sources["auto_run"] = SourceEnv
	}
	if value, ok := lookup("INTERPRETER_PACING"); ok && value != "" {
		parsed, err := parseBoolEnv(value)
		if err != nil {
			return fmt.Errorf("parse INTERPRETER_PACING: %w", err)
		}
		cfg.Pacing = parsed
		meta.sources["pacing"] = SourceEnv
	}
	if value, ok := lookup("INTERPRETER_PIP"); ok && value != "" {
		cfg.PipCommand = value
		meta.sources["pip_command"] = SourceEnv
	}
	return nil
}

func applyOverrides(cfg *RuntimeConfig, meta *Metadata, overrides Overrides) {
	if overrides.Local != nil {
		cfg.Execution.Local = *overrides.Local
		meta.sources["local"] = SourceOverride
	}
	if overrides.Model != nil {
		cfg.Execution.Model = *overrides.Model
		meta.sources["model"] = SourceOverride
	}
	if overrides.APIKey != nil {
		cfg.Execution.APIKey = *overrides.APIKey
		meta.sources["api_key"] = SourceOverride
	}
	if overrides.GGUFQuality != nil {
		quality := *overrides.GGUFQuality
		cfg.Execution.GGUFQuality = &quality
		meta.sources["gguf_quality"] = SourceOverride
	}
	if overrides.AutoRun != nil {
		cfg.Execution.AutoRun = *overrides.AutoRun
		meta.sources["auto_run"] = SourceOverride
	}
	if overrides.Pacing != nil {
		cfg.Pacing = *overrides.Pacing
		meta.sources["pacing"] = SourceOverride
	}
	if overrides.PipCommand != nil {
		cfg.PipCommand = *overrides.PipCommand
		meta.sources["pip_command"] = SourceOverride
	}
	if overrides.Verbose != nil {
		cfg.Verbose = *overrides.Verbose
		meta.sources["verbose"] = SourceOverride
	}
}

func sourceRank(src ValueSource) int {
	switch src {
	case SourceFile:
		return 1
	case SourceEnv:
		return 2
	case SourceOverride:
		return 3
	default:
		return 0
	}
}

func normalizeRuntimeConfig(cfg *RuntimeConfig) {
	cfg.Execution.Model = strings.TrimSpace(cfg.Execution.Model)
	cfg.Execution.APIKey = strings.TrimSpace(cfg.Execution.APIKey)
	cfg.PipCommand = strings.TrimSpace(cfg.PipCommand)
}

func parseBoolEnv(value string) (bool, error) {
	trimmed := strings.TrimSpace(value)
	lower := strings.ToLower(trimmed)
	switch lower {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", value)
	}
}
