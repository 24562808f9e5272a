package config

import (
	"ksymtypes/internal/core/errors"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath names the environment variable consulted when no --config flag
// is given.
const EnvConfigPath = "KSYMTYPES_CONFIG"

// Load reads, defaults and validates the file at path, then applies
// KSYMTYPES_* environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to read config"), errors.CtxPath, path)
	}

	cfg := &Config{Consolidate: Consolidate{KeepGoing: true}}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "failed to decode config"), errors.CtxPath, path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.AddContext(errors.New(errors.CodeValidationError, "unknown config keys: "+strings.Join(keys, ", ")), errors.CtxPath, path)
	}

	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return cfg, nil
}

// Resolve loads the file named by path or, when path is empty, by
// $KSYMTYPES_CONFIG. Without either, the defaults with environment overrides
// are returned.
func Resolve(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if strings.TrimSpace(path) != "" {
		return Load(path)
	}
	cfg := &Config{Consolidate: Consolidate{KeepGoing: true}}
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Scan.Extension) == "" {
		cfg.Scan.Extension = ".symtypes"
	}
	if cfg.Scan.ExcludeDirs == nil {
		cfg.Scan.ExcludeDirs = []string{".git"}
	}

	if cfg.Parser.OpaqueKinds == nil {
		cfg.Parser.OpaqueKinds = []string{"basic"}
	}

	if strings.TrimSpace(cfg.Compare.Format) == "" {
		cfg.Compare.Format = "text"
	}
	if strings.TrimSpace(cfg.Compare.Color) == "" {
		cfg.Compare.Color = "auto"
	}
	if cfg.Compare.Context <= 0 {
		cfg.Compare.Context = 3
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "ksymtypes-history.db"
	}
	if strings.TrimSpace(cfg.History.Project) == "" {
		cfg.History.Project = "default"
	}
	if cfg.History.BusyTimeout <= 0 {
		cfg.History.BusyTimeout = 2 * time.Second
	}

	if strings.TrimSpace(cfg.Tracing.ServiceName) == "" {
		cfg.Tracing.ServiceName = "ksymtypes"
	}
}
