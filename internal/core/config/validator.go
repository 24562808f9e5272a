package config

import (
	"fmt"
	"ksymtypes/internal/core/errors"
	"strings"

	"github.com/gobwas/glob"
)

// Validate checks a defaulted configuration.
func Validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateVersion,
		validateScan,
		validateParser,
		validateWorkers,
		validateCompare,
	} {
		if err := check(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid config")
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; the supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	if !strings.HasPrefix(cfg.Scan.Extension, ".") {
		return fmt.Errorf("scan.extension must start with a dot, got %q", cfg.Scan.Extension)
	}
	for _, p := range cfg.Scan.ExcludeDirs {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("scan.exclude_dirs: invalid pattern %q: %w", p, err)
		}
	}
	for _, p := range cfg.Scan.ExcludeFiles {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("scan.exclude_files: invalid pattern %q: %w", p, err)
		}
	}
	return nil
}

var knownKinds = map[string]bool{
	"struct": true, "union": true, "enum": true, "typedef": true, "basic": true,
	"s": true, "u": true, "e": true, "t": true, "E": true,
}

func validateParser(cfg *Config) error {
	for _, k := range cfg.Parser.OpaqueKinds {
		name := strings.TrimSuffix(strings.TrimSpace(k), "#")
		if !knownKinds[name] && !knownKinds[strings.ToLower(name)] {
			return fmt.Errorf("parser.opaque_kinds: unknown kind %q", k)
		}
	}
	return nil
}

func validateWorkers(cfg *Config) error {
	if cfg.Workers.Jobs < 0 {
		return fmt.Errorf("workers.jobs must be >= 0, got %d", cfg.Workers.Jobs)
	}
	return nil
}

func validateCompare(cfg *Config) error {
	switch strings.ToLower(cfg.Compare.Format) {
	case "text", "tsv", "markdown":
	default:
		return fmt.Errorf("compare.format must be one of: text, tsv, markdown")
	}
	switch strings.ToLower(cfg.Compare.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("compare.color must be one of: auto, always, never")
	}
	if cfg.Compare.Context < 0 {
		return fmt.Errorf("compare.context must be >= 0, got %d", cfg.Compare.Context)
	}
	return nil
}
