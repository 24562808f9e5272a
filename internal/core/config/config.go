package config

import "time"

// Config is the ksymtypes.toml file. Every field has a default, so an empty or
// missing file is valid.
type Config struct {
	Version int `toml:"version"`

	Scan        Scan        `toml:"scan"`
	Parser      Parser      `toml:"parser"`
	Workers     Workers     `toml:"workers"`
	Consolidate Consolidate `toml:"consolidate"`
	Compare     Compare     `toml:"compare"`
	History     History     `toml:"history"`
	Metrics     Metrics     `toml:"metrics"`
	Tracing     Tracing     `toml:"tracing"`
}

type Scan struct {
	Extension    string   `toml:"extension"`
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"`
}

type Parser struct {
	// OpaqueKinds names record kinds ("basic", "struct", or prefixes like "E")
	// whose definitions may be missing.
	OpaqueKinds []string `toml:"opaque_kinds"`
}

type Workers struct {
	// Jobs is the number of parallel workers; 0 means one per CPU.
	Jobs int `toml:"jobs"`
}

type Consolidate struct {
	Output string `toml:"output"`
	// Strict makes type variant conflicts fail the run, not only export conflicts.
	Strict bool `toml:"strict"`
	// KeepGoing writes the output even when some inputs failed to parse.
	KeepGoing bool `toml:"keep_going"`
}

type Compare struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
	// Context is the number of unchanged lines shown around each diff hunk.
	Context int `toml:"context"`
}

type History struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	Project     string        `toml:"project"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Metrics struct {
	Textfile string `toml:"textfile"`
}

type Tracing struct {
	Endpoint    string `toml:"endpoint"`
	Insecure    bool   `toml:"insecure"`
	ServiceName string `toml:"service_name"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Consolidate: Consolidate{KeepGoing: true}}
	applyDefaults(cfg)
	return cfg
}
