package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: KSYMTYPES_[SECTION]_[KEY] (e.g., KSYMTYPES_WORKERS_JOBS).
func ApplyEnvOverrides(cfg *Config) {
	// Scan
	setEnvString(&cfg.Scan.Extension, "KSYMTYPES_SCAN_EXTENSION")
	setEnvList(&cfg.Scan.ExcludeDirs, "KSYMTYPES_SCAN_EXCLUDE_DIRS")
	setEnvList(&cfg.Scan.ExcludeFiles, "KSYMTYPES_SCAN_EXCLUDE_FILES")

	// Parser
	setEnvList(&cfg.Parser.OpaqueKinds, "KSYMTYPES_PARSER_OPAQUE_KINDS")

	// Workers
	setEnvInt(&cfg.Workers.Jobs, "KSYMTYPES_WORKERS_JOBS")

	// Consolidate
	setEnvString(&cfg.Consolidate.Output, "KSYMTYPES_CONSOLIDATE_OUTPUT")
	setEnvBool(&cfg.Consolidate.Strict, "KSYMTYPES_CONSOLIDATE_STRICT")
	setEnvBool(&cfg.Consolidate.KeepGoing, "KSYMTYPES_CONSOLIDATE_KEEP_GOING")

	// Compare
	setEnvString(&cfg.Compare.Format, "KSYMTYPES_COMPARE_FORMAT")
	setEnvString(&cfg.Compare.Color, "KSYMTYPES_COMPARE_COLOR")
	setEnvInt(&cfg.Compare.Context, "KSYMTYPES_COMPARE_CONTEXT")

	// History
	setEnvBool(&cfg.History.Enabled, "KSYMTYPES_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "KSYMTYPES_HISTORY_PATH")
	setEnvString(&cfg.History.Project, "KSYMTYPES_HISTORY_PROJECT")

	// Observability
	setEnvString(&cfg.Metrics.Textfile, "KSYMTYPES_METRICS_TEXTFILE")
	setEnvString(&cfg.Tracing.Endpoint, "KSYMTYPES_TRACING_ENDPOINT")
	setEnvBool(&cfg.Tracing.Insecure, "KSYMTYPES_TRACING_INSECURE")
	setEnvString(&cfg.Tracing.ServiceName, "KSYMTYPES_TRACING_SERVICE_NAME")
}

func logOverride(key, val string) {
	logrus.WithFields(logrus.Fields{"key": key, "value": val}).Debug("applying env override")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		logOverride(key, val)
		*target = val
	}
}

func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		logOverride(key, val)
		var items []string
		for _, item := range strings.Split(val, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*target = items
		if *target == nil {
			*target = []string{}
		}
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			logOverride(key, val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			logOverride(key, val)
			*target = b
		}
	}
}
