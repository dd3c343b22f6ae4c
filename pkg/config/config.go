// Octa uses flags and a single config file for configuration.
// The config file is a `google.protobuf.Struct` in .txtpb format whose keys are flag names, e.g.
//
//	fields { key: "log_level" value { string_value: "debug" } }
//	fields { key: "render_cache_capacity" value { number_value: 4096 } }
//
// Values from the config file override flag defaults; flags given on the command line are applied last and win.

package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

var configFilePath = flag.String("config_file", "config.txtpb", "Path to the configuration file.")

// InitFlags initializes the flags from the config file specified by the -config_file flag.
// It should be called after defining all flags and before using them.
func InitFlags() {
	flag.Parse()

	if *configFilePath == "" {
		slog.Info("Config file not specified. Skipping config initialization.")
		return
	}
	values, err := readFile(*configFilePath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Config file does not exist.", "path", *configFilePath, "error", err)
		return
	}
	if err != nil { // A broken config file leaves every flag at its default.
		slog.Error("Failed to load config file.", "path", *configFilePath, "error", err)
		return
	}

	if err := setConfigFlags(values); err != nil {
		slog.Error("Failed to set flags from config file.", "error", err)
		return
	}
	// Command line flags take precedence over the config file.
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		slog.Error("Failed to re-apply command line flags.", "error", err)
		return
	}
	slog.Debug("Loaded config file.", "path", *configFilePath, "flags", len(values))
}

// readFile reads and decodes the config file at `path` into flag values.
func readFile(path string) (map[ /*flagName*/ string] /*flagValue*/ string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parseConfig(content)
}
