package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sylphie-project/sylphiedb"
	"github.com/sylphie-project/sylphiedb/internal/common"
	"gopkg.in/yaml.v3"
)

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // error, warn, info, debug
	Format string `mapstructure:"format" yaml:"format"` // text, json, color
}

// ConfigDoc is the on-disk configuration document.
type ConfigDoc struct {
	Database sylphiedb.Config `mapstructure:"database" yaml:"database"`
	Logging  LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// Load reads and decodes a yaml config file.
func (d *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// #nosec G304 -- path comes from an operator-supplied flag
	b, err := os.ReadFile(clean)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, d); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", clean, err)
	}
	return nil
}

// ConfigureLogging installs the default logger described by the config.
func (d *ConfigDoc) ConfigureLogging() {
	level := common.ParseLogLevel(d.Logging.Level)
	switch d.Logging.Format {
	case "json":
		common.SetDefaultLogger(common.NewJSONLogger(level))
	case "color":
		common.SetDefaultLogger(common.NewColorLogger(os.Stdout, level))
	default:
		common.SetDefaultLogger(common.NewLogger(level))
	}
}
