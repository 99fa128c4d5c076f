// Package config loads the wirenet HCL configuration file.
//
//	reconcile {
//	  keep_empty_wires = false
//	}
//
//	log {
//	  level  = "info"  # debug, info, warn, error
//	  format = "text"  # text, json
//	}
//
//	output {
//	  format = "json"  # netlist format: json, kicad
//	}
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/OpenTraceLab/wirenet/pkg/wire"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// DefaultPath is the file read when no --config flag is given.
const DefaultPath = "wirenet.hcl"

var ErrInvalid = errors.New("config: invalid value")

// Config is the resolved configuration.
type Config struct {
	KeepEmptyWires bool
	LogLevel       string
	LogFormat      string
	OutputFormat   string
}

// file mirrors the HCL document. Blocks and attributes are optional so that
// anything left out keeps its default.
type file struct {
	Reconcile *reconcileBlock `hcl:"reconcile,block"`
	Log       *logBlock       `hcl:"log,block"`
	Output    *outputBlock    `hcl:"output,block"`
}

type reconcileBlock struct {
	KeepEmptyWires *bool `hcl:"keep_empty_wires,optional"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type outputBlock struct {
	Format *string `hcl:"format,optional"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		KeepEmptyWires: false,
		LogLevel:       "info",
		LogFormat:      "text",
		OutputFormat:   "json",
	}
}

// Load reads and validates the file at path. A missing file is not an error.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes an HCL document. filename is used in diagnostics only.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: %w", diags)
	}

	var f file
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("config: %w", diags)
	}

	cfg := Default()
	cfg.apply(&f)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(f *file) {
	if f.Reconcile != nil && f.Reconcile.KeepEmptyWires != nil {
		c.KeepEmptyWires = *f.Reconcile.KeepEmptyWires
	}
	if f.Log != nil {
		if f.Log.Level != nil {
			c.LogLevel = *f.Log.Level
		}
		if f.Log.Format != nil {
			c.LogFormat = *f.Log.Format
		}
	}
	if f.Output != nil && f.Output.Format != nil {
		c.OutputFormat = *f.Output.Format
	}
}

// Validate normalizes the string settings and rejects unknown values. Empty
// values fall back to the defaults.
func (c *Config) Validate() error {
	def := Default()

	c.LogLevel = normalize(c.LogLevel, def.LogLevel)
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}

	c.LogFormat = normalize(c.LogFormat, def.LogFormat)
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}

	c.OutputFormat = normalize(c.OutputFormat, def.OutputFormat)
	switch c.OutputFormat {
	case "json", "kicad":
	default:
		return fmt.Errorf("%w: output format %q", ErrInvalid, c.OutputFormat)
	}

	return nil
}

func normalize(s, fallback string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}
	return s
}

// WireConfig returns the reconciler policy.
func (c *Config) WireConfig() *wire.Config {
	return &wire.Config{KeepEmptyWires: c.KeepEmptyWires}
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler builds the slog handler described by the log block. verbose
// forces debug level.
func (c *Config) NewHandler(w io.Writer, verbose bool) slog.Handler {
	level := c.Level()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
