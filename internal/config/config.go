// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package config handles command-line and file configuration for the jfilter
// command-line tool.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/creachadair/jfilter"
	"github.com/creachadair/jfilter/ast"
	"github.com/creachadair/jfilter/filter"
	yaml "github.com/goccy/go-yaml"
	"github.com/tailscale/hujson"
)

const (
	// DefaultIndent is the default indentation step for output.
	DefaultIndent = 2

	// DefaultChunk is the default input chunk size. Zero means the input is
	// fed to the parser one line at a time.
	DefaultChunk = 0
)

var (
	ErrUnknownFormat = errors.New("unknown config file format")
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the complete configuration for the jfilter tool.
type Config struct {
	Keep    []string // path expressions selecting values to keep
	Indent  int      // indentation step; ≤ 0 means compact
	Compact bool     // render output as compact JSON
	Chunk   int      // input chunk size in bytes; 0 for line-at-a-time
	Zstd    bool     // input is zstd-compressed
	Verbose bool     // log progress

	ConfigFile string   // optional configuration file
	Inputs     []string // input file names; empty means stdin
}

// Filter compiles the Keep expressions of c into a filter. If c has no Keep
// expressions, the result is nil, which keeps everything.
func (c *Config) Filter() (*filter.Filter, error) { return filter.Compile(c.Keep...) }

// OutputIndent reports the indentation step for output, taking the Compact
// setting into account.
func (c *Config) OutputIndent() int {
	if c.Compact {
		return 0
	}
	return c.Indent
}

// Validate reports an error if c has invalid settings.
func (c *Config) Validate() error {
	if c.Chunk < 0 {
		return fmt.Errorf("%w: chunk size %d is negative", ErrInvalidConfig, c.Chunk)
	}
	if c.Indent < 0 {
		return fmt.Errorf("%w: indent %d is negative", ErrInvalidConfig, c.Indent)
	}
	if _, err := c.Filter(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// pathsFlag implements flag.Value for parsing multiple -keep flags.
type pathsFlag []string

func (p *pathsFlag) String() string { return strings.Join(*p, " ") }

func (p *pathsFlag) Set(value string) error {
	if value == "" {
		return errors.New("empty path expression")
	}
	*p = append(*p, value)
	return nil
}

func newFlagSet(name string, cfg *Config, keep *pathsFlag) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	fs.Var(keep, "keep", "Path expression selecting a value to keep (repeatable)")
	fs.StringVar(&cfg.ConfigFile, "config", "", "Read settings from this JWCC or YAML file")
	fs.IntVar(&cfg.Indent, "indent", DefaultIndent, "Indentation step for output")
	fs.BoolVar(&cfg.Compact, "compact", false, "Render output as compact JSON")
	fs.IntVar(&cfg.Chunk, "chunk", DefaultChunk, "Input chunk size in bytes (0 feeds one line at a time)")
	fs.BoolVar(&cfg.Zstd, "zstd", false, "Input is zstd-compressed (implied by a .zst suffix)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log parsing progress")
	return fs
}

// Usage returns a help message describing the flags.
func Usage() string {
	var sb strings.Builder
	fmt.Fprintln(&sb, `Usage: jfilter [options] [file ...]

Parse a JSON value from each file (or stdin), keeping only the values
selected by the -keep paths, and print the result.

Options:`)
	fs := newFlagSet("jfilter", new(Config), new(pathsFlag))
	fs.SetOutput(&sb)
	fs.PrintDefaults()
	return sb.String()
}

// Parse parses command-line arguments, where args[0] is the program name,
// and returns a validated Config. Settings given on the command line take
// precedence over those read from a configuration file. If help is
// requested, Parse reports flag.ErrHelp.
func Parse(args []string) (*Config, error) {
	name := "jfilter"
	if len(args) != 0 {
		name, args = args[0], args[1:]
	}

	cfg := new(Config)
	var keep pathsFlag
	fs := newFlagSet(name, cfg, &keep)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Inputs = fs.Args()

	if cfg.ConfigFile != "" {
		fc, err := Load(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		fc.apply(cfg, set)
	}
	cfg.Keep = append(cfg.Keep, keep...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// File is the contents of a configuration file. Fields that are absent from
// the file are nil.
type File struct {
	Keep    []string `yaml:"keep"`
	Indent  *int     `yaml:"indent"`
	Compact *bool    `yaml:"compact"`
	Chunk   *int     `yaml:"chunk"`
}

// apply copies the settings of f into cfg, except those named in set.
func (f *File) apply(cfg *Config, set map[string]bool) {
	cfg.Keep = append(cfg.Keep, f.Keep...)
	if f.Indent != nil && !set["indent"] {
		cfg.Indent = *f.Indent
	}
	if f.Compact != nil && !set["compact"] {
		cfg.Compact = *f.Compact
	}
	if f.Chunk != nil && !set["chunk"] {
		cfg.Chunk = *f.Chunk
	}
}

// Load reads a configuration file. The format is chosen by the file
// extension: ".json", ".jwcc", and ".hujson" files are JSON with comments and
// trailing commas permitted; ".yaml" and ".yml" files are YAML.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var f *File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".jwcc", ".hujson":
		f, err = ParseJWCC(data)
	case ".yaml", ".yml":
		f, err = ParseYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return f, nil
}

// ParseYAML decodes a configuration file in YAML format.
func ParseYAML(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &f, nil
}

var fileFilter = filter.MustCompile("$.keep", "$.indent", "$.compact", "$.chunk")

// decodeObject parses std as standard JSON, keeping only the fields of a
// configuration file, and reports an error if the result is not an object.
func decodeObject(std []byte) (*ast.Object, error) {
	p := jfilter.New()
	if err := p.SetFilter(fileFilter); err != nil {
		return nil, err
	}
	if err := p.Feed(std); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := p.Finish(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	v, err := p.Value()
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*ast.Object)
	if !ok {
		return nil, fmt.Errorf("%w: config must be an object", ErrInvalidConfig)
	}
	return obj, nil
}

// ParseJWCC decodes a configuration file in JSON format, extended to allow
// comments and trailing commas.
func ParseJWCC(data []byte) (*File, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	obj, err := decodeObject(std)
	if err != nil {
		return nil, err
	}

	var f File
	for _, m := range obj.Members {
		switch m.Key {
		case "keep":
			arr, ok := m.Value.(*ast.Array)
			if !ok {
				return nil, fmt.Errorf("%w: keep must be an array of strings", ErrInvalidConfig)
			}
			for _, elt := range arr.Values {
				s, ok := elt.(ast.String)
				if !ok {
					return nil, fmt.Errorf("%w: keep must be an array of strings", ErrInvalidConfig)
				}
				f.Keep = append(f.Keep, string(s))
			}
		case "indent":
			z, err := intValue(m)
			if err != nil {
				return nil, err
			}
			f.Indent = &z
		case "chunk":
			z, err := intValue(m)
			if err != nil {
				return nil, err
			}
			f.Chunk = &z
		case "compact":
			b, ok := m.Value.(ast.Bool)
			if !ok {
				return nil, fmt.Errorf("%w: compact must be a bool", ErrInvalidConfig)
			}
			c := bool(b)
			f.Compact = &c
		}
	}
	return &f, nil
}

func intValue(m *ast.Member) (int, error) {
	if n, ok := m.Value.(ast.Number); ok && n.IsInt() {
		return int(n.Int64()), nil
	}
	return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidConfig, m.Key)
}
