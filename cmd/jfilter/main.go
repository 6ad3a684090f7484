// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Program jfilter reads JSON values, keeps only the parts selected by path
// expressions, and prints what remains.
//
// Usage:
//
//	jfilter [options] [file ...]
//
// Each file (or stdin, if there are none) must contain a single JSON value.
// Input is fed to the parser one line at a time, or in fixed-size chunks if
// -chunk is set. Files ending in ".zst" are decompressed with zstd.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/creachadair/jfilter"
	"github.com/creachadair/jfilter/ast"
	"github.com/creachadair/jfilter/filter"
	"github.com/creachadair/jfilter/internal/config"
	"github.com/klauspost/compress/zstd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "jfilter: ", 0)

	cfg, err := config.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(stdout, config.Usage())
		return 0
	} else if err != nil {
		logger.Printf("Error: %v", err)
		fmt.Fprint(stderr, "\n", config.Usage())
		return 2
	}
	f, err := cfg.Filter()
	if err != nil {
		logger.Printf("Error: %v", err)
		return 2
	}
	if cfg.Verbose {
		logger.Printf("Filter: %v", f)
	}

	t := &tool{cfg: cfg, filter: f, out: bufio.NewWriter(stdout)}
	if cfg.Verbose {
		t.log = logger
	}
	defer t.out.Flush()

	if len(cfg.Inputs) == 0 {
		if err := t.process(ctx, "<stdin>", stdin); err != nil {
			logger.Printf("Error: %v", err)
			return 1
		}
		return 0
	}
	for _, path := range cfg.Inputs {
		if err := t.processFile(ctx, path); err != nil {
			logger.Printf("Error: %v", err)
			return 1
		}
	}
	return 0
}

type tool struct {
	cfg    *config.Config
	filter *filter.Filter
	out    *bufio.Writer
	log    *log.Logger // nil unless verbose
}

func (t *tool) logf(msg string, args ...any) {
	if t.log != nil {
		t.log.Printf(msg, args...)
	}
}

func (t *tool) processFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return t.process(ctx, path, f)
}

// process parses a single value from r and writes the result to t.out.
func (t *tool) process(ctx context.Context, name string, r io.Reader) error {
	if t.cfg.Zstd || strings.HasSuffix(name, ".zst") {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		defer zr.Close()
		r = zr
	}

	p := jfilter.New()
	if err := p.SetFilter(t.filter); err != nil {
		return err
	}
	nc, err := t.feed(ctx, p, r)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := p.Finish(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	t.logf("%s: fed %d chunks, %d bytes; %v", name, nc, p.Pos().Offset, p)

	v, err := p.Value()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if v == nil {
		fmt.Fprintln(t.out, "Root type: none (discarded)")
		return nil
	}
	fmt.Fprintf(t.out, "Root type: %v\n", v.Kind())
	if err := (ast.Formatter{Indent: t.cfg.OutputIndent()}).Format(t.out, v); err != nil {
		return err
	}
	fmt.Fprintln(t.out)
	return t.out.Flush()
}

// feed delivers the contents of r to p, and reports the number of chunks fed.
func (t *tool) feed(ctx context.Context, p *jfilter.Parser, r io.Reader) (int, error) {
	var nc int
	if t.cfg.Chunk <= 0 {
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadBytes('\n')
			if len(line) != 0 {
				nc++
				if perr := p.Feed(line); perr != nil {
					return nc, perr
				}
			}
			if err == io.EOF {
				return nc, nil
			} else if err != nil {
				return nc, err
			} else if err := ctx.Err(); err != nil {
				return nc, err
			}
		}
	}

	buf := make([]byte, t.cfg.Chunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			nc++
			if perr := p.Feed(buf[:n]); perr != nil {
				return nc, perr
			}
		}
		if err == io.EOF {
			return nc, nil
		} else if err != nil {
			return nc, err
		} else if err := ctx.Err(); err != nil {
			return nc, err
		}
	}
}
