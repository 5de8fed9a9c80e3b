// Command bitplane prints the bit-plane histogram of a set of TIFF images.
//
// Usage:
//
//	bitplane [flags] [file...]
//
// Files may be local paths or s3://bucket/key URLs when an S3 endpoint is
// configured. On success it prints the per-slot counts of set bits ("1s")
// and clear bits ("0s"), all zero when no files are given; on any failure it
// prints the error and exits 1 without printing counts. With -json the
// result and the logs are both written as JSON.
//
// Flags fall back to environment variables when not given:
//
//	BITPLANE_WORKERS      -workers
//	BITPLANE_READ_LIMIT   -read-limit
//	BITPLANE_S3_ENDPOINT  -s3-endpoint
//	BITPLANE_S3_SECURE    -s3-secure
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/arloliu/bitplane"
	"github.com/arloliu/bitplane/histogram"
	"github.com/arloliu/bitplane/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

type config struct {
	workers     int
	memoryLimit int64
	readLimit   int64
	s3Endpoint  string
	s3Secure    bool
	json        bool
	files       bool
	verbose     bool
	paths       []string
}

func parseFlags(args []string, stderr io.Writer, getenv func(string) string) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("bitplane", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bitplane [flags] [file...]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	fs.IntVar(&cfg.workers, "workers", 0, "Number of files processed at once (default GOMAXPROCS)")
	fs.Int64Var(&cfg.memoryLimit, "memory-limit", 0, "Maximum decoded sample bytes held at once (0 = unlimited)")
	fs.Int64Var(&cfg.readLimit, "read-limit", 0, "Maximum input read rate in bytes per second (0 = unlimited)")
	fs.StringVar(&cfg.s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint for s3://bucket/key inputs")
	fs.BoolVar(&cfg.s3Secure, "s3-secure", true, "Use HTTPS for the S3 endpoint")
	fs.BoolVar(&cfg.json, "json", false, "Print the result as JSON")
	fs.BoolVar(&cfg.files, "files", false, "Also print per-file statistics")
	fs.BoolVar(&cfg.verbose, "v", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	envs := []struct {
		flag, env string
	}{
		{"workers", "BITPLANE_WORKERS"},
		{"read-limit", "BITPLANE_READ_LIMIT"},
		{"s3-endpoint", "BITPLANE_S3_ENDPOINT"},
		{"s3-secure", "BITPLANE_S3_SECURE"},
	}
	for _, e := range envs {
		v := getenv(e.env)
		if v == "" || set[e.flag] {
			continue
		}
		if err := fs.Set(e.flag, v); err != nil {
			return cfg, fmt.Errorf("%s: %w", e.env, err)
		}
	}

	cfg.paths = fs.Args()
	if cfg.memoryLimit < 0 {
		return cfg, errors.New("-memory-limit cannot be negative")
	}
	if cfg.readLimit < 0 {
		return cfg, errors.New("-read-limit cannot be negative")
	}

	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	cfg, err := parseFlags(args, stderr, getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return 2
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := bitplane.NewTextLogger(stderr, level)
	if cfg.json {
		logger = bitplane.NewJSONLogger(stderr, level)
	}

	src, err := newSource(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	opts := []bitplane.Option{
		bitplane.WithSource(src),
		bitplane.WithWorkers(cfg.workers),
		bitplane.WithLogger(logger),
		bitplane.WithDigests(cfg.files),
	}
	if cfg.memoryLimit > 0 {
		opts = append(opts, bitplane.WithMemoryLimit(cfg.memoryLimit))
	}

	res, err := bitplane.Count(ctx, cfg.paths, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.json {
		if !cfg.files {
			res.Files = nil
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}

		return 0
	}

	printText(stdout, res, cfg.files)

	return 0
}

func newSource(cfg config) (source.Source, error) {
	var opts []source.Option
	if cfg.readLimit > 0 {
		opts = append(opts, source.WithReadLimit(cfg.readLimit))
	}

	local, err := source.NewLocal(opts...)
	if err != nil {
		return nil, err
	}
	mux := source.NewMux(local)

	if cfg.s3Endpoint != "" {
		client, err := source.NewMinioClient(cfg.s3Endpoint, cfg.s3Secure)
		if err != nil {
			return nil, fmt.Errorf("s3 endpoint %s: %w", cfg.s3Endpoint, err)
		}
		s3, err := source.NewMinio(client, opts...)
		if err != nil {
			return nil, err
		}
		mux.Handle(source.S3Scheme, s3)
	}

	return mux, nil
}

func printText(w io.Writer, res *bitplane.Result, files bool) {
	fmt.Fprintf(w, "1s: %s\n", formatSlots(res.Ones))
	fmt.Fprintf(w, "0s: %s\n", formatSlots(res.Zeros))

	if !files {
		return
	}

	fmt.Fprintln(w)
	for _, f := range res.Files {
		fmt.Fprintf(w, "%s\t%dx%d\t%s\t%d samples\t%016x\n", f.Path, f.Width, f.Height, f.SampleWidth, f.Samples, f.Digest)
	}
	for _, group := range res.Duplicates() {
		fmt.Fprintf(w, "identical samples: %s\n", strings.Join(group, ", "))
	}
}

func formatSlots(slots [histogram.Slots]uint64) string {
	parts := make([]string, len(slots))
	for i, v := range slots {
		parts[i] = strconv.FormatUint(v, 10)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}
