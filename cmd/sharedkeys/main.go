package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/tymbaca/sharedkeys/mapreduce"
	"github.com/tymbaca/sharedkeys/mapreduce/storage/bbolt"
	"github.com/tymbaca/sharedkeys/pkg/bootstrap"
	"github.com/tymbaca/sharedkeys/pkg/tracer"
)

const usage = `Usage:
  sharedkeys -threads N -maps N -size N [-print] [options]

Builds maps random partitions of size records each, finds the keys shared
between the partitions of every thread and groups them by value.

Options:
`

var errBadArgs = errors.New("wrong number or value of arguments")

type options struct {
	threads  int
	maps     int
	size     int
	print    bool
	seed     int64
	overlap  float64
	db       string
	otlp     string
	logLevel slog.Level
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	defaults := bootstrap.DefaultConfig()
	opts := options{logLevel: slog.LevelInfo}

	fs := flag.NewFlagSet("sharedkeys", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	fs.IntVar(&opts.threads, "threads", 0, "number of worker threads")
	fs.IntVar(&opts.maps, "maps", 0, "number of partitions to generate")
	fs.IntVar(&opts.size, "size", 0, "records per partition")
	fs.BoolVar(&opts.print, "print", false, "dump the reduced maps of every thread")
	fs.Int64Var(&opts.seed, "seed", defaults.Seed, "seed of the shared key sequence")
	fs.Float64Var(&opts.overlap, "overlap", defaults.Overlap, "fraction of keys common to all partitions")
	fs.StringVar(&opts.db, "db", "", "export the reduced maps to this bbolt file")
	fs.StringVar(&opts.otlp, "otlp", "", "OTLP/HTTP collector endpoint (host:port) for traces")
	fs.TextVar(&opts.logLevel, "log-level", slog.LevelInfo, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if fs.NArg() > 0 || opts.threads <= 0 || opts.maps <= 0 || opts.size <= 0 {
		fmt.Fprintf(fs.Output(), "%s.\n", errBadArgs)
		fs.Usage()
		return opts, errBadArgs
	}

	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return 1
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: opts.logLevel}))
	slog.SetDefault(logger)

	if opts.otlp != "" {
		shutdown, err := tracer.Init(opts.otlp)
		if err != nil {
			slog.Error("init tracer", "err", err)
			return 1
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("flush traces", "err", err)
			}
		}()
	}

	if err := process(ctx, opts, stdout); err != nil {
		slog.Error("sharedkeys failed", "err", err)
		return 1
	}

	return 0
}

func process(ctx context.Context, opts options, stdout io.Writer) error {
	fmt.Fprintln(stdout, "--------------- sharedkeys STARTED ---------------")

	cfg := bootstrap.DefaultConfig()
	cfg.Maps = opts.maps
	cfg.Size = opts.size
	cfg.Seed = opts.seed
	cfg.Overlap = opts.overlap

	universe, err := bootstrap.Create(cfg)
	if err != nil {
		return err
	}

	engine, err := mapreduce.New(mapreduce.Config{Workers: opts.threads})
	if err != nil {
		return err
	}

	res, err := engine.Run(ctx, universe.Maps)
	if err != nil {
		return err
	}

	if err := res.WriteTimings(stdout); err != nil {
		return err
	}

	if opts.print {
		if err := res.WriteDump(stdout); err != nil {
			return err
		}
	}

	if opts.db != "" {
		if err := export(ctx, res, opts.db); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "stats: %s\n", engine.Counters())
	fmt.Fprintln(stdout, "--------------- sharedkeys DONE ---------------")

	return nil
}

func export(ctx context.Context, res *mapreduce.Result, path string) error {
	storage, err := bbolt.New(path)
	if err != nil {
		return err
	}

	if err := res.Export(ctx, storage); err != nil {
		_ = storage.Close()
		return err
	}

	return storage.Close()
}
