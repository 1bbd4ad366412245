package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tuannm99/novaload/internal"
	"github.com/tuannm99/novaload/internal/composite"
	"github.com/tuannm99/novaload/internal/loader"
	"github.com/tuannm99/novaload/pkg/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("novaload", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.StringP("config", "c", "novaload.yaml", "Config file describing delimiters and types")
	typeName := flags.StringP("type", "t", "", "Composite type of every input line")
	inputPath := flags.StringP("input", "i", "-", "Input file, one composite per line ('-' is stdin)")
	outputKind := flags.StringP("output", "o", "text", "Output format: text or json")
	strict := flags.Bool("strict", false, "Stop at the first unparseable line")
	debug := flags.Bool("debug", false, "Enable debug logging")
	flags.String("dispatch", "position", "Field dispatch: position or name")
	flags.String("null-marker", `\N`, "Line that stands for a NULL composite")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := internal.LoadConfig(*configPath, flags)
	if err != nil {
		log.Error("load config", "path", *configPath, "err", err)
		return 1
	}
	if *strict {
		cfg.Policy = "abort"
	}
	if *typeName == "" {
		if len(cfg.Types) != 1 {
			log.Error("--type is required when the config declares several types")
			return 2
		}
		*typeName = cfg.Types[0].Name
	}

	reg, err := cfg.Registry(composite.WithLogger(log))
	if err != nil {
		log.Error("build codecs", "err", err)
		return 1
	}
	codec, err := reg.Codec(*typeName)
	if err != nil {
		log.Error("build codec", "type", *typeName, "err", err)
		return 1
	}
	out, err := loader.ParseOutput(*outputKind)
	if err != nil {
		log.Error("parse flags", "err", err)
		return 2
	}

	in := stdin
	if *inputPath != "-" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Error("open input", "path", *inputPath, "err", err)
			return 1
		}
		defer util.CloseLogged(*inputPath, f)
		in = f
	}

	l := &loader.Loader{Codec: codec, NullMarker: cfg.NullMarker, Output: out, Log: log}
	st, err := l.Run(ctx, in, stdout)
	log.Info("done", "app", cfg.AppName, "type", *typeName,
		"lines", st.Lines, "ok", st.OK, "nulls", st.Nulls, "skipped", st.Skipped)
	if err != nil {
		fmt.Fprintf(stderr, "novaload: %v\n", err)
		return 1
	}
	return 0
}
