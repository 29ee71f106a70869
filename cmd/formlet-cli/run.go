package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"

	formlet "github.com/goliatone/go-formlet"
	"github.com/goliatone/go-formlet/pkg/dispatch"
	"github.com/goliatone/go-formlet/pkg/host/preview"
	"github.com/goliatone/go-formlet/pkg/host/tui"
	pkgopenapi "github.com/goliatone/go-formlet/pkg/openapi"
	"github.com/goliatone/go-formlet/pkg/session"
)

type config struct {
	source   string
	openapi  bool
	formID   string
	logLevel string
	preview  bool
	output   string
	attempts int
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("formlet-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.source, "source", "", "form document file or directory (YAML/JSON), or an OpenAPI file with -openapi")
	fs.BoolVar(&cfg.openapi, "openapi", false, "treat -source as an OpenAPI 3 document")
	fs.StringVar(&cfg.formID, "form", "", "form id or operationId to show (optional when the source declares one form)")
	fs.StringVar(&cfg.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")
	fs.BoolVar(&cfg.preview, "preview", false, "print the form outline instead of prompting")
	fs.StringVar(&cfg.output, "output", "", "file for the submitted values (stdout if empty)")
	fs.IntVar(&cfg.attempts, "attempts", 3, "submit attempts before giving up")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if cfg.source == "" && fs.NArg() > 0 {
		cfg.source = fs.Arg(0)
	}
	if strings.TrimSpace(cfg.source) == "" {
		return config{}, errors.New("a form source is required (-source)")
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	level := hclog.LevelFromString(cfg.logLevel)
	if level == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", cfg.logLevel)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "formlet-cli",
		Level:  level,
		Output: stderr,
	})

	doc, err := loadDocument(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Debug("form loaded", "form", doc.ID, "source", doc.Source, "fields", len(doc.Fields))

	loop := dispatch.NewLoop()
	queue := dispatch.New[string](loop, dispatch.WithLogger(logger.Named("dispatch")))
	defer queue.Close()

	if cfg.preview || !interactive(stdout) {
		host, err := preview.New(preview.WithOutput(stdout), preview.WithLogger(logger.Named("preview")))
		if err != nil {
			return err
		}
		s, err := formlet.NewSession(queue, host, session.WithLogger(logger.Named("session")))
		if err != nil {
			return err
		}
		return formlet.ShowDocument(s, doc, nil)
	}

	host := tui.New(
		tui.WithOutput(stdout),
		tui.WithLogger(logger.Named("tui")),
		tui.WithMaxAttempts(cfg.attempts),
	)
	s, err := formlet.NewSession(queue, host,
		session.WithLogger(logger.Named("session")),
		session.WithErrorHandler(func(err error) {
			logger.Warn("rebuild failed", "error", err)
		}),
	)
	if err != nil {
		return err
	}
	var values formlet.Values
	if err := formlet.ShowDocument(s, doc, func(v formlet.Values) { values = v }); err != nil {
		return err
	}
	if err := host.Run(ctx, s, loop.Drain); err != nil {
		return err
	}
	return writeValues(cfg.output, stdout, values)
}

func loadDocument(ctx context.Context, cfg config, logger hclog.Logger) (formlet.Document, error) {
	if cfg.openapi {
		dir, name := filepath.Split(cfg.source)
		if dir == "" {
			dir = "."
		}
		return formlet.LoadOpenAPIDocument(ctx, os.DirFS(dir), name, cfg.formID,
			pkgopenapi.WithLogger(logger.Named("openapi")))
	}

	info, err := os.Stat(cfg.source)
	if err != nil {
		return formlet.Document{}, err
	}
	if info.IsDir() {
		return formlet.LoadDocument(os.DirFS(cfg.source), cfg.formID)
	}
	data, err := os.ReadFile(cfg.source)
	if err != nil {
		return formlet.Document{}, err
	}
	return formlet.ParseDocument(data, filepath.Base(cfg.source), cfg.formID)
}

// interactive reports whether prompts can be shown: both stdin and the
// output must be terminals.
func interactive(stdout io.Writer) bool {
	out, ok := stdout.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(os.Stdin.Fd()) && isTerminal(out.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func writeValues(path string, stdout io.Writer, values formlet.Values) error {
	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}
	payload = append(payload, '\n')
	if path == "" {
		_, err := stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write values: %w", err)
	}
	return nil
}
