package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"storyclient/internal/infra"
	"storyclient/internal/messages"
	"storyclient/internal/providers/storyapi"
)

const usage = `usage:
  storyctl generate [-theme THEME]
  storyctl load -id STORY_ID [-interactive]
`

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "storyctl: %v\n", err)
		os.Exit(2)
	}
	logger := infra.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := infra.SetupTracing(ctx, cfg, "storyctl")
	if err != nil {
		logger.Warn().Err(err).Msg("storyctl: tracing disabled")
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("storyctl: tracing shutdown failed")
			}
		}()
	}

	client, err := storyapi.NewClient(storyapi.Options{
		BaseURL:        cfg.APIBaseURL,
		Logger:         &logger,
		RequestTimeout: cfg.HTTPTimeout,
		Locale:         cfg.Locale,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("storyctl: failed to configure api client")
	}

	code := run(ctx, os.Args[1:], appOptions{
		API:      client,
		Messages: messages.NewPrinter(cfg.Locale),
		Logger:   &logger,
		Interval: cfg.PollInterval,
		In:       os.Stdin,
		Out:      os.Stdout,
	})
	os.Exit(code)
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, opts appOptions) int {
	if len(args) == 0 {
		fmt.Fprint(errOut(opts), usage)
		return 2
	}

	a, err := newApp(opts)
	if err != nil {
		fmt.Fprintf(errOut(opts), "storyctl: %v\n", err)
		return 1
	}
	defer a.Close()

	switch args[0] {
	case "generate":
		fs := flag.NewFlagSet("generate", flag.ContinueOnError)
		fs.SetOutput(errOut(opts))
		theme := fs.String("theme", "", "story theme; prompts when empty")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		// Without a theme the session is interactive: errors offer a retry.
		a.term.interactive = *theme == ""
		err = a.generate(ctx, *theme)
	case "load":
		fs := flag.NewFlagSet("load", flag.ContinueOnError)
		fs.SetOutput(errOut(opts))
		id := fs.Int64("id", 0, "story id")
		interactive := fs.Bool("interactive", false, "offer to start a new story afterwards")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *id <= 0 {
			fmt.Fprint(errOut(opts), usage)
			return 2
		}
		a.term.interactive = *interactive
		err = a.load(ctx, *id)
	default:
		fmt.Fprint(errOut(opts), usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		a.logger.Debug().Err(err).Msg("storyctl: command failed")
		return 1
	}
}

func errOut(opts appOptions) io.Writer {
	if opts.Err != nil {
		return opts.Err
	}
	return os.Stderr
}
