// Command safeannotate renders audio files through a plugin processor,
// records a descriptor annotation and manages the semantic data file.
//
// Usage:
//
//	safeannotate [flags] <command> [args]
//
// Examples:
//
//	safeannotate annotate -d "warm bright" take.wav
//	safeannotate annotate -d warm --set Rate=6 --send loop.ogg
//	safeannotate lookup warm
//	safeannotate --metrics annotate -d airy pad.mp3
//	safeannotate descriptors
//	safeannotate details
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/algo-safe/internal/config"
	"github.com/cwbudde/algo-safe/internal/observe"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Config   string           `short:"c" type:"path" help:"YAML config file (optional)."`
	LogLevel string           `name:"log-level" help:"Override log_level (debug, info, warn, error)."`
	Metrics  bool             `help:"Print a metrics summary after the command."`
	Trace    bool             `help:"Print recorded spans after the command."`
	Version  kong.VersionFlag `short:"v" help:"Show version information."`

	Annotate    AnnotateCmd    `cmd:"" help:"Render an audio file through the plugin and annotate a recording."`
	Lookup      LookupCmd      `cmd:"" help:"Print the parameter settings stored for a descriptor."`
	Descriptors DescriptorsCmd `cmd:"" help:"List descriptors in the local data file."`
	Details     DetailsCmd     `cmd:"" help:"Write the plugin details files."`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		printError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("safeannotate"),
		kong.Description("Semantic audio annotation for plugin processors"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version},
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if cli.Config != "" {
		if cfg, err = config.Load(cli.Config); err != nil {
			return err
		}
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = config.LogLevel(cli.LogLevel)
		if !cfg.LogLevel.IsValid() {
			return fmt.Errorf("--log-level %q is invalid; valid values: debug, info, warn, error", cli.LogLevel)
		}
	}
	slog.SetDefault(observe.NewLogger(stderr, string(cfg.LogLevel)))

	tel, err := newTelemetry(cli.Metrics, cli.Trace)
	if err != nil {
		return err
	}
	app := &App{cfg: cfg, out: stdout, errOut: stderr, metrics: tel.metrics}

	runErr := kctx.Run(app)

	ctx := context.Background()
	if err := tel.report(ctx, stdout); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
