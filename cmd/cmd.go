package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/gnmake/config"
	"github.com/rubiojr/gnmake/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// stdout receives echoed commands, !message output and the -p dump.
var stdout io.Writer = os.Stdout

// usageError is a bad command line.
type usageError struct {
	err error
}

func (e usageError) Error() string {
	return e.err.Error()
}

func (e usageError) Unwrap() error {
	return e.err
}

// Execute runs gnmake with the process arguments and exits non-zero on
// failure.
func Execute(version string) {
	args := normalizeArgs(spliceOptions(os.Args, os.Getenv("GNMAKE_OPTIONS")))
	if err := newCommand(version).Run(context.Background(), args); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(os.Stderr, "usage error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "gnmake: error: %v\n", err)
		}
		os.Exit(2)
	}
}

func newCommand(version string) *cli.Command {
	return &cli.Command{
		Name:                   "gnmake",
		Usage:                  "A make program that understands NMAKE makefiles",
		ArgsUsage:              "[macro=value ...] [target ...]",
		Version:                version,
		UseShortOptionHandling: true,
		OnUsageError: func(ctx context.Context, cmd *cli.Command, err error, isSubcommand bool) error {
			return usageError{err}
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read `FILE` as the makefile",
				Value:   "Makefile",
				Sources: cli.EnvVars("GNMAKE_MAKEFILE"),
			},
			&cli.BoolFlag{
				Name:    "print",
				Aliases: []string{"p"},
				Usage:   "Print macros and rules before building",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"c"},
				Usage:   "Suppress warnings",
			},
			&cli.BoolFlag{
				Name:    "environment-overrides",
				Aliases: []string{"e"},
				Usage:   "Environment variables override makefile macros",
			},
			&cli.BoolFlag{
				Name:    "ignore-errors",
				Aliases: []string{"i"},
				Usage:   "Ignore exit codes from commands",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Print commands without running them",
			},
			&cli.BoolFlag{
				Name:    "always-make",
				Aliases: []string{"a"},
				Usage:   "Build every target regardless of timestamps",
			},
			&cli.BoolFlag{
				Name:    "silent",
				Aliases: []string{"s"},
				Usage:   "Do not echo commands",
			},
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "Keep here-document files",
			},
			&cli.BoolFlag{
				Name:  "nologo",
				Usage: "Accepted for compatibility",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log progress",
			},
			&cli.IntFlag{
				Name:  "debug",
				Usage: "Debug logging `LEVEL`",
			},
			&cli.BoolFlag{
				Name:  "log-start",
				Usage: "Log the start and end of the build",
			},
			&cli.BoolFlag{
				Name:  "log-makefile",
				Usage: "Log every makefile line as it is read",
			},
			&cli.BoolFlag{
				Name:  "log-running",
				Usage: "Log each command before it runs",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg := configFromFlags(cmd)
	macros, targets, err := splitArgs(cmd.Args().Slice())
	if err != nil {
		return err
	}
	setupLogging(cfg)
	return build(ctx, cfg, macros, targets, os.Args[0])
}

func configFromFlags(cmd *cli.Command) *config.Config {
	return &config.Config{
		Makefile:    cmd.String("file"),
		Dump:        cmd.Bool("print"),
		Quiet:       cmd.Bool("quiet"),
		NoLogo:      cmd.Bool("nologo"),
		ForceEnv:    cmd.Bool("environment-overrides"),
		Verbose:     cmd.Bool("verbose") || cmd.Int("debug") > 0,
		Debug:       int(cmd.Int("debug")),
		LogStart:    cmd.Bool("log-start"),
		LogMakefile: cmd.Bool("log-makefile"),
		LogRunning:  cmd.Bool("log-running"),
		Ignore:      cmd.Bool("ignore-errors"),
		DryRun:      cmd.Bool("dry-run"),
		All:         cmd.Bool("always-make"),
		Silent:      cmd.Bool("silent"),
		Keep:        cmd.Bool("keep"),
	}
}

// setupLogging enables progress logging for any of the --log options
// and colours the output only on a terminal without NO_COLOR.
func setupLogging(cfg *config.Config) {
	color := term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == ""
	log.Setup(log.Options{
		Verbose: cfg.Verbose || cfg.LogStart || cfg.LogMakefile || cfg.LogRunning,
		Debug:   cfg.Debug,
		Quiet:   cfg.Quiet,
		Color:   color,
	})
}
