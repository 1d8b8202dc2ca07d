package main

import (
	"ScanDaemon/internal"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const exitUsage = 2

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "scand",
		Usage:     "Continuously search the filesystem for names containing the given fragments",
		ArgsUsage: "<pattern> [pattern ...] [interval-seconds]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log denied entries, comparisons and state changes",
			},
			&cli.Int64Flag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Seconds between scan passes (also the supervisor tick)",
				Value:   int64(internal.DefaultInterval / time.Second),
			},
			&cli.StringFlag{
				Name:  "pattern-file",
				Usage: "Read extra patterns from a file, one per line ('#' comments)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML config file; command line values take precedence",
			},
			&cli.StringSliceFlag{
				Name:  "root",
				Usage: "Directory to scan (repeatable). Default: / (all drives on windows)",
			},
			&cli.IntFlag{
				Name:  "depth",
				Usage: "Max directory depth (0 - unlimited)",
			},
			&cli.BoolFlag{
				Name:  "archives",
				Usage: "Also match entry names inside archives (.zip,.tar,.gz,.7z,...)",
			},
			&cli.BoolFlag{
				Name:  "respawn",
				Usage: "Restart workers that exit instead of only logging the exit",
			},
			&cli.BoolFlag{
				Name:  "foreground",
				Usage: "Do not detach from the terminal",
			},
			&cli.StringFlag{
				Name:  "lock-file",
				Usage: "PID file locked for the daemon lifetime to prevent a second instance",
			},
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "Write logs into file instead of stderr",
			},
			&cli.BoolFlag{
				Name:  "syslog",
				Usage: "Send log events to the system log",
				Value: true,
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	opts, err := loadOptions(c)
	if err != nil {
		return usageError(c, err)
	}

	if opts.LockFile != "" {
		if err := internal.ProbePIDLock(opts.LockFile); err != nil {
			return cli.Exit(color.RedString(err.Error()), 1)
		}
	}

	if !opts.Foreground {
		child, err := internal.Detach()
		switch {
		case errors.Is(err, internal.ErrDetachUnsupported):
			logrus.Warn("Background mode unavailable, running in foreground")
		case err != nil:
			return cli.Exit(color.RedString(err.Error()), 1)
		case child != nil:
			fmt.Printf("scand started in background (pid %d)\n", child.Pid)
			return nil
		}
	}

	internal.InitLogger(opts)

	if opts.LockFile != "" {
		lock, err := internal.AcquirePIDLock(opts.LockFile)
		if err != nil {
			logrus.WithError(err).Fatal("Cannot take lock")
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logrus.WithError(err).Warn("Release lock")
			}
		}()
	}

	logrus.WithFields(logrus.Fields{
		"patterns": opts.Patterns,
		"roots":    opts.Roots,
		"interval": opts.Interval,
		"verbose":  opts.Verbose,
	}).Info("Daemon started")

	log := logrus.StandardLogger()
	sup, err := internal.NewSupervisor(opts, internal.NewFileScanner(log), log)
	if err != nil {
		logrus.WithError(err).Fatal("Cannot create supervisor")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sup.Run(ctx) })
	g.Go(func() error {
		relaySignals(ctx, sup)
		return nil
	})
	if err := g.Wait(); err != nil {
		logrus.WithError(err).Fatal("Supervisor failed")
	}
	logrus.Info("Daemon stopped")
	return nil
}

// loadOptions builds, normalizes and validates options. Duplicates collapse
// before the pattern limit is checked.
func loadOptions(c *cli.Context) (internal.Options, error) {
	opts, err := buildOptions(c)
	if err != nil {
		return opts, err
	}
	opts.Prepare()
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// buildOptions layers: defaults < config file < command line.
func buildOptions(c *cli.Context) (internal.Options, error) {
	opts := internal.DefaultOptions()
	if path := c.String("config"); path != "" {
		var err error
		if opts, err = internal.LoadOptionsFile(path); err != nil {
			return opts, err
		}
	}

	patterns, interval, err := internal.SplitArgs(c.Args().Slice())
	if err != nil {
		return opts, err
	}
	opts.Patterns = append(opts.Patterns, patterns...)
	if path := c.String("pattern-file"); path != "" {
		more, err := internal.LoadPatterns(path)
		if err != nil {
			return opts, fmt.Errorf("pattern file: %w", err)
		}
		opts.Patterns = append(opts.Patterns, more...)
	}

	switch {
	case c.IsSet("interval"):
		if opts.Interval, err = internal.IntervalSeconds(c.Int64("interval")); err != nil {
			return opts, err
		}
	case interval > 0:
		opts.Interval = interval
	}
	if c.IsSet("root") {
		opts.Roots = c.StringSlice("root")
	}
	if c.IsSet("depth") {
		opts.Depth = c.Int("depth")
	}
	if c.IsSet("logfile") {
		opts.LogFile = c.String("logfile")
	}
	if c.IsSet("lock-file") {
		opts.LockFile = c.String("lock-file")
	}
	if c.IsSet("syslog") {
		opts.Syslog = c.Bool("syslog")
	}
	opts.Verbose = opts.Verbose || c.Bool("verbose")
	opts.Archives = opts.Archives || c.Bool("archives")
	opts.Respawn = opts.Respawn || c.Bool("respawn")
	opts.Foreground = c.Bool("foreground")
	return opts, nil
}

func usageError(c *cli.Context, err error) error {
	fmt.Fprintln(c.App.ErrWriter, color.RedString("Error: %v", err))
	_ = cli.ShowAppHelp(c)
	return cli.Exit("", exitUsage)
}
