package internal

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

const syslogTag = "scand"

// InitLogger configures the standard logrus logger: text output with
// optional file, debug level when verbose, and the system log as sink.
func InitLogger(opts Options) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   opts.LogFile == "" && isatty.IsTerminal(os.Stderr.Fd()),
		FullTimestamp: true,
		DisableQuote:  true,
		PadLevelText:  true,
	})
	logrus.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if opts.LogFile != "" {
		file, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			logrus.SetOutput(file)
		} else {
			logrus.Warn("Failed to open log file, logging to stderr")
		}
	}
	if opts.Syslog {
		hook, err := newSyslogHook(syslogTag)
		if err != nil {
			logrus.WithError(err).Warn("System log unavailable")
			return
		}
		logrus.AddHook(hook)
	}
}
