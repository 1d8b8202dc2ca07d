package internal

import (
	"ScanDaemon/internal/scanner"

	"github.com/sirupsen/logrus"
)

// NewMatchSink returns a closure logging every match and counting it.
// logrus serializes writes, so the sink is safe to share between workers.
func NewMatchSink(log *logrus.Logger, stats *AppStats) func(scanner.MatchEvent) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(ev scanner.MatchEvent) {
		fields := logrus.Fields{
			"pattern": ev.Pattern,
			"path":    ev.Path,
			"pass":    ev.Pass,
			"at":      ev.Time.Format("2006-01-02 15:04:05"),
		}
		if ev.InnerPath != "" {
			fields["inner"] = ev.InnerPath
			log.WithFields(fields).Info("Match found (archive entry)")
		} else {
			log.WithFields(fields).Info("Match found")
		}
		if stats != nil {
			stats.Matches.Add(1)
		}
	}
}
