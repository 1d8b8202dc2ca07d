package internal

import (
	"iter"
	"path/filepath"
	"time"

	"ScanDaemon/internal/scanner"

	"github.com/sirupsen/logrus"
)

var now = time.Now

var _ scanner.Scanner = (*FileScanner)(nil)

// FileScanner walks the filesystem and yields entries whose base name
// contains the pattern. It is stateless and safe for concurrent use by many
// workers; skips are counted into req.Skips.
type FileScanner struct {
	log *logrus.Logger
}

func NewFileScanner(log *logrus.Logger) *FileScanner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FileScanner{log: log}
}

// Scan returns a lazy, restartable sequence of matches for one pass.
// The walk checks irq before every directory entry and unwinds as soon as
// it is set. Unreadable entries and directories are skipped, never reported.
func (s *FileScanner) Scan(req scanner.Request, irq scanner.Interrupter) iter.Seq[scanner.MatchEvent] {
	if irq == nil {
		irq = scanner.Never
	}
	return func(yield func(scanner.MatchEvent) bool) {
		skips := req.Skips
		if skips == nil {
			skips = new(scanner.SkipCounters)
		}
		root := req.Root
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		w := &walker{
			skips:   skips,
			req:     req,
			pattern: Pattern(req.Pattern),
			irq:     irq,
			yield:   yield,
			log:     s.log.WithField("pattern", req.Pattern),
			verbose: s.log.IsLevelEnabled(logrus.DebugLevel),
		}
		w.walk(root, 1)
	}
}
