package internal

import (
	"context"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"ScanDaemon/internal/scanner"

	"github.com/mholt/archives"
	"github.com/sirupsen/logrus"
)

const (
	dirBatch        = 256   // names per readdir call
	maxArchiveFiles = 10000 // zip-bomb protection
)

// IsArchive by extension. O(1) map lookup
var archiveExt = map[string]struct{}{
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {},
	".rar": {}, ".br": {}, ".lz4": {}, ".lz": {}, ".mz": {},
	".sz": {}, ".s2": {}, ".zz": {}, ".zst": {}, ".7z": {},
}

func IsArchive(path string) bool {
	_, ok := archiveExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// DetectRoots returns default roots for OS if user didn't provide any.
func DetectRoots(goos string) []string {
	if goos == "windows" {
		var drives []string
		for c := 'C'; c <= 'Z'; c++ {
			p := string(c) + ":\\"
			if st, err := os.Stat(p); err == nil && st.IsDir() {
				drives = append(drives, p)
			}
		}
		return drives
	}
	return []string{"/"}
}

// walker is the state of one pre-order pass. Every method returns false once
// the pass has to unwind (interrupted, or the consumer stopped iterating).
type walker struct {
	skips   *scanner.SkipCounters
	req     scanner.Request
	pattern Pattern
	irq     scanner.Interrupter
	yield   func(scanner.MatchEvent) bool
	log     *logrus.Entry
	verbose bool
}

func (w *walker) walk(dir string, depth int) bool {
	f, err := os.Open(dir)
	if err != nil {
		w.skips.DirErrors.Add(1)
		w.debug(err, dir, "Skip unreadable directory")
		return true
	}
	defer f.Close()

	for {
		names, err := f.Readdirnames(dirBatch)
		for _, name := range names {
			if w.irq.Interrupted() {
				return false
			}
			if !w.visit(filepath.Join(dir, name), name, depth) {
				return false
			}
		}
		if err != nil {
			if err != io.EOF {
				w.skips.DirErrors.Add(1)
				w.debug(err, dir, "Abandon directory")
			}
			return true
		}
	}
}

func (w *walker) visit(path, name string, depth int) bool {
	// stat follows symlinks; cycles are not detected
	st, err := os.Stat(path)
	if err != nil {
		w.debug(err, path, "Stat failed")
		return true
	}
	isDir := st.IsDir()

	if !hasAccess(path, isDir) {
		w.skips.Denied.Add(1)
		w.debug(nil, path, "No access")
		return true
	}

	if w.pattern.Match(name) {
		if !w.emit(path, "") {
			return false
		}
	} else if w.verbose {
		w.log.WithField("name", name).Debug("Compare")
	}

	if isDir {
		if w.req.Depth > 0 && depth >= w.req.Depth {
			return true
		}
		return w.walk(path, depth+1)
	}
	if w.req.Archives && st.Mode().IsRegular() && IsArchive(name) {
		return w.walkArchive(path)
	}
	return true
}

// walkArchive matches inner entry names of an archive.
func (w *walker) walkArchive(path string) bool {
	fsys, err := archives.FileSystem(context.Background(), path, nil)
	if err != nil {
		w.debug(err, path, "Open archive")
		return true
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer closer.Close()
	}

	count := 0
	cont := true
	_ = iofs.WalkDir(fsys, ".", func(inner string, d iofs.DirEntry, err error) error {
		if w.irq.Interrupted() {
			cont = false
			return iofs.SkipAll
		}
		if err != nil || inner == "." {
			return nil
		}
		if count >= maxArchiveFiles {
			w.log.WithField("archive", path).Warnf("Archive truncated: too many entries (>= %d)", maxArchiveFiles)
			return iofs.SkipAll
		}
		count++
		if w.pattern.Match(d.Name()) && !w.emit(path, inner) {
			cont = false
			return iofs.SkipAll
		}
		return nil
	})
	return cont
}

func (w *walker) emit(path, inner string) bool {
	return w.yield(scanner.MatchEvent{
		Path:      path,
		InnerPath: inner,
		Pattern:   w.req.Pattern,
		Pass:      w.req.Pass,
		Time:      now(),
	})
}

func (w *walker) debug(err error, path, msg string) {
	if !w.verbose {
		return
	}
	e := w.log.WithField("path", path)
	if err != nil {
		e = e.WithError(err)
	}
	e.Debug(msg)
}
