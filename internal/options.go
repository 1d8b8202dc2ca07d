package internal

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"time"
)

const (
	DefaultInterval = 60 * time.Second
	MaxPatterns     = 32
)

var (
	ErrNoPatterns      = errors.New("no patterns to search for")
	ErrTooManyPatterns = fmt.Errorf("too many patterns (max %d)", MaxPatterns)
	ErrEmptyPattern    = errors.New("pattern must not be empty")
	ErrBadInterval     = errors.New("scan interval must be a positive number of seconds")
)

// Options - daemon options from CLI and config file.
type Options struct {
	Roots      []string
	Patterns   []string
	Interval   time.Duration
	Verbose    bool
	Depth      int
	Archives   bool
	Respawn    bool
	LogFile    string
	Syslog     bool
	Foreground bool
	LockFile   string
}

// DefaultOptions returns options with the documented defaults.
func DefaultOptions() Options {
	return Options{
		Interval: DefaultInterval,
		Syslog:   true,
	}
}

// Validate checks invariants.
func (o *Options) Validate() error {
	if len(o.Patterns) == 0 {
		return ErrNoPatterns
	}
	if len(o.Patterns) > MaxPatterns {
		return ErrTooManyPatterns
	}
	for _, p := range o.Patterns {
		if p == "" {
			return ErrEmptyPattern
		}
	}
	if o.Interval <= 0 {
		return ErrBadInterval
	}
	if o.Depth < 0 {
		return errors.New("depth must be >= 0")
	}
	return nil
}

// Prepare drops duplicate patterns and fills default roots.
func (o *Options) Prepare() {
	o.Patterns = dedup(o.Patterns)
	if len(o.Roots) == 0 {
		o.Roots = DetectRoots(runtime.GOOS)
	}
	o.Roots = dedup(o.Roots)
}

func dedup(s []string) []string {
	if len(s) == 0 {
		return s
	}
	seen := make(map[string]struct{}, len(s))
	out := s[:0:0]
	for _, x := range s {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}

// SplitArgs separates positional arguments into patterns and the legacy
// trailing interval ("scand log tmp 30"). Only the last argument may be the
// interval, and only when it is all digits.
func SplitArgs(args []string) (patterns []string, interval time.Duration, err error) {
	if len(args) == 0 {
		return nil, 0, nil
	}
	last := args[len(args)-1]
	if !isDigits(last) {
		return args, 0, nil
	}
	n, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %q", ErrBadInterval, last)
	}
	interval, err = IntervalSeconds(n)
	if err != nil {
		return nil, 0, err
	}
	return args[:len(args)-1], interval, nil
}

// IntervalSeconds converts a positive number of seconds to a Duration,
// rejecting values that do not fit.
func IntervalSeconds(n int64) (time.Duration, error) {
	if n <= 0 || n > math.MaxInt64/int64(time.Second) {
		return 0, fmt.Errorf("%w: %d", ErrBadInterval, n)
	}
	return time.Duration(n) * time.Second, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
