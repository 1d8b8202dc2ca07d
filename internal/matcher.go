package internal

import (
	"bufio"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Pattern is a case-sensitive substring matched against entry base names.
type Pattern string

func (p Pattern) Match(name string) bool { return strings.Contains(name, string(p)) }

// LoadPatterns reads a patterns file, one fragment per line.
// Blank lines and lines starting with '#' are ignored; surrounding
// whitespace is trimmed.
func LoadPatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ps []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ps = append(ps, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	logrus.Debugf("Loaded %d patterns from %s", len(ps), path)
	return ps, nil
}
