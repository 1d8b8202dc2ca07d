package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOptionsFile reads a YAML config file on top of DefaultOptions.
//
//	patterns: [log, tmp]
//	interval: 30        # seconds
//	roots: [/var, /home]
//	depth: 0
//	archives: false
//	respawn: false
//	verbose: false
//	syslog: true
//	logfile: /var/log/scand.log
//	lock_file: /run/scand.pid
func LoadOptionsFile(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config file: %w", err)
	}

	type yamlConfig struct {
		Patterns []string `yaml:"patterns"`
		Interval int64    `yaml:"interval"`
		Roots    []string `yaml:"roots"`
		Depth    int      `yaml:"depth"`
		Archives bool     `yaml:"archives"`
		Respawn  bool     `yaml:"respawn"`
		Verbose  bool     `yaml:"verbose"`
		Syslog   *bool    `yaml:"syslog"`
		LogFile  string   `yaml:"logfile"`
		LockFile string   `yaml:"lock_file"`
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return opts, fmt.Errorf("parse config file: %w", err)
	}

	opts.Patterns = yc.Patterns
	opts.Roots = yc.Roots
	opts.Depth = yc.Depth
	opts.Archives = yc.Archives
	opts.Respawn = yc.Respawn
	opts.Verbose = yc.Verbose
	opts.LogFile = yc.LogFile
	opts.LockFile = yc.LockFile
	if yc.Syslog != nil {
		opts.Syslog = *yc.Syslog
	}
	if yc.Interval != 0 {
		if opts.Interval, err = IntervalSeconds(yc.Interval); err != nil {
			return opts, err
		}
	}
	return opts, nil
}
