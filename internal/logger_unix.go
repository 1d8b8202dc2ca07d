//go:build !windows

package internal

import (
	"log/syslog"

	"github.com/sirupsen/logrus"
	lsyslog "github.com/sirupsen/logrus/hooks/syslog"
)

func newSyslogHook(tag string) (logrus.Hook, error) {
	return lsyslog.NewSyslogHook("", "", syslog.LOG_INFO|syslog.LOG_USER, tag)
}
