//go:build windows

package internal

import (
	"errors"

	"github.com/sirupsen/logrus"
)

func newSyslogHook(string) (logrus.Hook, error) {
	return nil, errors.New("syslog is not available on windows")
}
