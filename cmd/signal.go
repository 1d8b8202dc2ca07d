package main

import (
	"ScanDaemon/internal"
	"context"
	"os/signal"

	"github.com/sirupsen/logrus"
)

// relaySignals turns operator signals into supervisor notifications until
// ctx is done. The channel has room for one signal; bursts coalesce.
func relaySignals(ctx context.Context, sup *internal.Supervisor) {
	ch := controlSignals()
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			ctl, ok := toControl(sig)
			if !ok {
				continue
			}
			logrus.WithField("signal", sig).Debugf("Operator requested %s", ctl)
			switch ctl {
			case internal.SignalRestart:
				sup.Restart()
			case internal.SignalStop:
				sup.Stop()
			}
		}
	}
}
