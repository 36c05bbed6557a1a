//go:build windows

package launcher

import (
	"log/slog"
	"os"
	"os/signal"
)

// signalRelay keeps the launcher alive while koi runs. Console control
// events go to every process attached to the console, koi included, so the
// launcher only consumes its own copy and keeps waiting. There is no
// portable way to relay a termination request to another process here.
type signalRelay struct {
	signals chan os.Signal
	done    chan struct{}
}

func newSignalRelay(forward bool, logger *slog.Logger) *signalRelay {
	r := &signalRelay{
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}

	if forward {
		logger.Debug("signal forwarding unavailable on windows")
	}

	signal.Notify(r.signals, os.Interrupt)

	go func() {
		for {
			select {
			case <-r.done:
				return
			case <-r.signals:
			}
		}
	}()

	return r
}

func (r *signalRelay) attach(*os.Process) {}

func (r *signalRelay) stop() {
	signal.Stop(r.signals)
	close(r.done)
}
