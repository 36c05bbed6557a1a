//go:build !windows

package launcher

import (
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// signalRelay keeps the launcher alive while koi runs.
//
// koi shares the launcher's process group and foreground terminal, so
// Ctrl+C and Ctrl+\ already reach it from the terminal; the launcher only
// swallows its own copy. SIGTERM and SIGHUP sent to the launcher alone are
// relayed to koi. Caught signals are reset to default on exec, so koi does
// not inherit this handling.
type signalRelay struct {
	logger  *slog.Logger
	signals chan os.Signal
	procs   chan *os.Process
	done    chan struct{}
}

func newSignalRelay(forward bool, logger *slog.Logger) *signalRelay {
	r := &signalRelay{
		logger:  logger,
		signals: make(chan os.Signal, 4),
		procs:   make(chan *os.Process, 1),
		done:    make(chan struct{}),
	}

	watched := []os.Signal{unix.SIGINT, unix.SIGQUIT}
	if forward {
		watched = append(watched, unix.SIGTERM, unix.SIGHUP)
	}

	signal.Notify(r.signals, watched...)

	go r.loop()

	return r
}

// attach hands the started child to the relay. Signals that arrived
// between registration and start are delivered now.
func (r *signalRelay) attach(p *os.Process) {
	r.procs <- p
}

func (r *signalRelay) stop() {
	signal.Stop(r.signals)
	close(r.done)
}

func (r *signalRelay) loop() {
	var (
		child   *os.Process
		pending []unix.Signal
	)

	for {
		select {
		case <-r.done:
			return
		case child = <-r.procs:
			for _, sig := range pending {
				r.deliver(child, sig)
			}

			pending = nil
		case received := <-r.signals:
			sig, ok := received.(unix.Signal)
			if !ok {
				continue
			}

			switch sig {
			case unix.SIGINT, unix.SIGQUIT:
				r.logger.Debug("terminal signal left to koi", slog.String("signal", sig.String()))
			default:
				if child == nil {
					pending = append(pending, sig)
					continue
				}

				r.deliver(child, sig)
			}
		}
	}
}

// deliver signals through the process handle rather than a raw pid, so a
// child that has already been reaped cannot be confused with a reused pid.
func (r *signalRelay) deliver(child *os.Process, sig unix.Signal) {
	if err := child.Signal(sig); err != nil {
		// os.ErrProcessDone: koi already exited and Wait has returned or is
		// about to.
		r.logger.Debug("signal forward failed",
			slog.String("signal", sig.String()),
			slog.String("error", err.Error()),
		)

		return
	}

	r.logger.Info("signal forwarded to koi",
		slog.String("signal", sig.String()),
		slog.Int("koi.pid", child.Pid),
	)
}
