//go:build !windows

package display

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/kk-code-lab/spage/internal/event"
)

// suspend hands the terminal back to the shell and stops the process. The
// screen is restored when SIGCONT arrives.
func (d *Display) suspend() {
	if err := d.term.Suspend(); err != nil {
		d.state.Message = "cannot suspend: " + err.Error()
		return
	}
	d.resuming = true
	// Stop only this process, not the process group, so a wrapping shell
	// keeps job control.
	if err := unix.Kill(unix.Getpid(), unix.SIGTSTP); err != nil {
		d.log.Error("suspend failed", "err", err)
		d.events.Send(event.Interrupt{Reason: "resume"})
	}
}

// watchResume forwards SIGCONT to the event stream until the returned stop
// function is called.
func (d *Display) watchResume() func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGCONT)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				d.events.Send(event.Interrupt{Reason: "resume"})
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
