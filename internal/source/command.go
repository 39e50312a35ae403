package source

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
)

// StartCommand runs name with args and returns its stdout and stderr as
// two linked sources. The process is reaped once both pipes are drained.
func StartCommand(outID, errID int, name string, args []string, title string, opts Options) (*File, *File, error) {
	cmd := exec.Command(name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start %s: %w", name, err)
	}

	if title == "" {
		title = name
	}
	out := newFile(outID, title, KindSubprocessOut, opts)
	errf := newFile(errID, title+" (stderr)", KindSubprocessErr, opts)
	out.log.Debug("subprocess started", "pid", cmd.Process.Pid)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		run(out, stdout, opts)
	}()
	go func() {
		defer wg.Done()
		run(errf, stderr, opts)
	}()
	go func() {
		wg.Wait()
		if err := cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				out.log.Info("subprocess exited", "code", exitErr.ExitCode())
				return
			}
			out.log.Warn("subprocess wait failed", "err", err)
			return
		}
		out.log.Debug("subprocess exited", "code", 0)
	}()
	return out, errf, nil
}
