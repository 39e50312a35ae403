//go:build windows

package app

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// flushConsoleInput drops keystrokes typed while the inputs were loading
// so they do not reach the pager as commands.
func flushConsoleInput() error {
	handle, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE)
	if err != nil {
		return fmt.Errorf("console input handle: %w", err)
	}
	if err := windows.FlushConsoleInputBuffer(handle); err != nil {
		return fmt.Errorf("flush console input: %w", err)
	}
	return nil
}
