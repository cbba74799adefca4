//go:build windows

package snapio

import (
	"golang.org/x/sys/windows"
)

// enableVirtualTerminal turns on ANSI processing for the stdout console so
// colored log prefixes render instead of printing raw escapes.
func enableVirtualTerminal() bool {
	h, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil || h == windows.InvalidHandle {
		return false
	}
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return true
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
