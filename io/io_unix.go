//go:build !windows

package snapio

// ANSI sequences are always interpreted by unix terminals.
func enableVirtualTerminal() bool { return true }
