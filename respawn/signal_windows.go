//go:build windows

package respawn

import (
	"errors"
	"os"
	"strconv"
	"syscall"
)

// DefaultForwardSignals are relayed from the parent to a running child.
// Windows only delivers interrupts to console process groups, which the child
// already belongs to.
var DefaultForwardSignals = []os.Signal{}

// DefaultShieldSignals are caught by the parent but not relayed.
var DefaultShieldSignals = []os.Signal{os.Interrupt}

func signalName(sig syscall.Signal) string {
	return "SIG" + strconv.Itoa(int(sig))
}

// ParseSignal is not supported on windows.
func ParseSignal(string) (syscall.Signal, bool) { return 0, false }

// raise is not supported; Reproduce falls back to the 128+signal exit code.
func raise(syscall.Signal) error {
	return errors.New("raising signals is not supported on windows")
}
