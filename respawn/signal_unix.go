//go:build !windows

package respawn

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// DefaultForwardSignals are relayed from the parent to a running child.
var DefaultForwardSignals = []os.Signal{unix.SIGTERM, unix.SIGHUP, unix.SIGUSR1, unix.SIGUSR2}

// DefaultShieldSignals are caught by the parent but not relayed. The terminal
// already delivers them to the whole foreground process group, child
// included; the parent only has to survive them to report the child's exit.
var DefaultShieldSignals = []os.Signal{unix.SIGINT, unix.SIGQUIT}

func signalName(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return "SIG" + strconv.Itoa(int(sig))
}

// ParseSignal maps a name such as "SIGHUP" or "HUP" to its signal.
func ParseSignal(name string) (syscall.Signal, bool) {
	if sig := unix.SignalNum(name); sig != 0 {
		return sig, true
	}
	if sig := unix.SignalNum("SIG" + name); sig != 0 {
		return sig, true
	}
	return 0, false
}

// raise delivers sig to the current process with the runtime's default
// handling for it restored.
func raise(sig syscall.Signal) error {
	signal.Reset(sig)
	return unix.Kill(unix.Getpid(), sig)
}
