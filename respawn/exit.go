package respawn

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// ExitError is a sentinel used to request a specific exit code, typically the
// exit code of a child launched through the bridge.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeDefaults holds common default codes.
type ExitCodeDefaults struct {
	Success         int // default: 0
	GeneralError    int // default: 1
	MisusageError   int // default: 2
	NotFoundError   int // default: 127
	PermissionError int // default: 126
}

func defaultExitDefaults() ExitCodeDefaults {
	return ExitCodeDefaults{Success: 0, GeneralError: 1, MisusageError: 2, NotFoundError: 127, PermissionError: 126}
}

// ExitCodeManager maps errors and categories to process exit codes.
type ExitCodeManager struct {
	codesByType map[ErrorType]int
	defaults    ExitCodeDefaults
}

// NewExitCodeManager returns a manager with the conventional mappings:
// configuration errors are misusage, spawn failures follow the shell's
// 127/126 convention.
func NewExitCodeManager() *ExitCodeManager {
	m := &ExitCodeManager{
		codesByType: make(map[ErrorType]int),
		defaults:    defaultExitDefaults(),
	}
	m.codesByType[ErrorTypeConfiguration] = m.defaults.MisusageError
	m.codesByType[ErrorTypeMalformedOverride] = m.defaults.MisusageError
	return m
}

// Define overrides the exit code used for an error category.
func (e *ExitCodeManager) Define(typ ErrorType, code int) *ExitCodeManager {
	e.codesByType[typ] = code
	return e
}

// Default replaces the manager's default codes.
func (e *ExitCodeManager) Default(d ExitCodeDefaults) *ExitCodeManager { e.defaults = d; return e }

// Resolve converts an error to an exit code.
// Precedence:
//  1. ExitError (requested code)
//  2. category mapping (Define)
//  3. spawn failures: not found / permission denied
//  4. Default codes
func (e *ExitCodeManager) Resolve(err error) int {
	if err == nil {
		return e.defaults.Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var rerr *Error
	if errors.As(err, &rerr) {
		if code, ok := e.codesByType[rerr.Type]; ok {
			return code
		}
		if rerr.Type == ErrorTypeSpawn {
			switch {
			case isNotFound(rerr.Cause):
				return e.defaults.NotFoundError
			case errors.Is(rerr.Cause, os.ErrPermission):
				return e.defaults.PermissionError
			}
		}
	}
	return e.defaults.GeneralError
}

// Termination is how a child process ended: either an exit code or the
// signal that killed it.
type Termination struct {
	ExitCode int
	Signal   syscall.Signal
}

// Signaled reports whether the child was terminated by a signal.
func (t Termination) Signaled() bool { return t.Signal != 0 }

// SignalName returns the conventional name ("SIGHUP") of the terminating
// signal, or "" when the child exited normally.
func (t Termination) SignalName() string {
	if !t.Signaled() {
		return ""
	}
	return signalName(t.Signal)
}

// Code returns the exit code, or 128+signal for a signaled child, which is
// how a shell would report it.
func (t Termination) Code() int {
	if t.Signaled() {
		return 128 + int(t.Signal)
	}
	return t.ExitCode
}

func (t Termination) String() string {
	if t.Signaled() {
		return "signal " + t.SignalName()
	}
	return fmt.Sprintf("exit code %d", t.ExitCode)
}

func terminationFromState(ps *os.ProcessState) Termination {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Termination{ExitCode: -1, Signal: ws.Signal()}
	}
	return Termination{ExitCode: ps.ExitCode()}
}

// test hooks
var (
	exitFunc    = os.Exit
	raiseFunc   = raise
	signalGrace = 2 * time.Second
)

// Reproduce makes the current process end the way the child did. flush runs
// first so output relayed from the child is committed before the process
// goes away. A signal is re-raised against the current process with default
// handling restored; when the signal does not terminate the process (it is
// ignored or handled by the runtime) the process exits with Code instead.
func (t Termination) Reproduce(flush func() error) {
	if flush != nil {
		_ = flush()
	}
	if t.Signaled() {
		if err := raiseFunc(t.Signal); err == nil {
			time.Sleep(signalGrace)
		}
		exitFunc(t.Code())
		return
	}
	exitFunc(t.ExitCode)
}
