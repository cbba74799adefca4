package snapio

import (
	stdio "io"
	"os"
	"sync"

	"golang.org/x/term"
)

// IOManager binds the standard streams a respawning process shares with its
// child. The parent's own output and the relayed child output go through the
// same writers, so Flush must run before a child starts and before the parent
// terminates.
type IOManager struct {
	in  stdio.Reader
	out stdio.Writer
	err stdio.Writer

	forceColor bool
	noColor    bool

	mu sync.Mutex
}

// New returns a manager bound to process stdio
func New() *IOManager {
	enableVirtualTerminal()
	return &IOManager{in: os.Stdin, out: os.Stdout, err: os.Stderr}
}

// WithIn sets the input reader used by the manager and returns the manager for chaining.
func (m *IOManager) WithIn(r stdio.Reader) *IOManager { m.in = r; return m }

// WithOut sets the standard output writer and returns the manager for chaining.
func (m *IOManager) WithOut(w stdio.Writer) *IOManager { m.out = w; return m }

// WithErr sets the standard error writer and returns the manager for chaining.
func (m *IOManager) WithErr(w stdio.Writer) *IOManager { m.err = w; return m }

// ForceColor forces color output on, regardless of environment.
func (m *IOManager) ForceColor() *IOManager { m.forceColor = true; m.noColor = false; return m }

// NoColor disables color output, regardless of environment.
func (m *IOManager) NoColor() *IOManager { m.noColor = true; m.forceColor = false; return m }

// In returns the configured input reader.
func (m *IOManager) In() stdio.Reader { return m.in }

// Out returns the configured standard output writer.
func (m *IOManager) Out() stdio.Writer { return m.out }

// Err returns the configured standard error writer.
func (m *IOManager) Err() stdio.Writer { return m.err }

// InFile returns the input as an *os.File when it is one, so a child can
// inherit the descriptor directly.
func (m *IOManager) InFile() (*os.File, bool) {
	f, ok := m.in.(*os.File)
	return f, ok
}

// IsTTY reports whether the configured stdout is a terminal.
func (m *IOManager) IsTTY() bool { return isTerminal(m.out) }

// SupportsColor reports whether ANSI color may be written to stdout.
func (m *IOManager) SupportsColor() bool {
	if m.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if m.forceColor || os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if !m.IsTTY() {
		return false
	}
	t := os.Getenv("TERM")
	return t != "dumb"
}

// Colorize wraps s with the given ANSI SGR code (e.g., "31" for red) and a
// trailing reset. If color is not supported, it returns s unchanged.
func (m *IOManager) Colorize(s, code string) string {
	if !m.SupportsColor() || code == "" {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// Lock serializes writers that must not interleave a single logical write,
// such as a log line and relayed child output.
func (m *IOManager) Lock()   { m.mu.Lock() }
func (m *IOManager) Unlock() { m.mu.Unlock() }

// Flush commits buffered output on both output streams. Writers that are
// *os.File are synced; writers with a Flush method (bufio.Writer) are flushed.
// Sync errors on pipes and terminals are ignored since those cannot be synced.
func (m *IOManager) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := flushWriter(m.out); err != nil {
		return err
	}
	return flushWriter(m.err)
}

type flusher interface{ Flush() error }

func flushWriter(w stdio.Writer) error {
	switch v := w.(type) {
	case flusher:
		return v.Flush()
	case *os.File:
		if err := v.Sync(); err != nil && !isUnsyncable(v) {
			return err
		}
	}
	return nil
}

// isUnsyncable reports files whose Sync always fails (pipes, ttys, char devices).
func isUnsyncable(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return true
	}
	return fi.Mode()&(os.ModeNamedPipe|os.ModeCharDevice|os.ModeSocket) != 0
}

func isTerminal(w stdio.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
