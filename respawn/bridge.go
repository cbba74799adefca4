package respawn

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	snapio "github.com/dzonerzy/go-respawn/io"
	"github.com/dzonerzy/go-respawn/internal/pool"
)

const relayBufferSize = 32 * 1024

// Child is the process running the program once a decision was made: either
// a respawned child or the current process itself.
type Child interface {
	// Pid returns the operating system process id.
	Pid() int
	// Respawned reports whether this is a separately spawned child.
	Respawned() bool
	// Signal sends sig to the process.
	Signal(sig os.Signal) error
	// Done is closed once the child's output drained and its Termination
	// was recorded. It is never closed for the current process.
	Done() <-chan struct{}
	// Termination returns how the child ended, once Done is closed.
	Termination() (Termination, bool)
}

// Self stands in for the current process when no respawn was needed.
type Self struct {
	proc *os.Process
}

func newSelf() *Self {
	p, _ := os.FindProcess(os.Getpid())
	return &Self{proc: p}
}

func (s *Self) Pid() int                         { return s.proc.Pid }
func (s *Self) Respawned() bool                  { return false }
func (s *Self) Signal(sig os.Signal) error       { return s.proc.Signal(sig) }
func (s *Self) Done() <-chan struct{}            { return nil }
func (s *Self) Termination() (Termination, bool) { return Termination{}, false }

// BridgeState is the lifecycle position of a spawned child.
type BridgeState int32

const (
	// StateRelaying: the child runs and its output is being copied.
	StateRelaying BridgeState = iota
	// StateDrained: the child exited and its output streams reached EOF
	// (or were abandoned after the drain timeout).
	StateDrained
	// StateTerminated: the Termination is recorded and Done is closed.
	StateTerminated
)

func (s BridgeState) String() string {
	switch s {
	case StateRelaying:
		return "relaying"
	case StateDrained:
		return "drained"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Process is a spawned child whose standard streams are relayed to the
// parent's and whose termination can be reproduced by the parent.
type Process struct {
	argv  []string
	cmd   *exec.Cmd
	io    *snapio.IOManager
	log   *snapio.Logger
	state atomic.Int32

	drainTimeout time.Duration
	readers      []*os.File

	done chan struct{}
	once sync.Once
	term Termination
	err  error
}

// spawn starts argv and returns as soon as the child runs. ctx only guards
// the start: a running child is never killed on cancellation.
//
//nolint:funlen // Process start covers resolution, env, stream and signal wiring.
func (r *Respawner) spawn(ctx context.Context, argv []string) (*Process, error) {
	if len(argv) == 0 {
		return nil, ErrNoExecutable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bin := argv[0]
	if !filepath.IsAbs(bin) {
		if p, err := exec.LookPath(bin); err == nil {
			bin = p
		}
	}
	//nolint:gosec // launching the caller's own vector is the point
	cmd := exec.Command(bin, argv[1:]...)
	cmd.Args[0] = argv[0]
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	cmd.WaitDelay = r.drainTimeout

	iom := r.IO()
	if f, ok := iom.InFile(); ok {
		cmd.Stdin = f
	} else if in := iom.In(); in != nil {
		cmd.Stdin = in
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, spawnError(argv, err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, spawnError(argv, err)
	}
	cmd.Stdout = outW
	cmd.Stderr = errW

	// Anything the parent printed before deciding goes out ahead of the child.
	if err := iom.Flush(); err != nil {
		r.log.Debug("flush before spawn: %v", err)
	}

	sigs := make(chan os.Signal, 4)
	if len(r.forward)+len(r.shield) > 0 {
		signal.Notify(sigs, append(append([]os.Signal{}, r.forward...), r.shield...)...)
	}

	if err := cmd.Start(); err != nil {
		signal.Stop(sigs)
		for _, f := range []*os.File{outR, outW, errR, errW} {
			f.Close()
		}
		return nil, spawnError(argv, err)
	}
	// The child holds its own copies of the write ends.
	outW.Close()
	errW.Close()

	p := &Process{
		argv:         argv,
		cmd:          cmd,
		io:           iom,
		log:          r.log,
		drainTimeout: r.drainTimeout,
		readers:      []*os.File{outR, errR},
		done:         make(chan struct{}),
	}
	r.log.Debug("spawned pid %d: %v", cmd.Process.Pid, argv)

	var g errgroup.Group
	g.Go(func() error { return p.relay("stdout", outR, iom.Out()) })
	g.Go(func() error { return p.relay("stderr", errR, iom.Err()) })
	relayed := make(chan error, 1)
	go func() { relayed <- g.Wait() }()

	go p.forwardSignals(sigs, r.forward)
	go p.watch(relayed, sigs)
	return p, nil
}

// relay copies r to w until EOF. A write error is reported but reading
// continues into io.Discard so the child never blocks on a full pipe.
func (p *Process) relay(stream string, r *os.File, w io.Writer) error {
	bufp := pool.GetBuffer(relayBufferSize)
	defer pool.PutBuffer(bufp)
	buf := (*bufp)[:cap(*bufp)]

	var writeErr error
	for {
		n, err := r.Read(buf)
		if n > 0 && writeErr == nil && w != nil {
			p.io.Lock()
			_, writeErr = w.Write(buf[:n])
			p.io.Unlock()
			if writeErr != nil {
				p.log.Warning("relay %s: %v", stream, writeErr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			if writeErr != nil {
				return relayError(stream, writeErr)
			}
			if err != nil {
				return relayError(stream, err)
			}
			return nil
		}
	}
}

func (p *Process) forwardSignals(sigs <-chan os.Signal, forward []os.Signal) {
	for {
		select {
		case sig := <-sigs:
			if !containsSignal(forward, sig) {
				p.log.Debug("parent received %v, waiting for child", sig)
				continue
			}
			p.log.Debug("forwarding %v to pid %d", sig, p.Pid())
			if err := p.cmd.Process.Signal(sig); err != nil {
				p.log.Debug("forward %v: %v", sig, err)
			}
		case <-p.done:
			return
		}
	}
}

// watch drives relaying -> drained -> terminated.
func (p *Process) watch(relayed <-chan error, sigs chan os.Signal) {
	waitErr := p.cmd.Wait()

	var relayErr error
	timer := time.NewTimer(p.drainTimeout)
	select {
	case relayErr = <-relayed:
		timer.Stop()
	case <-timer.C:
		// A descendant still holds the pipes open; stop waiting for it.
		for _, f := range p.readers {
			f.Close()
		}
		<-relayed
		relayErr = NewError(ErrorTypeRelay, "child output did not drain").
			WithContext("timeout", p.drainTimeout.String())
	}
	for _, f := range p.readers {
		f.Close()
	}
	p.state.Store(int32(StateDrained))

	var term Termination
	if ps := p.cmd.ProcessState; ps != nil {
		term = terminationFromState(ps)
	} else {
		term = Termination{ExitCode: 1}
		relayErr = errors.Join(relayErr, NewError(ErrorTypeInternal, "child state unavailable").WithCause(waitErr))
	}
	signal.Stop(sigs)
	p.finish(term, relayErr)
}

func (p *Process) finish(term Termination, err error) {
	p.once.Do(func() {
		p.term = term
		p.err = err
		p.state.Store(int32(StateTerminated))
		p.log.Debug("pid %d ended: %s", p.Pid(), term)
		close(p.done)
	})
}

func (p *Process) Pid() int                   { return p.cmd.Process.Pid }
func (p *Process) Respawned() bool            { return true }
func (p *Process) Signal(sig os.Signal) error { return p.cmd.Process.Signal(sig) }
func (p *Process) Done() <-chan struct{}      { return p.done }

// Args returns the vector the child was started with.
func (p *Process) Args() []string { return append([]string(nil), p.argv...) }

// State returns the current lifecycle state.
func (p *Process) State() BridgeState { return BridgeState(p.state.Load()) }

// Termination returns how the child ended; ok is false while it runs.
func (p *Process) Termination() (Termination, bool) {
	select {
	case <-p.done:
		return p.term, true
	default:
		return Termination{}, false
	}
}

// Wait blocks until the child ended and its output drained. The error, if
// any, is a relay failure; it never changes the Termination.
func (p *Process) Wait() (Termination, error) {
	<-p.done
	return p.term, p.err
}

// Exit waits for the child, flushes the parent's output and then ends the
// parent with the child's exit code or signal. It does not return.
func (p *Process) Exit() {
	term, err := p.Wait()
	if err != nil {
		p.log.Warning("%v", err)
	}
	term.Reproduce(p.io.Flush)
}

func containsSignal(list []os.Signal, sig os.Signal) bool {
	for _, s := range list {
		if s == sig {
			return true
		}
	}
	return false
}
