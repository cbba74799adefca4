package respawn

import (
	"context"
	"os"
	"slices"
	"strings"
	"time"

	snapio "github.com/dzonerzy/go-respawn/io"
)

// DefaultForbidFlag is the reserved token that suppresses any respawn.
const DefaultForbidFlag = "--no-respawning"

// DefaultDrainTimeout bounds how long a finished child's output may keep
// draining before the relay is abandoned.
const DefaultDrainTimeout = 5 * time.Second

// Respawner decides whether an argument vector needs its recognized flags
// moved in front of the program and, if so, relaunches it.
type Respawner struct {
	flags        FlagSet
	forbidFlag   string
	markChild    bool
	io           *snapio.IOManager
	log          *snapio.Logger
	env          []string
	drainTimeout time.Duration
	forward      []os.Signal
	shield       []os.Signal
}

// New creates a Respawner for the given recognized flags.
func New(flags ...string) *Respawner {
	return NewWithFlagSet(NewFlagSet(flags...))
}

// NewWithFlagSet creates a Respawner from a prepared FlagSet.
func NewWithFlagSet(flags FlagSet) *Respawner {
	return &Respawner{
		flags:        flags,
		forbidFlag:   DefaultForbidFlag,
		markChild:    true,
		drainTimeout: DefaultDrainTimeout,
		forward:      DefaultForwardSignals,
		shield:       DefaultShieldSignals,
	}
}

// Flags returns the recognized flag set.
func (r *Respawner) Flags() FlagSet { return r.flags }

// ForbidFlag sets the reserved token that suppresses respawning. An empty
// string disables the check.
func (r *Respawner) ForbidFlag(flag string) *Respawner { r.forbidFlag = flag; return r }

// MarkChild controls whether Run appends the forbid flag to the launch
// vector (default true), so a program that respawns itself sees a ready
// decision in the child. Disable it when the child is not respawn-aware.
func (r *Respawner) MarkChild(enable bool) *Respawner { r.markChild = enable; return r }

// IO returns the stream manager shared with spawned children.
func (r *Respawner) IO() *snapio.IOManager {
	if r.io == nil {
		r.io = snapio.New()
	}
	return r.io
}

// WithIO replaces the stream manager.
func (r *Respawner) WithIO(m *snapio.IOManager) *Respawner { r.io = m; return r }

// WithLogger sets the logger for decisions and child lifecycle events. A nil
// logger (the default) is silent.
func (r *Respawner) WithLogger(l *snapio.Logger) *Respawner { r.log = l; return r }

// Env sets an environment variable for spawned children, on top of the
// inherited environment.
func (r *Respawner) Env(key, value string) *Respawner {
	r.env = append(r.env, key+"="+value)
	return r
}

// DrainTimeout bounds output draining after the child exited.
func (r *Respawner) DrainTimeout(d time.Duration) *Respawner {
	if d <= 0 {
		d = DefaultDrainTimeout
	}
	r.drainTimeout = d
	return r
}

// ForwardSignals sets the signals relayed to a running child.
func (r *Respawner) ForwardSignals(sigs ...os.Signal) *Respawner { r.forward = sigs; return r }

// ShieldSignals sets the signals the parent absorbs while a child runs.
func (r *Respawner) ShieldSignals(sigs ...os.Signal) *Respawner { r.shield = sigs; return r }

// Needed reports whether argv is out of canonical order. A nil argv means
// the current process's arguments.
func (r *Respawner) Needed(argv []string) (bool, error) {
	if r.flags.Empty() {
		return false, ErrNoFlags
	}
	if argv == nil {
		argv = HostArgs()
	}
	return !Canonical(r.flags, argv), nil
}

// Execute spawns the reordered argv unconditionally. A nil argv means the
// current process's arguments.
func (r *Respawner) Execute(ctx context.Context, argv []string) (*Process, error) {
	if r.flags.Empty() {
		return nil, ErrNoFlags
	}
	if argv == nil {
		argv = HostArgs()
	}
	launch := Reorder(r.flags, argv)
	r.log.Debug("respawning: %s", strings.Join(launch, " "))
	return r.spawn(ctx, launch)
}

// Spawn starts argv exactly as given and bridges its lifecycle.
func (r *Respawner) Spawn(ctx context.Context, argv []string) (*Process, error) {
	return r.spawn(ctx, argv)
}

// Result is delivered once by Run.
type Result struct {
	// Ready is true when the current process should run the program
	// itself; false when a child was spawned to run it.
	Ready bool
	// Child is the spawned process, or Self when Ready.
	Child Child
	// Args is argv without recognized, forced and forbid flags.
	Args []string
	// Decision is the decision Run acted on.
	Decision Decision
}

// Run decides and, when a respawn is needed, spawns the canonical vector.
// Unlike Needed and Execute, a nil argv is a configuration error. forced
// flags make a respawn happen even for a canonical argv, unless the forbid
// flag is present.
func (r *Respawner) Run(ctx context.Context, argv []string, forced Forced) (Result, error) {
	d, err := r.Decide(argv, forced)
	if err != nil {
		return Result{}, err
	}
	for _, nm := range d.NearMisses {
		r.log.Debug("%s is not a recognized flag (did you mean %s?)", nm.Token, nm.Suggestion)
	}

	if !d.Needed {
		if d.Forbidden {
			r.log.Debug("respawn forbidden by %s", r.forbidFlag)
		}
		return Result{Ready: true, Child: newSelf(), Args: d.Clean, Decision: d}, nil
	}

	r.log.Debug("respawning: %s", strings.Join(d.Launch, " "))
	p, err := r.spawn(ctx, d.Launch)
	if err != nil {
		return Result{}, err
	}
	return Result{Ready: false, Child: p, Args: d.Clean, Decision: d}, nil
}

// HostArgs returns a copy of the current process's argument vector.
func HostArgs() []string { return slices.Clone(os.Args) }

// Needed reports whether argv needs its recognized flags moved. A nil argv
// means the current process's arguments.
func Needed(flags []string, argv []string) (bool, error) {
	return New(flags...).Needed(argv)
}

// Execute spawns the reordered argv, relaying output to the process's own
// standard streams.
func Execute(ctx context.Context, flags []string, argv []string) (*Process, error) {
	return New(flags...).Execute(ctx, argv)
}

// Run is the combined decide-and-spawn form; see Respawner.Run.
func Run(ctx context.Context, flags []string, argv []string, forced Forced) (Result, error) {
	return New(flags...).Run(ctx, argv, forced)
}

// Decide runs the respawn decision with default settings.
func Decide(flags []string, argv []string, forced Forced) (Decision, error) {
	return New(flags...).Decide(argv, forced)
}
