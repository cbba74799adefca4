package respawn

import (
	"fmt"
	"slices"
)

// ForceKind tags the variant held by a Forced value.
type ForceKind int

const (
	ForceNone ForceKind = iota
	ForceSingle
	ForceMany
)

// Forced holds flags that must be injected into the launch vector, forcing a
// respawn even when the argument vector is already canonical. Build it with
// NoForce, ForceFlag, ForceFlags or ParseForced; the zero value is NoForce.
type Forced struct {
	kind  ForceKind
	flags []string
}

// NoForce requests no forced flags.
func NoForce() Forced { return Forced{} }

// ForceFlag forces a single flag. The flag may carry an inline value
// ("--stack-size=2048"). A token that is not flag-shaped yields NoForce.
func ForceFlag(flag string) Forced {
	if !IsFlag(flag) {
		return Forced{}
	}
	return Forced{kind: ForceSingle, flags: []string{flag}}
}

// ForceFlags forces an ordered list of flags. An empty list, or a list with
// any token that is not flag-shaped, yields NoForce.
func ForceFlags(flags ...string) Forced {
	if len(flags) == 0 {
		return Forced{}
	}
	for _, f := range flags {
		if !IsFlag(f) {
			return Forced{}
		}
	}
	return Forced{kind: ForceMany, flags: slices.Clone(flags)}
}

// ParseForced converts a loosely typed override, as read from configuration,
// into a Forced value. A string becomes ForceFlag; []string and []any of
// strings become ForceFlags. Any other shape is a malformed override: the
// result is NoForce and the returned error describes what was ignored. The
// error is informational; callers proceed with the NoForce value.
func ParseForced(v any) (Forced, error) {
	switch t := v.(type) {
	case nil:
		return Forced{}, nil
	case Forced:
		return t, nil
	case string:
		f := ForceFlag(t)
		if f.None() {
			return f, malformed(v)
		}
		return f, nil
	case []string:
		f := ForceFlags(t...)
		if f.None() && len(t) > 0 {
			return f, malformed(v)
		}
		return f, nil
	case []any:
		flags := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return Forced{}, malformed(v)
			}
			flags = append(flags, s)
		}
		return ParseForced(flags)
	default:
		return Forced{}, malformed(v)
	}
}

func malformed(v any) error {
	return NewError(ErrorTypeMalformedOverride, fmt.Sprintf("ignoring forced flags %#v", v)).
		WithContext("value", v)
}

// Kind returns which variant f holds.
func (f Forced) Kind() ForceKind { return f.kind }

// None reports whether no flags are forced.
func (f Forced) None() bool { return f.kind == ForceNone }

// Flags returns the forced flags in order.
func (f Forced) Flags() []string { return slices.Clone(f.flags) }
