package respawn

import (
	"strings"

	"github.com/dzonerzy/go-respawn/internal/fuzzy"
	"github.com/dzonerzy/go-respawn/internal/intern"
)

// FlagSet is an immutable set of recognized launcher flags. Names are stored
// normalized (every '_' folded to '-') so "--use_strict" and "--use-strict"
// are the same flag. The zero value is an empty set.
type FlagSet struct {
	names map[string]struct{}
	list  []string
}

// NewFlagSet builds a FlagSet from flag names in the order given. Entries may
// carry an inline value ("--stack-size=2048"); only the name part is kept.
// Duplicates and entries that are not flag-shaped are ignored.
func NewFlagSet(flags ...string) FlagSet {
	s := FlagSet{names: make(map[string]struct{}, len(flags))}
	for _, f := range flags {
		n, ok := normalizeFlag(f)
		if !ok {
			continue
		}
		if _, dup := s.names[n]; dup {
			continue
		}
		n = intern.Intern(n)
		s.names[n] = struct{}{}
		s.list = append(s.list, FlagName(f))
	}
	return s
}

// Len returns the number of distinct flags in the set.
func (s FlagSet) Len() int { return len(s.names) }

// Empty reports whether the set has no flags.
func (s FlagSet) Empty() bool { return len(s.names) == 0 }

// Flags returns the flag names in insertion order, as given.
func (s FlagSet) Flags() []string {
	out := make([]string, len(s.list))
	copy(out, s.list)
	return out
}

// With returns a new set holding s plus flags. s is unchanged.
func (s FlagSet) With(flags ...string) FlagSet {
	all := make([]string, 0, len(s.list)+len(flags))
	all = append(all, s.list...)
	all = append(all, flags...)
	return NewFlagSet(all...)
}

// Matches reports whether token names a flag in the set. An inline value is
// ignored; separators are compared after normalization; the whole name must
// match.
func (s FlagSet) Matches(token string) bool {
	if len(s.names) == 0 {
		return false
	}
	n, ok := normalizeFlag(token)
	if !ok {
		return false
	}
	_, found := s.names[n]
	return found
}

// Suggest returns the recognized flag closest to token when token is
// flag-shaped, unmatched, and within one edit of a recognized name.
func (s FlagSet) Suggest(token string) string {
	if s.Matches(token) || !IsFlag(token) {
		return ""
	}
	return fuzzy.FindBestFlag(FlagName(token), s.list, 1)
}

// Matches reports whether token names one of flags.
func Matches(token string, flags ...string) bool {
	return NewFlagSet(flags...).Matches(token)
}

// IsFlag reports whether token is flag-shaped: one or two leading dashes
// followed by a name. The bare "-" and "--" tokens are not flags.
func IsFlag(token string) bool {
	_, ok := normalizeFlag(token)
	return ok
}

// FlagName returns token without its inline "=value".
func FlagName(token string) string {
	if i := strings.IndexByte(token, '='); i >= 0 {
		return token[:i]
	}
	return token
}

func normalizeFlag(token string) (string, bool) {
	name := FlagName(token)
	if !strings.HasPrefix(name, "-") {
		return "", false
	}
	body := strings.TrimLeft(name, "-")
	if body == "" || len(name)-len(body) > 2 {
		return "", false
	}
	return strings.ReplaceAll(name, "_", "-"), true
}
