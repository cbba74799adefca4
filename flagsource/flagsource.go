// Package flagsource supplies the recognized-flag lists a Respawner is built
// from: fixed lists, flag files, the output of a launcher's own option dump,
// and cached or merged combinations of those.
package flagsource

import (
	"context"
	"strings"

	"github.com/dzonerzy/go-respawn/respawn"
)

// Provider yields a list of recognized flag names.
type Provider interface {
	Flags(ctx context.Context) ([]string, error)
}

// Keyed is implemented by providers with a stable identity. Cached uses the
// key to share results between providers that would read the same source.
type Keyed interface {
	Key() string
}

type static []string

// Static returns a provider for a fixed list of flags.
func Static(flags ...string) Provider {
	return static(append([]string(nil), flags...))
}

func (s static) Flags(context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}

func (s static) Key() string { return "static:" + strings.Join(s, ",") }

type merged []Provider

// Merge returns the ordered union of the providers' flags. A flag seen twice,
// in either separator spelling, is kept at its first position; inline values
// are dropped. The first provider error aborts the merge.
func Merge(providers ...Provider) Provider {
	return merged(append([]Provider(nil), providers...))
}

func (m merged) Flags(ctx context.Context) ([]string, error) {
	var all []string
	for _, p := range m {
		flags, err := p.Flags(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, flags...)
	}
	return respawn.NewFlagSet(all...).Flags(), nil
}

func (m merged) Key() string {
	keys := make([]string, 0, len(m))
	for _, p := range m {
		k, ok := p.(Keyed)
		if !ok {
			return ""
		}
		keys = append(keys, k.Key())
	}
	return "merge:[" + strings.Join(keys, ";") + "]"
}

// Load resolves p into a FlagSet. A provider that yields no flag-shaped entry
// is reported as respawn.ErrNoFlags.
func Load(ctx context.Context, p Provider) (respawn.FlagSet, error) {
	flags, err := p.Flags(ctx)
	if err != nil {
		return respawn.FlagSet{}, err
	}
	set := respawn.NewFlagSet(flags...)
	if set.Empty() {
		return respawn.FlagSet{}, respawn.ErrNoFlags
	}
	return set, nil
}
