package respawn

import (
	"slices"
)

// Decision is the outcome of checking an argument vector against a
// recognized flag set.
type Decision struct {
	// Needed is true when the program must be relaunched with Launch.
	Needed bool `json:"needed"`
	// Forbidden is true when the forbid flag was present. Forbidden
	// decisions are never Needed.
	Forbidden bool `json:"forbidden"`
	// Forced is true when forced flags triggered the respawn.
	Forced bool `json:"forced"`
	// Launch is the vector to start: the canonical vector when Needed,
	// otherwise a copy of the input.
	Launch []string `json:"launch"`
	// Clean is the vector application code should see: the input without
	// recognized, forced and forbid flags.
	Clean []string `json:"clean"`
	// NearMisses lists flag-shaped tokens that were not recognized but are
	// one edit away from a recognized flag.
	NearMisses []NearMiss `json:"near_misses,omitempty"`
}

// NearMiss pairs an unrecognized token with the recognized flag it resembles.
type NearMiss struct {
	Token      string `json:"token"`
	Suggestion string `json:"suggestion"`
}

// Decide determines whether argv needs a respawn. Rules, in order:
//  1. an empty flag set is a configuration error (ErrNoFlags)
//  2. a nil argv is a configuration error (ErrNoArgs)
//  3. the forbid flag anywhere in argv means no respawn, even when forced
//  4. forced flags mean a respawn; they are placed directly after the
//     executable, ahead of the reordered recognized flags
//  5. otherwise a respawn is needed when Reorder changes argv
func (r *Respawner) Decide(argv []string, forced Forced) (Decision, error) {
	if r.flags.Empty() {
		return Decision{}, ErrNoFlags
	}
	if argv == nil {
		return Decision{}, ErrNoArgs
	}
	if len(argv) == 0 {
		return Decision{}, ErrNoExecutable
	}

	forbid := NewFlagSet(r.forbidFlag)
	clean := r.flags.With(r.forbidFlag).With(forced.Flags()...)
	d := Decision{
		Launch:     slices.Clone(argv),
		Clean:      Remove(clean, argv),
		NearMisses: r.nearMisses(argv),
	}

	if slices.ContainsFunc(argv, forbid.Matches) {
		d.Forbidden = true
		return d, nil
	}

	if !forced.None() {
		canonical := Reorder(r.flags, Remove(NewFlagSet(forced.Flags()...), argv))
		d.Needed, d.Forced = true, true
		d.Launch = r.mark(injectAfterExecutable(canonical, forced.Flags()))
		return d, nil
	}

	canonical := Reorder(r.flags, argv)
	if slices.Equal(canonical, argv) {
		return d, nil
	}
	d.Needed = true
	d.Launch = r.mark(canonical)
	return d, nil
}

// mark appends the forbid flag so a self-respawning child does not loop.
func (r *Respawner) mark(launch []string) []string {
	if !r.markChild || r.forbidFlag == "" {
		return launch
	}
	return append(launch, r.forbidFlag)
}

func (r *Respawner) nearMisses(argv []string) []NearMiss {
	var out []NearMiss
	for i, tok := range argv {
		if i == 0 {
			continue
		}
		if s := r.flags.Suggest(tok); s != "" {
			out = append(out, NearMiss{Token: tok, Suggestion: s})
		}
	}
	return out
}

func injectAfterExecutable(argv, flags []string) []string {
	out := make([]string, 0, len(argv)+len(flags))
	out = append(out, argv[:1]...)
	out = append(out, flags...)
	return append(out, argv[1:]...)
}
