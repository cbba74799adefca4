package respawn

import (
	"slices"

	"github.com/dzonerzy/go-respawn/internal/pool"
)

// Reorder returns a copy of argv with every recognized flag moved to directly
// follow the executable. The program token (the first token after any
// leading recognized flags) is never treated as a flag. Relative order inside
// the special group and inside the remaining tokens is preserved and no token
// is added, dropped or split, so an inline "=value" travels with its flag.
//
//	Reorder(NewFlagSet("--harmony"), []string{"node", "file.js", "--flag", "--harmony", "command"})
//	// => ["node", "--harmony", "file.js", "--flag", "command"]
func Reorder(flags FlagSet, argv []string) []string {
	if len(argv) < 2 {
		return slices.Clone(argv)
	}
	special := pool.GetStringSlice()
	defer pool.PutStringSlice(special)

	out := make([]string, 0, len(argv))
	out = append(out, argv[0])
	rest := splitSpecial(flags, argv, special)
	out = append(out, *special...)
	out = append(out, rest...)
	return out
}

// Remove returns a copy of argv with every recognized flag deleted. The
// executable and all other tokens keep their relative order.
func Remove(flags FlagSet, argv []string) []string {
	if len(argv) < 2 {
		return slices.Clone(argv)
	}
	special := pool.GetStringSlice()
	defer pool.PutStringSlice(special)

	out := make([]string, 0, len(argv))
	out = append(out, argv[0])
	return append(out, splitSpecial(flags, argv, special)...)
}

// splitSpecial scans argv[1:], appending matched tokens to special and
// returning the unmatched ones. Recognized flags that already sit directly
// after the executable belong to the special group; the first token after them
// is the program and is never matched. This keeps Reorder idempotent once more
// than one flag has been moved forward.
func splitSpecial(flags FlagSet, argv []string, special *[]string) []string {
	i := 1
	for i < len(argv) && flags.Matches(argv[i]) {
		*special = append(*special, argv[i])
		i++
	}
	if i == len(argv) {
		return nil
	}
	rest := make([]string, 0, len(argv)-i)
	rest = append(rest, argv[i])
	for _, tok := range argv[i+1:] {
		if flags.Matches(tok) {
			*special = append(*special, tok)
			continue
		}
		rest = append(rest, tok)
	}
	return rest
}

// Canonical reports whether argv is already in the order Reorder produces.
func Canonical(flags FlagSet, argv []string) bool {
	return slices.Equal(argv, Reorder(flags, argv))
}
