package respawn

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestReorder(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
		argv  []string
		want  []string
	}{
		{
			name:  "flag after program moves forward",
			flags: []string{"--harmony"},
			argv:  []string{"node", "file.js", "--flag", "--harmony", "command"},
			want:  []string{"node", "--harmony", "file.js", "--flag", "command"},
		},
		{
			name:  "no recognized flags",
			flags: []string{"--harmony"},
			argv:  []string{"node", "bin/x", "thing"},
			want:  []string{"node", "bin/x", "thing"},
		},
		{
			name:  "already canonical",
			flags: []string{"--harmony"},
			argv:  []string{"node", "--harmony", "file.js"},
			want:  []string{"node", "--harmony", "file.js"},
		},
		{
			name:  "separator variants and inline values",
			flags: []string{"--use_strict", "--stack-size"},
			argv:  []string{"node", "app.js", "--use-strict", "x", "--stack_size=2048"},
			want:  []string{"node", "--use-strict", "--stack_size=2048", "app.js", "x"},
		},
		{
			name:  "flag-shaped program token is moved when recognized",
			flags: []string{"-R"},
			argv:  []string{"mocha", "test.js", "-R", "spec"},
			want:  []string{"mocha", "-R", "test.js", "spec"},
		},
		{
			name:  "executable only",
			flags: []string{"--harmony"},
			argv:  []string{"node"},
			want:  []string{"node"},
		},
		{
			name:  "several leading flags stay put",
			flags: []string{"--harmony", "--expose-gc"},
			argv:  []string{"node", "--expose-gc", "--harmony", "file.js"},
			want:  []string{"node", "--expose-gc", "--harmony", "file.js"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewFlagSet(tt.flags...)
			input := slices.Clone(tt.argv)
			require.Equal(t, tt.want, Reorder(fs, tt.argv))
			require.Equal(t, input, tt.argv, "input must not be modified")
		})
	}
}

func TestRemove(t *testing.T) {
	fs := NewFlagSet("--harmony", "--no-respawning")
	got := Remove(fs, []string{"node", "--harmony", "file.js", "--flag", "--no_respawning", "x"})
	require.Equal(t, []string{"node", "file.js", "--flag", "x"}, got)

	require.Equal(t, []string{"node"}, Remove(fs, []string{"node"}))
	require.Empty(t, Remove(fs, []string{}))
}

func TestCanonical(t *testing.T) {
	fs := NewFlagSet("--harmony")
	require.True(t, Canonical(fs, []string{"node", "--harmony", "file.js"}))
	require.False(t, Canonical(fs, []string{"node", "file.js", "--harmony"}))
	require.True(t, Canonical(fs, []string{"node"}))
}

var (
	tokenPool = []string{
		"--harmony", "--harmony=1", "--use_strict", "--use-strict", "--stack-size=2048",
		"file.js", "--flag", "-x", "command", "--", "-", "=", "--stack_size",
	}
	flagPool = []string{"--harmony", "--use-strict", "--stack_size", "--flag", "-x"}
)

func drawCase(t *rapid.T) (FlagSet, []string) {
	flags := rapid.SliceOfN(rapid.SampledFrom(flagPool), 1, len(flagPool)).Draw(t, "flags")
	tail := rapid.SliceOfN(rapid.SampledFrom(tokenPool), 0, 12).Draw(t, "tail")
	argv := append([]string{"node"}, tail...)
	return NewFlagSet(flags...), argv
}

func TestReorder_Properties(t *testing.T) {
	t.Run("permutation", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			fs, argv := drawCase(t)
			got := Reorder(fs, argv)
			if got[0] != argv[0] {
				t.Fatalf("executable moved: %v", got)
			}
			a, b := slices.Clone(argv), slices.Clone(got)
			slices.Sort(a)
			slices.Sort(b)
			if !slices.Equal(a, b) {
				t.Fatalf("not a permutation: %v -> %v", argv, got)
			}
		})
	})

	t.Run("idempotent", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			fs, argv := drawCase(t)
			once := Reorder(fs, argv)
			if twice := Reorder(fs, once); !slices.Equal(once, twice) {
				t.Fatalf("reorder not idempotent: %v -> %v -> %v", argv, once, twice)
			}
			if !Canonical(fs, once) {
				t.Fatalf("reordered vector is not canonical: %v", once)
			}
		})
	})

	t.Run("stable partition", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			fs, argv := drawCase(t)
			var matched, others []string
			for _, tok := range argv[1:] {
				if fs.Matches(tok) {
					matched = append(matched, tok)
				} else {
					others = append(others, tok)
				}
			}
			want := append(append([]string{argv[0]}, matched...), others...)
			if got := Reorder(fs, argv); !slices.Equal(want, got) {
				t.Fatalf("Reorder(%v) = %v, want %v", argv, got, want)
			}
		})
	})

	t.Run("removal completeness", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			fs, argv := drawCase(t)
			got := Remove(fs, argv)
			if got[0] != argv[0] {
				t.Fatalf("executable removed: %v", got)
			}
			for _, tok := range got[1:] {
				if fs.Matches(tok) {
					t.Fatalf("recognized token %q survived removal: %v", tok, got)
				}
			}
			kept := 0
			for _, tok := range argv[1:] {
				if !fs.Matches(tok) {
					kept++
				}
			}
			if kept != len(got)-1 {
				t.Fatalf("Remove(%v) dropped unrecognized tokens: %v", argv, got)
			}
		})
	})
}
