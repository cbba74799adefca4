package respawn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecide_Errors(t *testing.T) {
	_, err := Decide(nil, []string{"node"}, NoForce())
	require.ErrorIs(t, err, ErrNoFlags)

	_, err = Decide([]string{"file.js"}, []string{"node"}, NoForce())
	require.ErrorIs(t, err, ErrNoFlags, "a set with no flag-shaped entry is empty")

	_, err = Decide([]string{"--harmony"}, nil, NoForce())
	require.ErrorIs(t, err, ErrNoArgs)

	_, err = Decide([]string{"--harmony"}, []string{}, NoForce())
	require.ErrorIs(t, err, ErrNoExecutable)

	require.True(t, IsType(err, ErrorTypeConfiguration))
	require.False(t, errors.Is(err, ErrNoArgs))
}

func TestDecide_Reorder(t *testing.T) {
	argv := []string{"node", "file.js", "--flag", "--harmony", "command"}
	d, err := Decide([]string{"--harmony"}, argv, NoForce())
	require.NoError(t, err)
	require.True(t, d.Needed)
	require.False(t, d.Forced)
	require.False(t, d.Forbidden)
	require.Equal(t, []string{"node", "--harmony", "file.js", "--flag", "command", DefaultForbidFlag}, d.Launch)
	require.Equal(t, []string{"node", "file.js", "--flag", "command"}, d.Clean)
}

func TestDecide_Canonical(t *testing.T) {
	argv := []string{"node", "--harmony", "file.js"}
	d, err := Decide([]string{"--harmony"}, argv, NoForce())
	require.NoError(t, err)
	require.False(t, d.Needed)
	require.Equal(t, argv, d.Launch)
	require.Equal(t, []string{"node", "file.js"}, d.Clean)

	d.Launch[0] = "changed"
	require.Equal(t, "node", argv[0], "Launch must be a copy")
}

func TestDecide_MarkChildDisabled(t *testing.T) {
	r := New("--harmony").MarkChild(false)
	d, err := r.Decide([]string{"node", "file.js", "--harmony"}, NoForce())
	require.NoError(t, err)
	require.True(t, d.Needed)
	require.Equal(t, []string{"node", "--harmony", "file.js"}, d.Launch)
}

func TestDecide_ForbidBeatsForced(t *testing.T) {
	argv := []string{"node", "file.js", "--harmony", "--no-respawning"}
	d, err := Decide([]string{"--harmony"}, argv, ForceFlag("--trace-deprecation"))
	require.NoError(t, err)
	require.False(t, d.Needed)
	require.True(t, d.Forbidden)
	require.False(t, d.Forced)
	require.Equal(t, argv, d.Launch)
	require.Equal(t, []string{"node", "file.js"}, d.Clean)
}

func TestDecide_ForbidSeparatorVariant(t *testing.T) {
	d, err := Decide([]string{"--harmony"}, []string{"node", "--no_respawning", "file.js", "--harmony"}, NoForce())
	require.NoError(t, err)
	require.True(t, d.Forbidden)
	require.False(t, d.Needed)
}

func TestDecide_Forced(t *testing.T) {
	d, err := Decide([]string{"--harmony"}, []string{"node", "file.js", "arg"}, ForceFlag("--trace-deprecation"))
	require.NoError(t, err)
	require.True(t, d.Needed)
	require.True(t, d.Forced)
	require.Equal(t, []string{"node", "--trace-deprecation", "file.js", "arg", DefaultForbidFlag}, d.Launch)
	require.Equal(t, []string{"node", "file.js", "arg"}, d.Clean)
}

func TestDecide_ForcedWithReorder(t *testing.T) {
	argv := []string{"node", "--trace-deprecation", "file.js", "--harmony"}
	d, err := Decide([]string{"--harmony"}, argv, ForceFlags("--trace-deprecation", "--stack-size=2048"))
	require.NoError(t, err)
	require.True(t, d.Needed)
	require.Equal(t, []string{
		"node", "--trace-deprecation", "--stack-size=2048", "--harmony", "file.js", DefaultForbidFlag,
	}, d.Launch)
	require.Equal(t, []string{"node", "file.js"}, d.Clean)
}

func TestDecide_ChildSeesReadyDecision(t *testing.T) {
	forced := ForceFlag("--trace-deprecation")
	parent, err := Decide([]string{"--harmony"}, []string{"node", "file.js", "--harmony"}, forced)
	require.NoError(t, err)
	require.True(t, parent.Needed)

	child, err := Decide([]string{"--harmony"}, parent.Launch, forced)
	require.NoError(t, err)
	require.False(t, child.Needed)
	require.True(t, child.Forbidden)
	require.Equal(t, parent.Clean, child.Clean)
}

func TestDecide_ForbidDisabled(t *testing.T) {
	r := New("--harmony").ForbidFlag("")
	d, err := r.Decide([]string{"node", "file.js", "--no-respawning"}, ForceFlag("--expose-gc"))
	require.NoError(t, err)
	require.False(t, d.Forbidden)
	require.True(t, d.Needed)
	require.Equal(t, []string{"node", "--expose-gc", "file.js", "--no-respawning"}, d.Launch)
}

func TestDecide_NearMisses(t *testing.T) {
	d, err := Decide([]string{"--harmony"}, []string{"node", "file.js", "--harmoney"}, NoForce())
	require.NoError(t, err)
	require.False(t, d.Needed)
	require.Equal(t, []NearMiss{{Token: "--harmoney", Suggestion: "--harmony"}}, d.NearMisses)
}

func TestNeeded(t *testing.T) {
	needed, err := Needed([]string{"--harmony"}, []string{"node", "file.js", "--harmony"})
	require.NoError(t, err)
	require.True(t, needed)

	needed, err = Needed([]string{"--harmony"}, []string{"node", "--harmony", "file.js"})
	require.NoError(t, err)
	require.False(t, needed)

	_, err = Needed(nil, []string{"node"})
	require.ErrorIs(t, err, ErrNoFlags)

	// nil argv means the test binary's own arguments, which carry no
	// recognized flag.
	needed, err = Needed([]string{"--harmony"}, nil)
	require.NoError(t, err)
	require.False(t, needed)
}
