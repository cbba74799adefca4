package flagsource

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/dzonerzy/go-respawn/respawn"
)

type probe struct {
	launcher string
	args     []string
}

// Probe returns a provider that runs the launcher with args and collects the
// options it lists, e.g. Probe("node", "--v8-options"). Every line whose first
// field is a flag contributes that flag; "-r, --require" style lines
// contribute each alias.
func Probe(launcher string, args ...string) Provider {
	return probe{launcher: launcher, args: append([]string(nil), args...)}
}

func (p probe) Key() string {
	return "probe:" + p.launcher + " " + strings.Join(p.args, " ")
}

func (p probe) Flags(ctx context.Context) ([]string, error) {
	bin := p.launcher
	if lp, err := exec.LookPath(bin); err == nil {
		bin = lp
	}
	//nolint:gosec // probing a user-named launcher
	cmd := exec.CommandContext(ctx, bin, p.args...)
	out, err := cmd.Output()
	if err != nil && len(out) == 0 {
		argv := append([]string{p.launcher}, p.args...)
		return nil, respawn.NewError(respawn.ErrorTypeSpawn, "probe failed: "+strings.Join(argv, " ")).
			WithCause(err).
			WithContext("launcher", p.launcher)
	}
	return ParseOptions(out), nil
}

// ParseOptions extracts flag names from a launcher's option listing.
// Duplicates are kept once, in order of appearance.
func ParseOptions(out []byte) []string {
	var flags []string
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, field := range strings.Fields(sc.Text()) {
			alias := strings.HasSuffix(field, ",")
			name := optionName(strings.TrimSuffix(field, ","))
			if !respawn.IsFlag(name) {
				break
			}
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				flags = append(flags, name)
			}
			if !alias {
				break
			}
		}
	}
	return flags
}

// optionName cuts "--stack-size=..." or "--inspect[=[host:]port]" down to the
// bare name.
func optionName(field string) string {
	if i := strings.IndexAny(field, "=[<("); i >= 0 {
		field = field[:i]
	}
	return field
}
