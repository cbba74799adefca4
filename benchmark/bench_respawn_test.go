package benchmark

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"testing"

	snapio "github.com/dzonerzy/go-respawn/io"
	"github.com/dzonerzy/go-respawn/respawn"
)

// Category: respawn

var (
	benchFlags = respawn.NewFlagSet(
		"--harmony", "--use_strict", "--expose-gc", "--stack-size",
		"--max-old-space-size", "--trace-deprecation", "--inspect",
	)
	benchArgv = []string{
		"node", "server.js", "--port", "8080", "--harmony", "--stack_size=2048",
		"--verbose", "--use-strict", "config.json", "--inspect=9229",
	}
)

func BenchmarkFlagSet_Matches(b *testing.B) {
	tokens := []string{"--harmony", "--use-strict", "--stack_size=2048", "server.js", "--verbose", "--"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchFlags.Matches(tokens[i%len(tokens)])
	}
}

func BenchmarkNewFlagSet(b *testing.B) {
	flags := benchFlags.Flags()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = respawn.NewFlagSet(flags...)
	}
}

func BenchmarkReorder(b *testing.B) {
	canonical := respawn.Reorder(benchFlags, benchArgv)
	b.Run("NeedsReorder", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = respawn.Reorder(benchFlags, benchArgv)
		}
	})
	b.Run("Canonical", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = respawn.Canonical(benchFlags, canonical)
		}
	})
}

func BenchmarkRemove(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = respawn.Remove(benchFlags, benchArgv)
	}
}

func BenchmarkDecide(b *testing.B) {
	r := respawn.NewWithFlagSet(benchFlags)
	b.Run("NoForce", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = r.Decide(benchArgv, respawn.NoForce())
		}
	})
	b.Run("Forced", func(b *testing.B) {
		forced := respawn.ForceFlags("--trace-deprecation", "--max-old-space-size=4096")
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = r.Decide(benchArgv, forced)
		}
	})
}

// BenchmarkSpawn measures the full bridge round trip with a trivial child
// (/bin/true). Skipped on Windows and in -short mode.
func BenchmarkSpawn(b *testing.B) {
	if testing.Short() || runtime.GOOS == "windows" {
		b.SkipNow()
	}
	if _, err := os.Stat("/bin/true"); err != nil {
		b.Skip("/bin/true not available")
	}
	var out bytes.Buffer
	r := respawn.New("--harmony").WithIO(snapio.New().WithIn(nil).WithOut(&out).WithErr(&out))
	argv := []string{"/bin/true", "x", "--harmony"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, err := r.Execute(context.Background(), argv)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := p.Wait(); err != nil {
			b.Fatal(err)
		}
	}
}
