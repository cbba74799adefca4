package snapio

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger() (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errb bytes.Buffer
	m := New().WithOut(&out).WithErr(&errb).NoColor()
	return NewLogger(m), &out, &errb
}

func TestLogger_LevelsAndRouting(t *testing.T) {
	l, out, errb := newTestLogger()

	l.Debug("hidden")
	l.Info("hello %s", "world")
	l.Success("done")
	l.Warning("careful")
	l.Error("broken")

	if strings.Contains(out.String(), "hidden") {
		t.Fatalf("debug should be below the default level")
	}
	if want := "[INFO] hello world\n[SUCCESS] done\n"; out.String() != want {
		t.Fatalf("stdout = %q, want %q", out.String(), want)
	}
	if want := "[WARN] careful\n[ERROR] broken\n"; errb.String() != want {
		t.Fatalf("stderr = %q, want %q", errb.String(), want)
	}

	out.Reset()
	l.WithLevel(LevelDebug).ErrorsToStderr(false).Debug("visible")
	l.Error("now on stdout")
	if want := "[DEBUG] visible\n[ERROR] now on stdout\n"; out.String() != want {
		t.Fatalf("stdout = %q, want %q", out.String(), want)
	}
}

func TestLogger_DiagnosticsToStderr(t *testing.T) {
	l, out, errb := newTestLogger()
	l.WithLevel(LevelDebug).DiagnosticsToStderr(true)

	l.Debug("spawned")
	l.Info("relaying")
	l.Error("broken")

	if out.Len() != 0 {
		t.Fatalf("stdout = %q, want nothing", out.String())
	}
	if want := "[DEBUG] spawned\n[INFO] relaying\n[ERROR] broken\n"; errb.String() != want {
		t.Fatalf("stderr = %q, want %q", errb.String(), want)
	}
}

func TestLogger_Formats(t *testing.T) {
	l, out, _ := newTestLogger()

	l.WithFormat(LogFormatPlain).WithName("respawn").Info("plain")
	l.WithFormat(LogFormatSymbols).Info("symbol")
	want := "respawn: plain\n◆ respawn: symbol\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestLogger_Timestamp(t *testing.T) {
	l, out, _ := newTestLogger()
	l.WithTimestamp(true).Info("tick")
	fields := strings.Fields(out.String())
	if len(fields) != 3 || len(fields[1]) != len("15:04:05") {
		t.Fatalf("unexpected timestamped line %q", out.String())
	}
}

func TestLogger_Nil(t *testing.T) {
	var l *Logger
	if l.Enabled(LevelError) {
		t.Fatalf("nil logger must be disabled")
	}
	l.Error("dropped")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug": LevelDebug, "INFO": LevelInfo, "": LevelInfo,
		"warning": LevelWarning, "warn": LevelWarning, " error ": LevelError,
	}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		if !ok || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Errorf("unknown level accepted")
	}
	if LevelWarning.String() != "WARN" {
		t.Errorf("unexpected level name %q", LevelWarning.String())
	}
}
