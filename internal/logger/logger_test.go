package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("hello", "key", "value")

	out := buf.String()
	for _, want := range []string{"hello", `"key":"value"`, `"level":"INFO"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output: %s", want, out)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Debug("hidden")
	log.Info("hidden too")
	if buf.Len() > 0 {
		t.Fatalf("unexpected output below warn: %s", buf.String())
	}
	log.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("warn message missing: %s", buf.String())
	}
}

func TestWithAndWithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.With("component", "codec").WithGroup("mesh").Info("loaded", "faces", 12)

	out := buf.String()
	if !strings.Contains(out, `"component":"codec"`) {
		t.Fatalf("With attribute missing: %s", out)
	}
	if !strings.Contains(out, "loaded") {
		t.Fatalf("message missing: %s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("via context")
	if !strings.Contains(buf.String(), "via context") {
		t.Fatalf("context logger not used: %s", buf.String())
	}
}

func TestFromContextFallback(t *testing.T) {
	t.Parallel()

	log := FromContext(context.Background())
	if log == nil {
		t.Fatal("expected fallback logger")
	}
	log.Info("no panic expected")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPrettyLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelDebug)
	log.Debug("scan start", "file", "cube.ply", "note", "two words")

	out := buf.String()
	if !strings.Contains(out, "scan start") {
		t.Fatalf("message missing: %s", out)
	}
	if !strings.Contains(out, "file=cube.ply") {
		t.Fatalf("plain attr missing: %s", out)
	}
	if !strings.Contains(out, `note="two words"`) {
		t.Fatalf("quoted attr missing: %s", out)
	}
}

func TestPrettyEnabled(t *testing.T) {
	t.Parallel()

	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error disabled at warn level")
	}
}

func TestPrettyGroupPrefixes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	log := slog.New(h.WithGroup("mesh").(*PrettyHandler).WithGroup("vertex"))
	log.Info("stats", "count", 4)

	if !strings.Contains(buf.String(), "mesh.vertex.count=4") {
		t.Fatalf("dotted group prefix missing: %s", buf.String())
	}
}

func TestPrettyWithAttrsIsolated(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	tagged := h.WithAttrs([]slog.Attr{slog.String("service", "meshapi")})
	slog.New(tagged).Info("tagged")
	if !strings.Contains(buf.String(), "service=meshapi") {
		t.Fatalf("handler attr missing: %s", buf.String())
	}

	buf.Reset()
	slog.New(h).Info("plain")
	if strings.Contains(buf.String(), "service=meshapi") {
		t.Fatalf("attr leaked into base handler: %s", buf.String())
	}
}
