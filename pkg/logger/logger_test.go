package logger

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in).Level(); got != want {
			t.Fatalf("level %q: expected %v got %v", in, want, got)
		}
	}
}

func TestServiceNameFromEnv(t *testing.T) {
	t.Setenv("SERVICE_NAME", "faq-test")
	if got := serviceName(); got != "faq-test" {
		t.Fatalf("expected faq-test got %q", got)
	}
	t.Setenv("SERVICE_NAME", "  ")
	if got := serviceName(); got != "faq-chatbot" {
		t.Fatalf("expected default service name got %q", got)
	}
}
