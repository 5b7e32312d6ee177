package observability

import (
	"context"
	"log/slog"
	"testing"

	"go.opentelemetry.io/contrib/processors/minsev"
)

func TestInstrumentConsole(t *testing.T) {
	orig := slog.Default()
	defer slog.SetDefault(orig)

	for _, format := range []string{"text", "json"} {
		shutdown, err := Instrument(slog.LevelInfo, format, "none")
		if err != nil {
			t.Fatalf("Instrument(%s) failed: %v", format, err)
		}
		if shutdown == nil {
			t.Fatal("Instrument returned nil shutdown")
		}
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("shutdown failed: %v", err)
		}

		if !slog.Default().Enabled(context.Background(), slog.LevelInfo) {
			t.Error("info level should be enabled")
		}
		if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
			t.Error("debug level should be filtered at info")
		}
	}
}

func TestInstrumentUnknownExport(t *testing.T) {
	if _, err := Instrument(slog.LevelInfo, "text", "carrier-pigeon"); err == nil {
		t.Fatal("Instrument should reject an unknown export")
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  minsev.Severity
	}{
		{slog.LevelDebug, minsev.SeverityDebug},
		{slog.LevelDebug - 4, minsev.SeverityDebug},
		{slog.LevelInfo, minsev.SeverityInfo},
		{slog.LevelWarn, minsev.SeverityWarn},
		{slog.LevelError, minsev.SeverityError},
		{slog.LevelError + 4, minsev.SeverityError},
	}

	for _, tt := range tests {
		if got := severity(tt.level); got != tt.want {
			t.Errorf("severity(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
