package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/cgvn/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(original)
		zerolog.SetGlobalLevel(originalLevel)
	})

	buf := &bytes.Buffer{}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")
	logging.Error().Msg("error message")

	output := buf.String()
	for _, want := range []string{"debug message", "info message", "warning message", "error message"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got: %s", want, output)
		}
	}
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithRunID(ctx, "run-1")
	ctx = logging.WithStage(ctx, "reshape")
	ctx = logging.WithTable(ctx, "governance")
	ctx = logging.WithField(ctx, "rows", 3)

	logging.FromContext(ctx).Info().Msg("Pivoted")

	testLogger.AssertContains(t, `"run_id":"run-1"`)
	testLogger.AssertContains(t, `"stage":"reshape"`)
	testLogger.AssertContains(t, `"table":"governance"`)
	testLogger.AssertContains(t, `"rows":3`)
	if testLogger.Lines()[0] == "" {
		t.Error("expected one log line")
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	if logging.FromContext(nil) != logging.Default() {
		t.Error("nil context should yield the default logger")
	}
	if logging.FromContext(context.Background()) != logging.Default() {
		t.Error("empty context should yield the default logger")
	}
}
