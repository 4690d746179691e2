package log

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sagernet/sing-connect/option"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"} {
		level, err := ParseLevel(name)
		require.NoError(t, err)
		require.Equal(t, name, FormatLevel(level))
	}
	level, err := ParseLevel("warning")
	require.NoError(t, err)
	require.Equal(t, LevelWarn, level)
	_, err = ParseLevel("verbose")
	require.Error(t, err)
}

func TestFactoryLevelFilter(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	factory := NewFactory(Formatter{BaseTime: time.Now(), DisableColors: true}, &buffer)
	factory.SetLevel(LevelInfo)
	logger := factory.NewLogger("manager")
	logger.Debug("hidden")
	logger.Info("network ", "changed")
	output := buffer.String()
	require.NotContains(t, output, "hidden")
	require.Contains(t, output, "INFO")
	require.Contains(t, output, "manager: network changed")
	require.True(t, strings.HasSuffix(output, "\n"))
}

func TestFormatterContextID(t *testing.T) {
	t.Parallel()
	ctx := ContextWithID(context.Background(), ID{ID: 42, CreatedAt: time.Now()})
	message := Formatter{DisableColors: true, DisableTimestamp: true}.Format(ctx, LevelWarn, "", "attempt failed", time.Now())
	require.True(t, strings.HasPrefix(message, "WARN [42 "))
	require.Contains(t, message, "attempt failed")
}

func TestNewDisabled(t *testing.T) {
	t.Parallel()
	factory, err := New(Options{Options: option.LogOptions{Disabled: true}})
	require.NoError(t, err)
	factory.Logger().Info("dropped")
}

func TestNewInvalidLevel(t *testing.T) {
	t.Parallel()
	_, err := New(Options{Options: option.LogOptions{Level: "loud"}, DefaultWriter: &bytes.Buffer{}})
	require.Error(t, err)
}
