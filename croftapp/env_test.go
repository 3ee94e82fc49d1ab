package croftapp_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/crofthq/croft/croftapp"
)

func TestParseEnvDefaults(t *testing.T) {
	t.Setenv("CROFT_SERVICE_NAME", "svc1")

	env, err := croftapp.ParseEnv[croftapp.BaseEnvironment]()()
	require.NoError(t, err)
	require.Equal(t, "svc1", env.ServiceName)
	require.Equal(t, 8080, env.Port)
	require.Equal(t, zapcore.InfoLevel, env.LogLevel)
	require.Equal(t, "stdout", env.OtelExporter)
	require.False(t, env.H2C)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("CROFT_SERVICE_NAME", "svc2")
	t.Setenv("CROFT_PORT", "9999")
	t.Setenv("CROFT_LOG_LEVEL", "debug")
	t.Setenv("CROFT_OTEL_EXPORTER", "none")
	t.Setenv("CROFT_H2C", "true")

	env, err := croftapp.ParseEnv[croftapp.BaseEnvironment]()()
	require.NoError(t, err)
	require.Equal(t, 9999, env.Port)
	require.Equal(t, zapcore.DebugLevel, env.LogLevel)
	require.Equal(t, "none", env.OtelExporter)
	require.True(t, env.H2C)
}

func TestParseEnvRequiresServiceName(t *testing.T) {
	t.Setenv("CROFT_SERVICE_NAME", "x") // register restore, then unset
	require.NoError(t, os.Unsetenv("CROFT_SERVICE_NAME"))

	_, err := croftapp.ParseEnv[croftapp.BaseEnvironment]()()
	require.Error(t, err)
}

type customEnv struct {
	croftapp.BaseEnvironment

	DatabaseURL string `env:"MYAPP_DATABASE_URL" envDefault:"postgres://localhost"`
}

func TestParseEnvCustomStruct(t *testing.T) {
	t.Setenv("CROFT_SERVICE_NAME", "svc3")

	env, err := croftapp.ParseEnv[customEnv]()()
	require.NoError(t, err)
	require.Equal(t, "svc3", env.ServiceName)
	require.Equal(t, "postgres://localhost", env.DatabaseURL)
}
