package croftapp

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must
// implement. Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	logLevel() zapcore.Level
	otelExporter() string
	h2cEnabled() bool
}

// BaseEnvironment contains the required environment variables. Embed this in
// your custom environment struct.
type BaseEnvironment struct {
	Port         int           `env:"CROFT_PORT" envDefault:"8080"`
	ServiceName  string        `env:"CROFT_SERVICE_NAME,required"`
	LogLevel     zapcore.Level `env:"CROFT_LOG_LEVEL" envDefault:"info"`
	OtelExporter string        `env:"CROFT_OTEL_EXPORTER" envDefault:"stdout"`
	// H2C enables serving cleartext HTTP/2 next to HTTP/1.1.
	H2C bool `env:"CROFT_H2C" envDefault:"false"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) otelExporter() string {
	return e.OtelExporter
}

func (e BaseEnvironment) h2cEnabled() bool {
	return e.H2C
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}
