package logsvc

import (
	"log"

	"dnevnik/core"
)

// consoleLogger writes to the standard logger only; used in debug runs and
// tests where rollbar is not wired.
type consoleLogger struct {
	std           *log.Logger
	disableOutput bool
}

var _ core.Logger = (*consoleLogger)(nil)

func NewConsoleLogger(std *log.Logger) core.Logger {
	return &consoleLogger{std: std}
}

// NewConsoleLoggerMock discards all output; for tests.
func NewConsoleLoggerMock() core.Logger {
	return &consoleLogger{std: log.New(discard{}, "", 0), disableOutput: true}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func (l consoleLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l consoleLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l consoleLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l consoleLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l consoleLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

func (l consoleLogger) Fatal(msg string, args ...interface{}) {
	l.print("FATAL", msg, args)
	if !l.disableOutput {
		l.std.Fatal(msg)
	}
}
