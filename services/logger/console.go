package logsvc

import (
	"log"

	"github.com/tmwangi/kazi/core"
)

type consoleLogger struct {
	std *log.Logger
}

var _ core.Logger = (*consoleLogger)(nil)

// NewConsoleLogger returns a core.Logger writing to the standard logger.
func NewConsoleLogger(std *log.Logger) *consoleLogger {
	return &consoleLogger{std: std}
}

func (l consoleLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v", arg)
	}
}

func (l consoleLogger) Debug(msg string, args ...interface{})   { l.print("DEBUG", msg, args) }
func (l consoleLogger) Info(msg string, args ...interface{})    { l.print("INFO", msg, args) }
func (l consoleLogger) Warning(msg string, args ...interface{}) { l.print("WARNING", msg, args) }
func (l consoleLogger) Error(msg string, args ...interface{})   { l.print("ERROR", msg, args) }
