package log

import (
	"os"
	"time"
)

var std ContextLogger

func init() {
	std = NewFactory(Formatter{BaseTime: time.Now()}, os.Stderr).Logger()
}

func StdLogger() ContextLogger {
	return std
}

// SetStdLogger replaces the logger behind the package level functions.
func SetStdLogger(logger ContextLogger) {
	std = logger
}

func Fatal(args ...any) {
	std.Fatal(args...)
}
