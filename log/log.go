package log

import (
	"io"
	"os"
	"time"

	"github.com/sagernet/sing-connect/option"
	E "github.com/sagernet/sing/common/exceptions"
)

type Options struct {
	Options       option.LogOptions
	DefaultWriter io.Writer
	BaseTime      time.Time
}

type factoryWithFile struct {
	Factory
	file *os.File
}

func (f *factoryWithFile) Close() error {
	return f.file.Close()
}

// New builds a factory from log options. When the output is a file the
// returned factory also implements io.Closer.
func New(options Options) (Factory, error) {
	logOptions := options.Options

	if logOptions.Disabled {
		return NewNOPFactory(), nil
	}

	var logFile *os.File
	var logWriter io.Writer

	switch logOptions.Output {
	case "":
		logWriter = options.DefaultWriter
		if logWriter == nil {
			logWriter = os.Stderr
		}
	case "stderr":
		logWriter = os.Stderr
	case "stdout":
		logWriter = os.Stdout
	default:
		var err error
		logFile, err = os.OpenFile(logOptions.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, E.Cause(err, "open log file")
		}
		logWriter = logFile
	}
	baseTime := options.BaseTime
	if baseTime.IsZero() {
		baseTime = time.Now()
	}
	logFormatter := Formatter{
		BaseTime:         baseTime,
		DisableColors:    logOptions.DisableColor || logFile != nil,
		DisableTimestamp: !logOptions.Timestamp && logFile != nil,
		FullTimestamp:    logOptions.Timestamp,
		TimestampFormat:  "-0700 2006-01-02 15:04:05",
	}
	factory := NewFactory(logFormatter, logWriter)
	if logOptions.Level != "" {
		logLevel, err := ParseLevel(logOptions.Level)
		if err != nil {
			if logFile != nil {
				logFile.Close()
			}
			return nil, E.Cause(err, "parse log level")
		}
		factory.SetLevel(logLevel)
	} else {
		factory.SetLevel(LevelInfo)
	}
	if logFile != nil {
		factory = &factoryWithFile{
			Factory: factory,
			file:    logFile,
		}
	}
	return factory, nil
}
