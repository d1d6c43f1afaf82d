// Package logger builds the zerolog loggers used by the SDK, the store and leadsctl.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	permission = 0664
)

type LogBuild struct {
	writer  io.Writer
	path    string
	level   zerolog.Level
	console bool
}

type LogData struct {
	writer  io.Writer
	LogFile *os.File
	Logger  zerolog.Logger
}

func New() *LogBuild {
	return &LogBuild{level: zerolog.InfoLevel}
}

func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// Level sets the minimum level. Unknown names fall back to info.
func (build *LogBuild) Level(name string) *LogBuild {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	build.level = lvl
	return build
}

// Console switches to zerolog's human readable console writer.
func (build *LogBuild) Console() *LogBuild {
	build.console = true
	return build
}

func (build *LogBuild) Make() (logData *LogData, err error) {
	logData = new(LogData)
	logData.writer = os.Stderr
	if build.writer != nil {
		logData.writer = build.writer
	}
	if build.path != "" {
		logData.LogFile, err = os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		logData.writer = zerolog.SyncWriter(logData.LogFile)
	}
	if build.console {
		logData.writer = zerolog.ConsoleWriter{Out: logData.writer, NoColor: build.path != ""}
	}
	logData.Logger = zerolog.New(logData.writer).Level(build.level).With().Timestamp().Logger()
	return
}

// Close releases the log file, if any.
func (logData *LogData) Close() error {
	if logData.LogFile == nil {
		return nil
	}
	return logData.LogFile.Close()
}

// OrNop dereferences l, returning a disabled logger for nil.
func OrNop(l *zerolog.Logger) zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return *l
}
