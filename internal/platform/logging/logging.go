// Package logging builds the hclog loggers shared by usecases and the
// integration plugin host.
package logging

import (
	"io"
	"os"

	hclog "github.com/hashicorp/go-hclog"
)

const Name = "biochar"

// New returns a logger writing to out at the given level name. Unknown
// level names fall back to warn.
func New(level string, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   Name,
		Level:  lvl,
		Output: out,
	})
}

// OrNull guards optional logger dependencies.
func OrNull(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger
}
