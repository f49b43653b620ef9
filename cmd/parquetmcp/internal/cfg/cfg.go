// Package cfg contains common configuration variables.
package cfg

import (
	"flag"
	"log/slog"
	"os"

	"github.com/rusq/osenv/v2"
)

var (
	// Version is the version of the executable, set by main.
	Version string

	TraceFile   string
	LogFile     string
	JSONHandler bool
	Verbose     bool

	// Log is the logger initialised by main.  Commands must use it
	// instead of slog.Default().
	Log = slog.Default()
)

type FlagMask int

const (
	DefaultFlags  FlagMask = 0
	OmitTraceFlag FlagMask = 1 << iota
	OmitLogFlags

	OmitAll = OmitTraceFlag | OmitLogFlags
)

// SetBaseFlags sets the global flags that are accepted by every command,
// unless omitted by mask.
func SetBaseFlags(fs *flag.FlagSet, mask FlagMask) {
	if mask&OmitTraceFlag == 0 {
		fs.StringVar(&TraceFile, "trace", os.Getenv("TRACE_FILE"), "trace `filename`")
	}
	if mask&OmitLogFlags == 0 {
		fs.StringVar(&LogFile, "log", os.Getenv("LOG_FILE"), "log `file`, if not specified, messages are printed to STDERR")
		fs.BoolVar(&JSONHandler, "log-json", osenv.Value("JSON_LOG", false), "log in JSON format")
		fs.BoolVar(&Verbose, "v", osenv.Value("DEBUG", false), "verbose messages")
	}
}

// SetDebugLevel switches the default logger to debug level.
func SetDebugLevel() {
	slog.SetLogLoggerLevel(slog.LevelDebug)
}
