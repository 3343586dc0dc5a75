// Package klog builds a logger.Logger on top of zap, configured from flags.
//
// Messages are always logged on the console (stderr by default) and, on unix
// systems, optionally sent to syslog.
package klog

import (
	"io"
	"os"
	"strings"

	"github.com/enfabrica/kunzip/lib/kflags"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.SugaredLogger
}

func (l *Logger) SetOutput(writer io.Writer) {
}

type Flags struct {
	ConsoleLevel string
	SyslogLevel  string
	Verbosity    int
	Quiet        bool
}

// DefaultFlags returns the default logging configuration.
//
// Logging to syslog is disabled by default: an empty SyslogLevel turns it off.
func DefaultFlags() *Flags {
	return &Flags{
		ConsoleLevel: "warn",
		SyslogLevel:  "",
		Verbosity:    0,
	}
}

func (cf *Flags) Register(flags kflags.FlagSet, prefix string) *Flags {
	flags.StringVar(&cf.ConsoleLevel, prefix+"loglevel-console", cf.ConsoleLevel, "Can be debug, info, warn, error. Indicates the minimum severity of messages to log on the console")
	flags.StringVar(&cf.SyslogLevel, prefix+"loglevel-syslog", cf.SyslogLevel, "Can be debug, info, warn, error, or empty to disable. Indicates the minimum severity of messages to log in syslog")
	flags.IntVar(&cf.Verbosity, prefix+"verbosity", cf.Verbosity, "Increases the verbosity level of logs by the specified amount")
	flags.BoolVar(&cf.Quiet, prefix+"quiet", cf.Quiet, "If set to true, only errors will be logged on the console")
	return cf
}

type options struct {
	minConsole zapcore.Level
	minSyslog  zapcore.Level
	syslog     bool
	output     zapcore.WriteSyncer
}

type Modifier func(o *options) error

type Modifiers []Modifier

func (mods Modifiers) Apply(o *options) error {
	for _, m := range mods {
		if err := m(o); err != nil {
			return err
		}
	}
	return nil
}

type Level struct {
	Name  string
	Value zapcore.Level
}

type Levels []Level

// Find returns the first level starting with name, so "warn" and "w" both find "warning".
func (levels Levels) Find(name string) (int, *Level) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return 0, nil
	}
	for ix, level := range levels {
		if strings.HasPrefix(level.Name, name) {
			return ix, &levels[ix]
		}
	}
	return 0, nil
}

func (levels Levels) String() string {
	keys := []string{}
	for _, key := range levels {
		keys = append(keys, key.Name)
	}
	return "[" + strings.Join(keys, ", ") + "]"
}

var DefaultLevels = Levels{
	{"debug", zapcore.DebugLevel},
	{"info", zapcore.InfoLevel},
	{"warning", zapcore.WarnLevel},
	{"error", zapcore.ErrorLevel},
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FromFlags configures the logger from command line flags.
//
// Invalid levels are reported as kflags.UsageError.
func FromFlags(flags Flags) Modifier {
	return func(o *options) error {
		cx, cl := DefaultLevels.Find(flags.ConsoleLevel)
		if cl == nil {
			return kflags.NewUsageErrorf("invalid --loglevel-console passed - %s is unknown, valid: %s", flags.ConsoleLevel, DefaultLevels)
		}
		cx = max(0, cx-flags.Verbosity)
		o.minConsole = DefaultLevels[cx].Value
		if flags.Quiet {
			o.minConsole = zapcore.ErrorLevel
		}

		if strings.TrimSpace(flags.SyslogLevel) == "" {
			o.syslog = false
			return nil
		}
		sx, sl := DefaultLevels.Find(flags.SyslogLevel)
		if sl == nil {
			return kflags.NewUsageErrorf("invalid --loglevel-syslog passed - %s is unknown, valid: %s", flags.SyslogLevel, DefaultLevels)
		}
		sx = max(0, sx-flags.Verbosity)
		o.minSyslog = DefaultLevels[sx].Value
		o.syslog = true
		return nil
	}
}

// WithOutput sends console logs to the specified writer, rather than stderr.
func WithOutput(w io.Writer) Modifier {
	return func(o *options) error {
		o.output = zapcore.AddSync(w)
		return nil
	}
}

func New(name string, mods ...Modifier) (*Logger, error) {
	options := &options{
		minConsole: zap.WarnLevel,
		minSyslog:  zap.InfoLevel,
		output:     zapcore.Lock(os.Stderr),
	}
	if err := Modifiers(mods).Apply(options); err != nil {
		return nil, err
	}

	matchConsole := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= options.minConsole
	})

	console := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	tees := []zapcore.Core{
		zapcore.NewCore(console, options.output, matchConsole),
	}
	if options.syslog {
		tees = append(tees, syslogCores(name, options.minSyslog)...)
	}

	logger := zap.New(zapcore.NewTee(tees...)).Named(name).Sugar()
	return &Logger{logger}, nil
}
