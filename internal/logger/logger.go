package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var levelColors = map[Level]string{
	DEBUG: "\033[36m",
	INFO:  "\033[32m",
	WARN:  "\033[33m",
	ERROR: "\033[31m",
}

const colorReset = "\033[0m"

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel parses a level name case-insensitively. Unknown names mean INFO.
func ParseLevel(s string) Level {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return WARN
	}
	for level, n := range levelNames {
		if n == name {
			return level
		}
	}
	return INFO
}

// Logger is a leveled logger with a prefix and key=value fields.
// Loggers derived with WithField, WithFields or WithPrefix share the parent's
// output lock, so concurrent writers never interleave lines.
type Logger struct {
	mu       *sync.Mutex
	out      io.Writer
	level    Level
	prefix   string
	fields   map[string]any
	colorize bool
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput sets the output destination.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.out = w }
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(l *Logger) { l.level = level }
}

// WithPrefix sets a prefix for log messages.
func WithPrefix(prefix string) Option {
	return func(l *Logger) { l.prefix = prefix }
}

// WithColors enables or disables colorized level names.
func WithColors(enabled bool) Option {
	return func(l *Logger) { l.colorize = enabled }
}

// New creates a Logger. Output defaults to stderr so command output on
// stdout stays machine readable.
func New(opts ...Option) *Logger {
	l := &Logger{
		mu:       &sync.Mutex{},
		out:      os.Stderr,
		level:    INFO,
		colorize: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLogger = New()

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

// derive copies l with extra fields merged over the existing ones.
func (l *Logger) derive(extra map[string]any) *Logger {
	c := *l
	if len(extra) == 0 {
		return &c
	}
	c.fields = make(map[string]any, len(l.fields)+len(extra))
	for k, v := range l.fields {
		c.fields[k] = v
	}
	for k, v := range extra {
		c.fields[k] = v
	}
	return &c
}

// WithField returns a derived logger carrying key=value.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.derive(map[string]any{key: value})
}

// WithFields returns a derived logger carrying every entry of fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	return l.derive(fields)
}

// WithPrefix returns a derived logger tagging lines with [prefix].
func (l *Logger) WithPrefix(prefix string) *Logger {
	c := l.derive(nil)
	c.prefix = prefix
	return c
}

func (l *Logger) Debug(msg string, args ...any) { l.write(DEBUG, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.write(INFO, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.write(WARN, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.write(ERROR, msg, args) }

// write must be called directly by the exported level methods; the caller
// frame is counted from here.
func (l *Logger) write(level Level, msg string, args []any) {
	if level < l.level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	_, file, line, ok := runtime.Caller(2)

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	sb.WriteByte(' ')
	sb.WriteString(l.levelLabel(level))
	sb.WriteByte(' ')
	if l.prefix != "" {
		fmt.Fprintf(&sb, "[%s] ", l.prefix)
	}
	if ok {
		fmt.Fprintf(&sb, "[%s:%d] ", file[strings.LastIndex(file, "/")+1:], line)
	}
	sb.WriteString(msg)
	writeFields(&sb, l.fields)
	sb.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, sb.String())
}

func (l *Logger) levelLabel(level Level) string {
	label := fmt.Sprintf("%-5s", level)
	if !l.colorize {
		return label
	}
	return levelColors[level] + label + colorReset
}

// writeFields appends fields in key order so identical events produce
// identical lines.
func writeFields(sb *strings.Builder, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, " %s=%v", k, fields[k])
	}
}

type ctxKey struct{}

// FromContext returns the request-scoped logger, or the default logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return defaultLogger
}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
