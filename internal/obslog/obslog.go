// Package obslog provides the structured logging facility shared by the
// mem, task, and rnc packages.
//
// It wraps github.com/joeycumines/logiface the same way the reference
// toolkit's sibling adapter packages (logiface-slog, logiface-zerolog) do:
// a small concrete Event type plus a Writer that hands the record to a
// backend. Here the backend is the standard library's log/slog, written
// directly against logiface's Event/Writer contract rather than through
// one of the adapter modules, so this package has exactly one external
// dependency edge (logiface itself).
package obslog

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

// Logger is the type every core constructs its default logger as.
type Logger = logiface.Logger[*Event]

// Builder is the fluent record builder returned by Logger.Info(), etc.
type Builder = logiface.Builder[*Event]

// Event is the concrete logiface.Event implementation backing Logger.
// It accumulates attributes for a single slog.Record.
type Event struct {
	logiface.UnimplementedEvent

	level logiface.Level
	msg   string
	attrs []slog.Attr
}

var eventPool = sync.Pool{New: func() any { return new(Event) }}

func newEvent(level logiface.Level) *Event {
	e := eventPool.Get().(*Event)
	e.level = level
	e.msg = ""
	e.attrs = e.attrs[:0]
	return e
}

// Level implements logiface.Event.
func (e *Event) Level() logiface.Level { return e.level }

// AddField implements logiface.Event.
func (e *Event) AddField(key string, val any) {
	e.attrs = append(e.attrs, slog.Any(key, val))
}

// AddMessage implements logiface.Event (optional method, always supported here).
func (e *Event) AddMessage(msg string) bool {
	e.msg = msg
	return true
}

// AddError implements logiface.Event (optional method, always supported here).
func (e *Event) AddError(err error) bool {
	e.attrs = append(e.attrs, slog.Any("error", err))
	return true
}

// AddString implements logiface.Event (optional optimisation).
func (e *Event) AddString(key, val string) bool {
	e.attrs = append(e.attrs, slog.String(key, val))
	return true
}

// AddInt implements logiface.Event (optional optimisation).
func (e *Event) AddInt(key string, val int) bool {
	e.attrs = append(e.attrs, slog.Int(key, val))
	return true
}

// AddBool implements logiface.Event (optional optimisation).
func (e *Event) AddBool(key string, val bool) bool {
	e.attrs = append(e.attrs, slog.Bool(key, val))
	return true
}

// AddUint64 implements logiface.Event (optional optimisation).
func (e *Event) AddUint64(key string, val uint64) bool {
	e.attrs = append(e.attrs, slog.Uint64(key, val))
	return true
}

func slogLevel(l logiface.Level) slog.Level {
	switch {
	case l >= logiface.LevelDebug:
		return slog.LevelDebug
	case l >= logiface.LevelNotice:
		return slog.LevelInfo
	case l >= logiface.LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func writeToHandler(h slog.Handler) logiface.WriterFunc[*Event] {
	return func(e *Event) error {
		r := slog.NewRecord(time.Now(), slogLevel(e.level), e.msg, 0)
		r.AddAttrs(e.attrs...)
		return h.Handle(context.Background(), r)
	}
}

// New builds a Logger writing to the given slog.Handler.
func New(h slog.Handler) *Logger {
	return logiface.New[*Event](
		logiface.WithEventFactory[*Event](logiface.NewEventFactoryFunc(newEvent)),
		logiface.WithEventReleaser[*Event](logiface.NewEventReleaserFunc(func(e *Event) { eventPool.Put(e) })),
		logiface.WithWriter[*Event](writeToHandler(h)),
		logiface.WithLevel[*Event](logiface.LevelInformational),
	)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(slog.NewJSONHandler(os.Stderr, nil))
)

// L returns the process-wide default logger. Components that are not given
// an explicit Logger via their WithLogger option fall back to this one,
// mirroring the reference toolkit's getGlobalLogger()/SetStructuredLogger
// pair (an RWMutex-guarded package global with a lazily usable default).
func L() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault installs the process-wide default logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Noop returns a Logger that discards everything, for tests.
func Noop() *Logger {
	return New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
