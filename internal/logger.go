package internal

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Logger tags every record with the owning component kind ("queue",
// "collector", ...) and the instance name.
type Logger struct {
	*slog.Logger

	component string
	name      string
}

func NewLogger(component, name string) *Logger {
	var handler slog.Handler

	if runtime.GOOS == "windows" {
		w := colorable.NewColorableStdout()
		handler = tint.NewHandler(w, nil)
	} else {
		w := os.Stderr
		handler = tint.NewHandler(w, &tint.Options{
			NoColor: !isatty.IsTerminal(w.Fd()),
		})
	}

	return &Logger{
		Logger: slog.New(handler),

		component: component,
		name:      name,
	}
}

func (l *Logger) group() slog.Attr {
	return slog.Group("buffer", slog.String("component", l.component), slog.String("name", l.name))
}

func (l *Logger) args(args ...any) []any {
	return append([]any{l.group()}, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info(msg, l.args(args...)...)
}

func (l *Logger) Error(msg string, err error, args ...any) {
	withErr := append([]any{tint.Err(err)}, args...)
	l.Logger.Error(msg, l.args(withErr...)...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, l.args(args...)...)
}
