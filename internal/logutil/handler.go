package logutil

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// enableColor is decided once at package init based on whether stderr is a
// real terminal, matching the teacher's call sites that always log to
// os.Stderr via the default handler.
var enableColor = isatty.IsTerminal(os.Stderr.Fd())

type funcHandler func(*Record) error

func (f funcHandler) Log(r *Record) error { return f(r) }

// StreamHandler writes every record, formatted by fmt, to w. A mutex
// serializes writes since Logger.write may be called from many goroutines.
func StreamHandler(w io.Writer, fmt Format) Handler {
	var mu sync.Mutex
	return funcHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := w.Write(fmt.Format(r))
		return err
	})
}

// LvlFilterHandler drops records more verbose than maxLvl before handing
// the rest to h.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return funcHandler(func(r *Record) error {
		if r.Lvl > maxLvl {
			return nil
		}
		return h.Log(r)
	})
}

// MultiHandler fans one record out to several handlers, continuing past
// individual failures and returning the first error encountered (if any).
func MultiHandler(handlers ...Handler) Handler {
	return funcHandler(func(r *Record) error {
		var first error
		for _, h := range handlers {
			if err := h.Log(r); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}

// FileHandler writes JSON-formatted records to a size- and age-rotated log
// file, via lumberjack — the teacher's pattern for node log files.
func FileHandler(path string, maxSizeMB, maxBackups, maxAgeDays int) Handler {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	return StreamHandler(w, JSONFormat())
}

// ColorableStderrHandler writes terminal-formatted records to a writer
// that translates ANSI color codes on platforms that need it (Windows);
// elsewhere it is equivalent to os.Stderr.
func ColorableStderrHandler() Handler {
	return StreamHandler(colorable.NewColorableStderr(), TerminalFormat())
}
