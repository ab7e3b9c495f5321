package logutil

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Format renders a Record to a line of bytes.
type Format interface {
	Format(r *Record) []byte
}

type formatFunc func(*Record) []byte

func (f formatFunc) Format(r *Record) []byte { return f(r) }

var lvlColor = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgMagenta, color.Bold),
	LvlError: color.New(color.FgRed),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgWhite),
}

// TerminalFormat renders "TIME [LVL] msg k=v k=v", colorizing the level tag
// when enableColor reports that stderr is a terminal.
func TerminalFormat() Format {
	return formatFunc(func(r *Record) []byte {
		lvl := r.Lvl.String()
		if enableColor {
			lvl = lvlColor[r.Lvl].Sprint(lvl)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s [%s] %s", r.Time.Format("2006-01-02T15:04:05-0700"), lvl, r.Msg)
		for _, p := range ctxPairs(r.Ctx) {
			b.WriteByte(' ')
			b.WriteString(p)
		}
		b.WriteByte('\n')
		return []byte(b.String())
	})
}

// JSONFormat renders a Record as a single line of JSON-ish key/value pairs
// (hand-rolled rather than encoding/json, since Ctx values are untyped and
// the line must never fail to render).
func JSONFormat() Format {
	return formatFunc(func(r *Record) []byte {
		var b strings.Builder
		b.WriteByte('{')
		fmt.Fprintf(&b, `"t":%q,"lvl":%q,"msg":%q`, r.Time.Format(timeFormatJSON), r.Lvl.String(), r.Msg)
		for i := 0; i+1 < len(r.Ctx); i += 2 {
			fmt.Fprintf(&b, `,%q:%q`, fmt.Sprint(r.Ctx[i]), fmt.Sprint(r.Ctx[i+1]))
		}
		b.WriteString("}\n")
		return []byte(b.String())
	})
}

const timeFormatJSON = "2006-01-02T15:04:05.000Z0700"
