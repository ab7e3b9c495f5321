package logutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLvlFilterDropsMoreVerbose(t *testing.T) {
	var buf bytes.Buffer
	h := LvlFilterHandler(LvlWarn, StreamHandler(&buf, TerminalFormat()))

	require.NoError(t, h.Log(&Record{Lvl: LvlInfo, Msg: "should be dropped"}))
	require.Empty(t, buf.String())

	require.NoError(t, h.Log(&Record{Lvl: LvlError, Msg: "should pass"}))
	require.Contains(t, buf.String(), "should pass")
}

func TestLoggerNewAppendsContext(t *testing.T) {
	var buf bytes.Buffer
	l := &logger{h: &swapHandler{h: StreamHandler(&buf, TerminalFormat())}}
	child := l.New("component", "puller")
	child.Info("advancing", "state", "Batch")

	out := buf.String()
	require.Contains(t, out, "component=puller")
	require.Contains(t, out, "state=Batch")
	require.Contains(t, out, "advancing")
}

func TestCtxPairsHandlesOddTrailingKey(t *testing.T) {
	pairs := ctxPairs([]interface{}{"a", 1, "danglingKey"})
	require.Len(t, pairs, 2)
	require.Equal(t, "a=1", pairs[0])
	require.True(t, strings.HasPrefix(pairs[1], "danglingKey="))
}

func TestMultiHandlerFansOutToAll(t *testing.T) {
	var a, b bytes.Buffer
	h := MultiHandler(StreamHandler(&a, TerminalFormat()), StreamHandler(&b, JSONFormat()))
	require.NoError(t, h.Log(&Record{Lvl: LvlInfo, Msg: "fanned"}))
	require.Contains(t, a.String(), "fanned")
	require.Contains(t, b.String(), `"msg":"fanned"`)
}
