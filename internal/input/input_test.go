package input

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"f5 xterm", "\x1b[15~", []string{KeyF5}},
		{"f5 linux console", "\x1b[[E", []string{KeyF5}},
		{"mixed", "a\x1b[15~b", []string{"a", KeyF5, "b"}},
		{"ctrl c", "\x03", []string{KeyCtrlC}},
		{"unknown csi dropped", "\x1b[1;5Ax", []string{"x"}},
		{"lone escape", "\x1b", []string{KeyEsc}},
		{"enter", "\r", []string{KeyEnter}},
		{"f1", "\x1bOP", []string{"F1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode([]byte(tt.in)))
		})
	}
}

func TestDispatcher(t *testing.T) {
	d := NewDispatcher()
	var calls []string
	un1 := d.OnKey(KeyF5, func() { calls = append(calls, "one") })
	d.OnKey(KeyF5, func() { calls = append(calls, "two") })

	assert.True(t, d.Press(KeyF5))
	assert.False(t, d.Press("F6"))
	assert.Equal(t, []string{"one", "two"}, calls)

	un1()
	un1()
	assert.Equal(t, 1, d.Handlers(KeyF5))
	d.Press(KeyF5)
	assert.Equal(t, []string{"one", "two", "two"}, calls)
}

func TestTerminal_DispatchesDecodedKeys(t *testing.T) {
	d := NewDispatcher()
	pressed := 0
	d.OnKey(KeyF5, func() { pressed++ })
	interrupted := 0
	term := NewTerminal(os.Stdin, d, func() { interrupted++ }, nil)

	term.dispatch([]byte("\x1b[15~x\x03"))
	assert.Equal(t, 1, pressed)
	assert.Equal(t, 1, interrupted)
}

func TestTerminal_StartIsNoopWithoutTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer func() { _ = r.Close(); _ = w.Close() }()

	term := NewTerminal(r, NewDispatcher(), nil, nil)
	assert.False(t, term.Interactive())
	require.NoError(t, term.Start(t.Context()))
	require.NoError(t, term.Stop(t.Context()))
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := io.WriteString(NewCRLFWriter(&buf), "a\nb\n")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\r\nb\r\n", buf.String())
}
