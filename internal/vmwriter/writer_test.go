package vmwriter_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhixiangli/nand2tetris/internal/vmwriter"
)

func TestWriter_Commands(t *testing.T) {
	for _, tc := range []struct {
		name string
		emit func(w *vmwriter.Writer)
		want string
	}{
		{name: "push", emit: func(w *vmwriter.Writer) { w.Push(vmwriter.Constant, 7) }, want: "push constant 7\n"},
		{name: "pop", emit: func(w *vmwriter.Writer) { w.Pop(vmwriter.Local, 0) }, want: "pop local 0\n"},
		{name: "arithmetic add", emit: func(w *vmwriter.Writer) { w.Arithmetic(vmwriter.Add) }, want: "add\n"},
		{name: "label", emit: func(w *vmwriter.Writer) { w.Label("LOOP") }, want: "label LOOP\n"},
		{name: "goto", emit: func(w *vmwriter.Writer) { w.Goto("LOOP") }, want: "goto LOOP\n"},
		{name: "if-goto", emit: func(w *vmwriter.Writer) { w.IfGoto("LOOP") }, want: "if-goto LOOP\n"},
		{name: "call", emit: func(w *vmwriter.Writer) { w.Call("Math.multiply", 2) }, want: "call Math.multiply 2\n"},
		{name: "function", emit: func(w *vmwriter.Writer) { w.Function("Main.main", 3) }, want: "function Main.main 3\n"},
		{name: "return", emit: func(w *vmwriter.Writer) { w.Return() }, want: "return\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := vmwriter.New(&buf)
			tc.emit(w)
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestWriter_EmitsOneCommandPerLineInOrder(t *testing.T) {
	var buf bytes.Buffer
	w := vmwriter.New(&buf)

	w.Push(vmwriter.Constant, 7)
	w.Push(vmwriter.Constant, 8)
	w.Arithmetic(vmwriter.Add)

	want := "push constant 7\npush constant 8\nadd\n"
	assert.Equal(t, want, buf.String())
}

func TestWriter_SetTraceInvokedPerCommand(t *testing.T) {
	var buf bytes.Buffer
	w := vmwriter.New(&buf)

	var traced []string
	w.SetTrace(func(format string, args ...interface{}) {
		traced = append(traced, format)
	})

	w.Push(vmwriter.Constant, 1)
	w.Arithmetic(vmwriter.Neg)

	assert.Len(t, traced, 2)
}
