package hackasm_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhixiangli/nand2tetris/internal/hackasm"
)

func TestAssemble_BitExactSimpleProgram(t *testing.T) {
	// @2, D=A, @3, D=D+A, @0, M=D  (2+3 stored at RAM[0])
	src := "@2\nD=A\n@3\nD=D+A\n@0\nM=D\n"
	got, err := hackasm.Assemble(src)
	require.NoError(t, err)

	want := strings.Join([]string{
		"0000000000000010", // @2
		"1110110000010000", // D=A
		"0000000000000011", // @3
		"1110000010010000", // D=D+A
		"0000000000000000", // @0
		"1110001100001000", // M=D
	}, "\n")
	assert.Equal(t, want, got)
}

func TestAssemble_SingleInstructionEncodings(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want string
	}{
		{name: "A-instruction small constant", src: "@2", want: "0000000000000010"},
		{name: "A-instruction screen symbol", src: "@SCREEN", want: "0100000000000000"},
		{name: "A-instruction keyboard symbol", src: "@KBD", want: "0110000000000000"},
		{name: "A-instruction SP symbol", src: "@SP", want: "0000000000000000"},
		{name: "C-instruction comp only", src: "D+A", want: "1110000010000000"},
		{name: "C-instruction with dest", src: "M=D", want: "1110001100001000"},
		{name: "C-instruction with jump", src: "0;JMP", want: "1110101010000111"},
		{name: "C-instruction register comp and jump", src: "D;JGT", want: "1110001100000001"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := hackasm.Assemble(tc.src + "\n")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAssemble_AllJumpMnemonics(t *testing.T) {
	for _, tc := range []struct {
		jump string
		want string
	}{
		{jump: "JGT", want: "1110101010000001"},
		{jump: "JEQ", want: "1110101010000010"},
		{jump: "JGE", want: "1110101010000011"},
		{jump: "JLT", want: "1110101010000100"},
		{jump: "JNE", want: "1110101010000101"},
		{jump: "JLE", want: "1110101010000110"},
		{jump: "JMP", want: "1110101010000111"},
	} {
		t.Run(tc.jump, func(t *testing.T) {
			got, err := hackasm.Assemble("0;" + tc.jump + "\n")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAssemble_LabelsResolveToFollowingInstructionIndex(t *testing.T) {
	src := "(LOOP)\n@LOOP\n0;JMP\n"
	got, err := hackasm.Assemble(src)
	require.NoError(t, err)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0000000000000000", lines[0]) // @LOOP -> address 0
	assert.Equal(t, "1110101010000111", lines[1]) // 0;JMP
}

func TestAssemble_VariablesAllocateFrom16(t *testing.T) {
	src := "@foo\n@bar\n@foo\n"
	got, err := hackasm.Assemble(src)
	require.NoError(t, err)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0000000000010000", lines[0]) // foo -> 16
	assert.Equal(t, "0000000000010001", lines[1]) // bar -> 17
	assert.Equal(t, "0000000000010000", lines[2]) // foo repeats -> 16
}

func TestAssemble_CommentsAndWhitespaceAreStripped(t *testing.T) {
	src := "// a header comment\n  @1  // inline comment\nD=A\n\n"
	got, err := hackasm.Assemble(src)
	require.NoError(t, err)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
}

func TestAssemble_Errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
	}{
		{name: "unknown computation", src: "D=Q\n"},
		{name: "unknown jump mnemonic", src: "0;JXX\n"},
		{name: "out of range A-instruction", src: "@99999\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := hackasm.Assemble(tc.src)
			assert.ErrorIs(t, err, hackasm.ErrUnsupportedInstruction)
		})
	}
}

func TestAssembleTrace_InvokesCallbackPerInstruction(t *testing.T) {
	var traced []string
	trace := func(format string, args ...interface{}) {
		traced = append(traced, fmt.Sprintf(format, args...))
	}
	_, err := hackasm.AssembleTrace("@2\nD=A\n", trace)
	require.NoError(t, err)
	require.Len(t, traced, 2)
	assert.Contains(t, traced[0], "@2")
	assert.Contains(t, traced[1], "D=A")
}
