// Package vmtranslate expands stack-VM commands into Hack assembly,
// one command at a time, threading the call/return frame discipline
// of the call/return protocol.
package vmtranslate

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedCommand is wrapped with the offending line in the
// error returned for any unrecognized VM command or segment.
var ErrUnsupportedCommand = fmt.Errorf("vmtranslate: unsupported command")

var segmentBase = map[string]string{
	"local":    "LCL",
	"argument": "ARG",
	"this":     "THIS",
	"that":     "THAT",
}

var arithmeticOps = map[string]struct{}{
	"add": {}, "sub": {}, "neg": {}, "eq": {}, "gt": {}, "lt": {}, "and": {}, "or": {}, "not": {},
}

// Translator translates the stack-VM commands of one input file into
// assembly text, qualifying static-segment references with filename
// so multiple files can be concatenated without collision.
type Translator struct {
	filename string
	labelID  int
	out      *strings.Builder
	trace    func(format string, args ...interface{})
}

// New returns a Translator for one input file named filename (the
// basename used to qualify static variables).
func New(filename string) *Translator {
	return &Translator{filename: filename, out: &strings.Builder{}}
}

// SetTrace registers a callback invoked with every emitted assembly
// line, for --trace output.
func (t *Translator) SetTrace(fn func(format string, args ...interface{})) {
	t.trace = fn
}

// Output returns the assembly text emitted so far.
func (t *Translator) Output() string {
	return t.out.String()
}

func (t *Translator) emit(lines ...string) {
	for _, l := range lines {
		t.out.WriteString(l)
		t.out.WriteByte('\n')
		if t.trace != nil {
			t.trace("%s", l)
		}
	}
}

func (t *Translator) nextLabelID() int {
	id := t.labelID
	t.labelID++
	return id
}

// TranslateLine translates one already comment-stripped, non-blank VM
// command line.
func (t *Translator) TranslateLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	t.emit("// " + line)

	cmd := fields[0]
	switch cmd {
	case "push", "pop":
		if len(fields) != 3 {
			return fmt.Errorf("%w: %q", ErrUnsupportedCommand, line)
		}
		index, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrUnsupportedCommand, line, err)
		}
		if cmd == "push" {
			return t.translatePush(fields[1], index)
		}
		return t.translatePop(fields[1], index)
	case "label":
		return t.translateLabel(fields, line)
	case "goto":
		return t.translateGoto(fields, line)
	case "if-goto":
		return t.translateIfGoto(fields, line)
	case "function":
		return t.translateFunction(fields, line)
	case "call":
		return t.translateCall(fields, line)
	case "return":
		t.translateReturn()
		return nil
	default:
		if _, ok := arithmeticOps[cmd]; ok {
			return t.translateArithmetic(cmd)
		}
		return fmt.Errorf("%w: %q", ErrUnsupportedCommand, line)
	}
}

func (t *Translator) translateLabel(fields []string, line string) error {
	if len(fields) != 2 {
		return fmt.Errorf("%w: %q", ErrUnsupportedCommand, line)
	}
	t.emit(fmt.Sprintf("(%s)", fields[1]))
	return nil
}

func (t *Translator) translateGoto(fields []string, line string) error {
	if len(fields) != 2 {
		return fmt.Errorf("%w: %q", ErrUnsupportedCommand, line)
	}
	t.emitGoto(fields[1])
	return nil
}

func (t *Translator) emitGoto(label string) {
	t.emit(fmt.Sprintf("@%s", label), "0;JMP")
}

func (t *Translator) translateIfGoto(fields []string, line string) error {
	if len(fields) != 2 {
		return fmt.Errorf("%w: %q", ErrUnsupportedCommand, line)
	}
	// pop stack into D, then jump on D != 0
	t.emit(
		"@SP",
		"AM=M-1",
		"D=M",
		fmt.Sprintf("@%s", fields[1]),
		"D;JNE",
	)
	return nil
}

// selectAddress computes the assembly to leave A pointing at the
// effective address of segment[index] (constant has no address).
func (t *Translator) selectAddress(segment string, index int) ([]string, error) {
	switch segment {
	case "constant":
		return nil, nil
	case "pointer":
		return []string{fmt.Sprintf("@%d", 3+index)}, nil
	case "temp":
		return []string{fmt.Sprintf("@%d", 5+index)}, nil
	case "static":
		return []string{fmt.Sprintf("@%s.%d", t.filename, index)}, nil
	default:
		base, ok := segmentBase[segment]
		if !ok {
			return nil, fmt.Errorf("%w: unknown segment %q", ErrUnsupportedCommand, segment)
		}
		return []string{
			fmt.Sprintf("@%s", base),
			"D=M",
			fmt.Sprintf("@%d", index),
			"A=A+D",
		}, nil
	}
}

func (t *Translator) translatePush(segment string, index int) error {
	addr, err := t.selectAddress(segment, index)
	if err != nil {
		return err
	}
	t.emit(addr...)
	if segment == "constant" {
		t.emit(fmt.Sprintf("@%d", index), "D=A")
	} else {
		t.emit("D=M")
	}
	t.emit("@SP", "M=M+1", "A=M-1", "M=D")
	return nil
}

func (t *Translator) translatePop(segment string, index int) error {
	if segment == "constant" {
		return fmt.Errorf("%w: pop constant is not valid", ErrUnsupportedCommand)
	}
	addr, err := t.selectAddress(segment, index)
	if err != nil {
		return err
	}
	t.emit(addr...)
	t.emit(
		"D=A",
		"@R13",
		"M=D",
		"@SP",
		"AM=M-1",
		"D=M",
		"@R13",
		"A=M",
		"M=D",
	)
	return nil
}

func (t *Translator) translateArithmetic(op string) error {
	switch op {
	case "add":
		return t.binary("+")
	case "sub":
		return t.binary("-")
	case "and":
		return t.binary("&")
	case "or":
		return t.binary("|")
	case "neg":
		return t.unary("-")
	case "not":
		return t.unary("!")
	case "eq":
		return t.compare("JEQ")
	case "gt":
		return t.compare("JGT")
	case "lt":
		return t.compare("JLT")
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedCommand, op)
	}
}

func (t *Translator) unary(operator string) error {
	t.emit(
		"@SP",
		"A=M-1",
		fmt.Sprintf("M=%sM", operator),
	)
	return nil
}

func (t *Translator) binary(operator string) error {
	t.emit(
		"@SP",
		"AM=M-1",
		"D=M",
		"A=A-1",
		fmt.Sprintf("M=M%sD", operator),
	)
	return nil
}

// compare mints two local labels via the monotonic label counter to
// avoid collisions.
func (t *Translator) compare(jump string) error {
	id := t.nextLabelID()
	trueLabel := fmt.Sprintf("COMPARE_TRUE.%d", id)
	endLabel := fmt.Sprintf("COMPARE_END.%d", id)
	t.emit(
		"@SP",
		"AM=M-1",
		"D=M",
		"A=A-1",
		"D=M-D",
		fmt.Sprintf("@%s", trueLabel),
		fmt.Sprintf("D;%s", jump),
		"@SP",
		"A=M-1",
		"M=0",
	)
	t.emitGoto(endLabel)
	t.emit(
		fmt.Sprintf("(%s)", trueLabel),
		"@SP",
		"A=M-1",
		"M=-1",
		fmt.Sprintf("(%s)", endLabel),
	)
	return nil
}

// translateFunction emits `(name)` followed by pushing 0 nVars times
// to initialize the function's locals.
func (t *Translator) translateFunction(fields []string, line string) error {
	if len(fields) != 3 {
		return fmt.Errorf("%w: %q", ErrUnsupportedCommand, line)
	}
	name := fields[1]
	n, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedCommand, line, err)
	}
	t.emit(fmt.Sprintf("(%s)", name))
	for i := 0; i < n; i++ {
		if err := t.translatePush("constant", 0); err != nil {
			return err
		}
	}
	return nil
}

// translateCall pushes the return address and caller frame, resets
// ARG/LCL for the callee, and jumps.
func (t *Translator) translateCall(fields []string, line string) error {
	if len(fields) != 3 {
		return fmt.Errorf("%w: %q", ErrUnsupportedCommand, line)
	}
	name := fields[1]
	nArgs, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedCommand, line, err)
	}

	id := t.nextLabelID()
	retLabel := fmt.Sprintf("%s$ret.%d", name, id)

	t.emit(fmt.Sprintf("@%s", retLabel), "D=A", "@SP", "M=M+1", "A=M-1", "M=D")
	for _, base := range []string{"LCL", "ARG", "THIS", "THAT"} {
		t.emit(fmt.Sprintf("@%s", base), "D=M", "@SP", "M=M+1", "A=M-1", "M=D")
	}

	// ARG = SP - 5 - nArgs
	t.emit(
		"@SP", "D=M",
		fmt.Sprintf("@%d", 5+nArgs), "D=D-A",
		"@ARG", "M=D",
		// LCL = SP
		"@SP", "D=M",
		"@LCL", "M=D",
	)
	t.emitGoto(name)
	t.emit(fmt.Sprintf("(%s)", retLabel))
	return nil
}

// translateReturn computes retAddr before overwriting ARG[0], so that
// a zero-argument frame (where retAddr and ARG[0] coincide) is not
// clobbered before it's read.
func (t *Translator) translateReturn() {
	t.emit(
		// endFrame (R13) = LCL
		"@LCL", "D=M", "@R13", "M=D",
		// retAddr (R14) = *(endFrame - 5), read first
		"@5", "A=D-A", "D=M", "@R14", "M=D",
		// *ARG = pop()
		"@SP", "AM=M-1", "D=M", "@ARG", "A=M", "M=D",
		// SP = ARG + 1
		"@ARG", "D=M+1", "@SP", "M=D",
		// restore THAT, THIS, ARG, LCL from endFrame-1..-4
		"@R13", "AM=M-1", "D=M", "@THAT", "M=D",
		"@R13", "AM=M-1", "D=M", "@THIS", "M=D",
		"@R13", "AM=M-1", "D=M", "@ARG", "M=D",
		"@R13", "AM=M-1", "D=M", "@LCL", "M=D",
		// jump to retAddr
		"@R14", "A=M", "0;JMP",
	)
}

// StripCommentsAndBlanks removes `//` line comments and blank lines
// from raw VM source text, returning one cleaned command per line.
func StripCommentsAndBlanks(source string) []string {
	var lines []string
	for _, raw := range strings.Split(source, "\n") {
		line := raw
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
