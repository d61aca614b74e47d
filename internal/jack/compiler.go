// Package jack is the recursive-descent parser and code generator for
// the Jack language: it recognizes the grammar and emits stack-VM
// commands directly as productions are recognized (syntax-directed
// translation). No AST is materialized.
package jack

import (
	"fmt"

	"github.com/zhixiangli/nand2tetris/internal/symtab"
	"github.com/zhixiangli/nand2tetris/internal/token"
	"github.com/zhixiangli/nand2tetris/internal/vmwriter"
)

// CompileError is returned by Compile when the parser aborts on a
// malformed or unexpected token. The compiler does not attempt
// recovery and records no line/column information beyond the
// offending token's own text.
type CompileError struct {
	Token  token.Token
	Reason interface{}
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("jack: compile error near %v: %v", e.Token, e.Reason)
}

var binaryOps = map[string]vmwriter.Op{
	"+": vmwriter.Add,
	"-": vmwriter.Sub,
	"&": vmwriter.And,
	"|": vmwriter.Or,
	"<": vmwriter.Lt,
	">": vmwriter.Gt,
	"=": vmwriter.Eq,
}

// Compiler drives one compilation unit (one Jack class) from a
// pre-lexed token slice to VM commands.
type Compiler struct {
	toks []token.Token
	pos  int

	out     *vmwriter.Writer
	symbols *symtab.Table

	className      string
	subroutineName string
	labelID        int
}

// New returns a Compiler that will parse tokens (as produced by
// token.All) and emit VM commands to out.
func New(tokens []token.Token, out *vmwriter.Writer) *Compiler {
	return &Compiler{
		toks:    tokens,
		out:     out,
		symbols: symtab.New(),
	}
}

// Compile parses and emits the one class the token stream holds,
// recovering any internal panic (the parser's abort-on-first-error
// mechanism) into a returned *CompileError.
func (c *Compiler) Compile() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CompileError{Token: c.peek(), Reason: r}
		}
	}()
	c.compileClass()
	return nil
}

func (c *Compiler) peek() token.Token {
	if c.pos >= len(c.toks) {
		return token.Token{}
	}
	return c.toks[c.pos]
}

func (c *Compiler) advance() token.Token {
	tok := c.peek()
	c.pos++
	return tok
}

// consume verifies the upcoming tokens equal expected in sequence,
// panicking (the parser aborts fatally at the first mismatch).
// With no arguments it just advances past one token.
func (c *Compiler) consume(expected ...string) {
	if len(expected) == 0 {
		c.advance()
		return
	}
	for _, text := range expected {
		if !c.peek().Is(text) {
			panic(fmt.Sprintf("expected %q, got %q", text, c.peek().Literal))
		}
		c.advance()
	}
}

func (c *Compiler) expectIdentifier() string {
	tok := c.peek()
	if tok.Type != token.Identifier {
		panic(fmt.Sprintf("expected identifier, got %q", tok.Literal))
	}
	c.advance()
	return tok.Literal
}

func (c *Compiler) expectType() string {
	tok := c.peek()
	if tok.IsAny("int", "char", "boolean") {
		c.advance()
		return tok.Literal
	}
	return c.expectIdentifier()
}

func (c *Compiler) nextLabelID() int {
	id := c.labelID
	c.labelID++
	return id
}

// compileClass: 'class' className '{' classVarDec* subroutineDec* '}'
func (c *Compiler) compileClass() {
	c.consume("class")
	c.symbols.Reset()
	c.className = c.expectIdentifier()
	c.consume("{")
	for c.peek().IsAny("static", "field") {
		c.compileClassVarDec()
	}
	for c.peek().IsAny("constructor", "function", "method") {
		c.compileSubroutineDec()
	}
	c.consume("}")
}

// compileClassVarDec: ('static'|'field') type varName (',' varName)* ';'
func (c *Compiler) compileClassVarDec() {
	var kind symtab.StorageClass
	switch {
	case c.peek().Is("static"):
		kind = symtab.Static
	case c.peek().Is("field"):
		kind = symtab.Field
	default:
		panic(fmt.Sprintf("expected \"static\" or \"field\", got %q", c.peek().Literal))
	}
	c.advance()
	c.compileVarSequence(kind)
}

func (c *Compiler) compileVarSequence(kind symtab.StorageClass) {
	typ := c.expectType()
	for {
		name := c.expectIdentifier()
		c.symbols.Define(name, typ, kind)
		if !c.peek().Is(",") {
			break
		}
		c.consume(",")
	}
	c.consume(";")
}

// compileSubroutineDec: (constructor|function|method) (void|type) name
// '(' parameterList ')' subroutineBody
func (c *Compiler) compileSubroutineDec() {
	c.symbols.StartSubroutine()

	kind := c.advance().Literal // constructor|function|method
	if kind == "method" {
		c.symbols.Define("this", c.className, symtab.Argument)
	}

	if !c.peek().Is("void") {
		c.expectType()
	} else {
		c.advance()
	}

	c.subroutineName = c.expectIdentifier()
	c.consume("(")
	if !c.peek().Is(")") {
		c.compileParameterList()
	}
	c.consume(")")

	c.compileSubroutineBody(kind)
}

// compileParameterList: ((type varName) (',' type varName)*)?
func (c *Compiler) compileParameterList() {
	for {
		typ := c.expectType()
		name := c.expectIdentifier()
		c.symbols.Define(name, typ, symtab.Argument)
		if !c.peek().Is(",") {
			break
		}
		c.consume(",")
	}
}

// compileSubroutineBody: '{' varDec* function-entry-prologue statements '}'
func (c *Compiler) compileSubroutineBody(kind string) {
	c.consume("{")
	for c.peek().Is("var") {
		c.compileVarDec()
	}

	c.out.Function(c.className+"."+c.subroutineName, c.symbols.VarCount(symtab.Local))

	switch kind {
	case "method":
		c.out.Push(vmwriter.Argument, 0)
		c.out.Pop(vmwriter.Pointer, 0)
	case "constructor":
		c.out.Push(vmwriter.Constant, c.symbols.VarCount(symtab.Field))
		c.out.Call("Memory.alloc", 1)
		c.out.Pop(vmwriter.Pointer, 0)
	}

	c.compileStatements()
	c.consume("}")
}

// compileVarDec: 'var' type varName (',' varName)* ';'
func (c *Compiler) compileVarDec() {
	c.consume("var")
	c.compileVarSequence(symtab.Local)
}

func (c *Compiler) compileStatements() {
	for {
		switch {
		case c.peek().Is("let"):
			c.compileLet()
		case c.peek().Is("if"):
			c.compileIf()
		case c.peek().Is("while"):
			c.compileWhile()
		case c.peek().Is("do"):
			c.compileDo()
		case c.peek().Is("return"):
			c.compileReturn()
		default:
			return
		}
	}
}

// compileLet: 'let' varName ('[' expression ']')? '=' expression ';'
func (c *Compiler) compileLet() {
	c.consume("let")
	name := c.expectIdentifier()

	isArray := c.peek().Is("[")
	if isArray {
		c.consume("[")
		c.pushVariable(name)
		c.compileExpression()
		c.out.Arithmetic(vmwriter.Add)
		c.consume("]")
	}

	c.consume("=")
	c.compileExpression()
	c.consume(";")

	if isArray {
		c.out.Pop(vmwriter.Temp, 0)
		c.out.Pop(vmwriter.Pointer, 1)
		c.out.Push(vmwriter.Temp, 0)
		c.out.Pop(vmwriter.That, 0)
	} else {
		c.popVariable(name)
	}
}

// compileIf: 'if' '(' expression ')' '{' statements '}' ('else' '{' statements '}')?
func (c *Compiler) compileIf() {
	id := c.nextLabelID()
	skipIf := fmt.Sprintf("SKIP_IF.%d", id)
	skipElse := fmt.Sprintf("SKIP_ELSE.%d", id)

	c.consume("if", "(")
	c.compileExpression()
	c.consume(")")
	c.out.Arithmetic(vmwriter.Not)
	c.out.IfGoto(skipIf)

	c.consume("{")
	c.compileStatements()
	c.consume("}")
	c.out.Goto(skipElse)
	c.out.Label(skipIf)

	if c.peek().Is("else") {
		c.consume("else", "{")
		c.compileStatements()
		c.consume("}")
	}
	c.out.Label(skipElse)
}

// compileWhile: 'while' '(' expression ')' '{' statements '}'
func (c *Compiler) compileWhile() {
	id := c.nextLabelID()
	top := fmt.Sprintf("WHILE.%d", id)
	skip := fmt.Sprintf("SKIP_WHILE.%d", id)

	c.out.Label(top)
	c.consume("while", "(")
	c.compileExpression()
	c.consume(")")
	c.out.Arithmetic(vmwriter.Not)
	c.out.IfGoto(skip)

	c.consume("{")
	c.compileStatements()
	c.consume("}")
	c.out.Goto(top)
	c.out.Label(skip)
}

// compileDo: 'do' subroutineCall ';'
func (c *Compiler) compileDo() {
	c.consume("do")
	name := c.expectIdentifier()
	c.compileSubroutineCall(name)
	c.out.Pop(vmwriter.Temp, 0)
	c.consume(";")
}

// compileReturn: 'return' expression? ';'
func (c *Compiler) compileReturn() {
	c.consume("return")
	if c.peek().Is(";") {
		c.out.Push(vmwriter.Constant, 0)
	} else {
		c.compileExpression()
	}
	c.consume(";")
	c.out.Return()
}

var opTokens = []string{"+", "-", "*", "/", "&", "|", "<", ">", "="}

func (c *Compiler) isOpToken() bool {
	return c.peek().IsAny(opTokens...)
}

// compileExpression: term (op term)*, left to right, no precedence.
func (c *Compiler) compileExpression() {
	c.compileTerm()
	for c.isOpToken() {
		op := c.advance().Literal
		c.compileTerm()
		c.emitOp(op)
	}
}

func (c *Compiler) emitOp(op string) {
	switch op {
	case "*":
		c.out.Call("Math.multiply", 2)
	case "/":
		c.out.Call("Math.divide", 2)
	default:
		c.out.Arithmetic(binaryOps[op])
	}
}

// compileExpressionList: (expression (',' expression)*)?, returns the
// number of expressions compiled.
func (c *Compiler) compileExpressionList() int {
	if !c.startsExpression() {
		return 0
	}
	n := 1
	c.compileExpression()
	for c.peek().Is(",") {
		c.consume(",")
		c.compileExpression()
		n++
	}
	return n
}

func (c *Compiler) startsExpression() bool {
	tok := c.peek()
	switch tok.Type {
	case token.IntegerConstant, token.StringConstant, token.Keyword, token.Identifier:
		return true
	}
	return tok.IsAny("(", "-", "~")
}

// compileTerm dispatches on lookahead.
func (c *Compiler) compileTerm() {
	tok := c.peek()
	switch {
	case tok.Type == token.IntegerConstant:
		n, err := tok.Int()
		if err != nil {
			panic(err)
		}
		c.out.Push(vmwriter.Constant, int(n))
		c.advance()

	case tok.Type == token.StringConstant:
		c.compileStringConstant(tok.Literal)
		c.advance()

	case tok.Is("true"):
		c.out.Push(vmwriter.Constant, 1)
		c.out.Arithmetic(vmwriter.Neg)
		c.advance()
	case tok.Is("false"), tok.Is("null"):
		c.out.Push(vmwriter.Constant, 0)
		c.advance()
	case tok.Is("this"):
		c.out.Push(vmwriter.Pointer, 0)
		c.advance()

	case tok.Is("("):
		c.consume("(")
		c.compileExpression()
		c.consume(")")

	case tok.Is("-"):
		c.advance()
		c.compileTerm()
		c.out.Arithmetic(vmwriter.Neg)
	case tok.Is("~"):
		c.advance()
		c.compileTerm()
		c.out.Arithmetic(vmwriter.Not)

	case tok.Type == token.Identifier:
		c.compileIdentifierTerm()

	default:
		panic(fmt.Sprintf("unexpected token %q", tok.Literal))
	}
}

// compileStringConstant: push constant len(s); call String.new 1;
// then push constant <code(c)>; call String.appendChar 2 per char.
func (c *Compiler) compileStringConstant(s string) {
	c.out.Push(vmwriter.Constant, len(s))
	c.out.Call("String.new", 1)
	for _, ch := range s {
		c.out.Push(vmwriter.Constant, int(ch))
		c.out.Call("String.appendChar", 2)
	}
}

// compileIdentifierTerm handles the three identifier-led term shapes:
// a[i], a subroutine call, or a bare variable reference.
func (c *Compiler) compileIdentifierTerm() {
	name := c.expectIdentifier()
	switch {
	case c.peek().Is("["):
		c.consume("[")
		c.pushVariable(name)
		c.compileExpression()
		c.out.Arithmetic(vmwriter.Add)
		c.consume("]")
		c.out.Pop(vmwriter.Pointer, 1)
		c.out.Push(vmwriter.That, 0)
	case c.peek().Is("("), c.peek().Is("."):
		c.compileSubroutineCall(name)
	default:
		c.pushVariable(name)
	}
}

// compileSubroutineCall implements the three call shapes (method call
// on a known variable, static call on a class name, implicit method
// call on the current object), shared between compileDo (which is
// given the already-consumed leading identifier) and compileTerm.
func (c *Compiler) compileSubroutineCall(name string) {
	switch {
	case c.peek().Is("."):
		c.consume(".")
		method := c.expectIdentifier()
		c.consume("(")

		if sym, ok := c.symbols.Lookup(name); ok {
			// shape 2: instance method call on a known variable
			c.pushVariable(name)
			n := c.compileExpressionList()
			c.consume(")")
			c.out.Call(sym.Type+"."+method, n+1)
		} else {
			// shape 3: static function/constructor call on a class name
			n := c.compileExpressionList()
			c.consume(")")
			c.out.Call(name+"."+method, n)
		}

	case c.peek().Is("("):
		// shape 1: implicit method call on the current object
		c.out.Push(vmwriter.Pointer, 0)
		c.consume("(")
		n := c.compileExpressionList()
		c.consume(")")
		c.out.Call(c.className+"."+name, n+1)

	default:
		panic(fmt.Sprintf("expected \"(\" or \".\", got %q", c.peek().Literal))
	}
}

// pushVariable emits push <segment> <index> for a resolved variable name.
func (c *Compiler) pushVariable(name string) {
	sym, ok := c.symbols.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("unknown variable %q", name))
	}
	c.out.Push(vmwriter.Segment(sym.Kind.Segment()), sym.Index)
}

// popVariable emits pop <segment> <index> for a resolved variable name.
func (c *Compiler) popVariable(name string) {
	sym, ok := c.symbols.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("unknown variable %q", name))
	}
	c.out.Pop(vmwriter.Segment(sym.Kind.Segment()), sym.Index)
}
