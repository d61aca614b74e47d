package token_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhixiangli/nand2tetris/internal/token"
)

func TestTokenizer_KeywordsSymbolsIdentifiers(t *testing.T) {
	src := `class Foo { field int x; }`
	toks, err := token.All(strings.NewReader(src))
	require.NoError(t, err)

	want := []token.Token{
		{Type: token.Keyword, Literal: "class"},
		{Type: token.Identifier, Literal: "Foo"},
		{Type: token.Symbol, Literal: "{"},
		{Type: token.Keyword, Literal: "field"},
		{Type: token.Keyword, Literal: "int"},
		{Type: token.Identifier, Literal: "x"},
		{Type: token.Symbol, Literal: ";"},
		{Type: token.Symbol, Literal: "}"},
	}
	assert.Equal(t, want, toks)
}

func TestTokenizer_IntegerAndStringConstants(t *testing.T) {
	toks, err := token.All(strings.NewReader(`123 "hello world"`))
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Token{Type: token.IntegerConstant, Literal: "123"}, toks[0])
	assert.Equal(t, token.Token{Type: token.StringConstant, Literal: "hello world"}, toks[1])
}

func TestTokenizer_CommentHandling(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "line comment strips to end of line",
			src:  "let x = 1; // trailing comment\nlet y = 2;",
			want: []string{"let", "x", "=", "1", ";", "let", "y", "=", "2", ";"},
		},
		{
			name: "block comment spanning lines is dropped",
			src:  "/* a block\n comment */ return;",
			want: []string{"return", ";"},
		},
		{
			name: "unterminated block comment is lenient, consumes to EOF",
			src:  "return; /* never closed",
			want: []string{"return", ";"},
		},
		{
			name: "empty line comment",
			src:  "return;//\n",
			want: []string{"return", ";"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := token.All(strings.NewReader(tc.src))
			require.NoError(t, err)
			var kept []string
			for _, tok := range toks {
				kept = append(kept, tok.Literal)
			}
			assert.Equal(t, tc.want, kept)
		})
	}
}

func TestTokenizer_UnterminatedStringIsFatal(t *testing.T) {
	_, err := token.All(strings.NewReader(`"never closed`))
	assert.ErrorIs(t, err, token.ErrUnterminatedString)
}

func TestTokenizer_RestartableFromBeginning(t *testing.T) {
	src := `do Output.printInt(1);`
	first, err := token.All(strings.NewReader(src))
	require.NoError(t, err)
	second, err := token.All(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTokenizer_KeywordLikeIdentifierPrefixStaysIdentifier(t *testing.T) {
	// "classify" must not be mis-split into the keyword "class" plus "ify".
	toks, err := token.All(strings.NewReader(`classify`))
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, token.Identifier, toks[0].Type)
	assert.Equal(t, "classify", toks[0].Literal)
}

func TestToken_IntRange(t *testing.T) {
	tok := token.Token{Type: token.IntegerConstant, Literal: "32767"}
	n, err := tok.Int()
	require.NoError(t, err)
	assert.Equal(t, token.Word(32767), n)
}

func TestTokenizer_RoundTrip(t *testing.T) {
	// Token round-trip invariant: concatenating tokens with a
	// space separator (quoting string constants) and re-lexing yields the
	// same token sequence.
	src := `let s = "hi there"; let n = 42;`
	toks, err := token.All(strings.NewReader(src))
	require.NoError(t, err)

	var rebuilt []string
	for _, tok := range toks {
		if tok.Type == token.StringConstant {
			rebuilt = append(rebuilt, `"`+tok.Literal+`"`)
		} else {
			rebuilt = append(rebuilt, tok.Literal)
		}
	}

	reToks, err := token.All(strings.NewReader(strings.Join(rebuilt, " ")))
	require.NoError(t, err)
	assert.Equal(t, toks, reToks)
}
