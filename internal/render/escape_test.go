package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLaTeXSpecialCharacters(t *testing.T) {
	assert.Equal(t, `R\&D \& AI`, EscapeLaTeX("R&D & AI"))
	assert.Equal(t, `100\% uptime`, EscapeLaTeX("100% uptime"))
	assert.Equal(t, `\$5M budget`, EscapeLaTeX("$5M budget"))
	assert.Equal(t, `C\# and F\#`, EscapeLaTeX("C# and F#"))
	assert.Equal(t, `snake\_case\_name`, EscapeLaTeX("snake_case_name"))
	assert.Equal(t, `\{braces\}`, EscapeLaTeX("{braces}"))
}

func TestEscapeLaTeXSymbolCommands(t *testing.T) {
	assert.Equal(t, `\textasciitilde{}user`, EscapeLaTeX("~user"))
	assert.Equal(t, `2\textasciicircum{}10`, EscapeLaTeX("2^10"))
	assert.Equal(t, `C:\textbackslash{}temp`, EscapeLaTeX(`C:\temp`))
	assert.Equal(t, `\textless{}T\textgreater{}`, EscapeLaTeX("<T>"))
}

// The escaper must run in one pass: the backslashes it inserts are not
// themselves escaped again.
func TestEscapeLaTeXSinglePass(t *testing.T) {
	assert.Equal(t, `\&`, EscapeLaTeX("&"))
	assert.Equal(t, `\textbackslash{}\&`, EscapeLaTeX(`\&`))
}

func TestEscapeLaTeXPlainTextUntouched(t *testing.T) {
	text := "Designed distributed systems in Go."

	assert.Equal(t, text, EscapeLaTeX(text))
}
