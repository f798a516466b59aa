package render

import "strings"

// latexEscaper replaces LaTeX special characters in a single pass, so escape
// sequences inserted for one character are never re-escaped by another rule.
var latexEscaper = strings.NewReplacer(
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
	`\`, `\textbackslash{}`,
	"<", `\textless{}`,
	">", `\textgreater{}`,
)

// EscapeLaTeX makes arbitrary text safe for inclusion in LaTeX source.
func EscapeLaTeX(text string) string {
	return latexEscaper.Replace(text)
}
