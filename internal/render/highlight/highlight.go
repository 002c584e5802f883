package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	DarkStyle  = "catppuccin-mocha"
	LightStyle = "catppuccin-latte"
)

// Func colors a single line of source text for a 256-color terminal.
type Func func(line string) string

// JSON returns a line highlighter for JSON source using the named chroma
// style. Unknown styles fall back to chroma's default.
func JSON(style string) Func {
	return forLexer("json", style)
}

func forLexer(name, style string) Func {
	lexer := lexers.Get(name)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	st := styles.Get(style)
	if st == nil {
		st = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	return func(line string) string {
		if strings.TrimSpace(line) == "" {
			return line
		}
		it, err := lexer.Tokenise(nil, line)
		if err != nil {
			return line
		}
		var b strings.Builder
		if err := formatter.Format(&b, st, it); err != nil {
			return line
		}
		return strings.TrimRight(b.String(), "\n")
	}
}
