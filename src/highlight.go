package src

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
)

// highlight renders source text with ANSI colors for the preview pane.
// Falls back to the plain text on any tokenization failure.
func highlight(path, code, theme string) string {
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "github-dark"
	if theme == "light" {
		styleName = "github"
	}
	style := chromastyles.Get(styleName)
	if style == nil {
		style = chromastyles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return code
	}

	var out strings.Builder
	if err := formatter.Format(&out, style, iterator); err != nil {
		return code
	}
	return out.String()
}
