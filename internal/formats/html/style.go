package html

import (
	"strings"

	"github.com/gorilla/css/scanner"

	"github.com/FocuswithJustin/transmark/core/ast"
)

// parseStyle returns the declarations of a style attribute keyed by
// lower-case property name.
func parseStyle(style string) map[string]string {
	decls := make(map[string]string)
	s := scanner.New(style)

	var prop string
	var value []string
	inValue := false
	flush := func() {
		if prop != "" && len(value) > 0 {
			decls[prop] = strings.TrimSpace(strings.Join(value, ""))
		}
		prop, value, inValue = "", nil, false
	}

	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			break
		}
		switch {
		case tok.Type == scanner.TokenChar && tok.Value == ";":
			flush()
		case tok.Type == scanner.TokenChar && tok.Value == ":" && !inValue:
			inValue = prop != ""
		case inValue:
			if tok.Type != scanner.TokenComment {
				value = append(value, tok.Value)
			}
		case tok.Type == scanner.TokenIdent && prop == "":
			prop = strings.ToLower(tok.Value)
		}
	}
	flush()
	return decls
}

// formatStyle renders color and size as a style attribute value.
func formatStyle(color *ast.Color, size *ast.Size) string {
	var parts []string
	if color != nil {
		parts = append(parts, "color: "+color.String())
	}
	if size != nil {
		parts = append(parts, "font-size: "+size.String())
	}
	return strings.Join(parts, "; ")
}
