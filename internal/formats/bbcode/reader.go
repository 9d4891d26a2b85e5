package bbcode

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/core/markup"
)

// bbLexer splits BBCode into tags and text.
// Order matters: closing tags and bullets are tried before opening tags.
var bbLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Closing tag: [/name]
	{Name: "Close", Pattern: `\[/[a-zA-Z][a-zA-Z0-9]*\]`},
	// List bullet: [*]
	{Name: "Bullet", Pattern: `\[\*\]`},
	// Opening tag: [name], [name=param] or [name key="value" ...].
	// Quoted params and values may contain ']'.
	{Name: "Open", Pattern: `\[[a-zA-Z][a-zA-Z0-9]*(=("[^"\n]*"|'[^'\n]*'|[^\]\n]*)|(\s+[a-zA-Z][a-zA-Z0-9-]*=("[^"\n]*"|'[^'\n]*'))*)\]`},
	// Anything else, including a lone '['
	{Name: "Text", Pattern: `[^\[]+|\[`},
})

// tokenStream is the flat token sequence of a BBCode document.
type tokenStream struct {
	Tokens []*token `parser:"@@*"`
}

// token is a single lexed BBCode token.
type token struct {
	Pos lexer.Position

	Close  string `parser:"  @Close"`
	Bullet string `parser:"| @Bullet"`
	Open   string `parser:"| @Open"`
	Text   string `parser:"| @Text"`
}

func (t *token) value() string {
	return t.Close + t.Bullet + t.Open + t.Text
}

// bbParser is the Participle parser for BBCode token streams.
var bbParser = participle.MustBuild[tokenStream](
	participle.Lexer(bbLexer),
)

var attrPattern = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9-]*)=("([^"]*)"|'([^']*)')`)

// parseOpen splits an opening tag into name, param and attributes.
func parseOpen(s string) (name, param string, attrs map[string]string) {
	body := s[1 : len(s)-1]
	if i := strings.IndexByte(body, '='); i >= 0 && !strings.ContainsAny(body[:i], " \t\r\n") {
		return strings.ToLower(body[:i]), unquote(body[i+1:]), nil
	}
	i := strings.IndexAny(body, " \t\r\n")
	if i < 0 {
		return strings.ToLower(body), "", nil
	}
	attrs = make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(body[i:], -1) {
		value := m[3]
		if strings.HasPrefix(m[2], "'") {
			value = m[4]
		}
		attrs[strings.ToLower(m[1])] = value
	}
	return strings.ToLower(body[:i]), "", attrs
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// frame is an element still waiting for its closing tag.
type frame struct {
	node *Node
	// implicit frames ([*]) are closed by the next bullet or the list end.
	implicit bool
}

type assembler struct {
	input  string
	tokens []*token
	pos    int
	root   *Node
	stack  []frame
}

// ReadMarkupText parses BBCode. Unclosed and unopened tags fail with a
// ReadError carrying the byte offset of the offending tag.
func ReadMarkupText(s string) (*Document, error) {
	stream, err := bbParser.ParseString("", s)
	if err != nil {
		return nil, &tmerrors.ReadError{Format: Name, Offset: -1, Err: tmerrors.NewStructural("", "", err.Error())}
	}
	a := &assembler{input: s, tokens: stream.Tokens, root: &Node{}}
	if err := a.run(); err != nil {
		return nil, err
	}
	return &Document{Nodes: a.root.Children}, nil
}

// ReadMarkup parses BBCode from r, closing it if it is an io.Closer.
func ReadMarkup(r io.Reader, opts format.ReadOptions) (*Document, error) {
	text, err := markup.ReadAll(r, markup.Options{Charset: opts.Charset})
	if err != nil {
		offset := int64(-1)
		var ee *tmerrors.EncodingError
		if tmerrors.As(err, &ee) {
			offset = ee.Offset
		}
		return nil, &tmerrors.ReadError{Format: Name, Offset: offset, Err: err}
	}
	return ReadMarkupText(text)
}

func readError(offset int, tag, message string) error {
	return &tmerrors.ReadError{
		Format: Name,
		Offset: int64(offset),
		Err:    tmerrors.NewStructural("", tag, message),
	}
}

func (a *assembler) top() *Node {
	if len(a.stack) == 0 {
		return a.root
	}
	return a.stack[len(a.stack)-1].node
}

func (a *assembler) appendText(s string, offset int) {
	parent := a.top()
	if n := len(parent.Children); n > 0 && parent.Children[n-1].IsText() && !parent.Children[n-1].Verbatim {
		parent.Children[n-1].Text += s
		return
	}
	parent.Children = append(parent.Children, &Node{Text: s, Offset: offset})
}

// insideList reports whether the innermost explicit element is a list.
func (a *assembler) insideList() bool {
	for i := len(a.stack) - 1; i >= 0; i-- {
		f := a.stack[i]
		if f.implicit {
			continue
		}
		switch f.node.Tag {
		case "list", "ul", "ol":
			return true
		}
		return false
	}
	return false
}

func (a *assembler) run() error {
	for a.pos < len(a.tokens) {
		t := a.tokens[a.pos]
		a.pos++
		offset := t.Pos.Offset

		switch {
		case t.Text != "":
			a.appendText(t.Text, offset)

		case t.Bullet != "":
			if !a.insideList() {
				a.appendText(t.Bullet, offset)
				continue
			}
			if n := len(a.stack); a.stack[n-1].implicit {
				a.closeTop(offset)
			}
			item := &Node{Tag: "*", Offset: offset}
			a.top().Children = append(a.top().Children, item)
			a.stack = append(a.stack, frame{node: item, implicit: true})

		case t.Open != "":
			name, param, attrs := parseOpen(t.Open)
			node := &Node{Tag: name, Param: param, Attrs: attrs, Offset: offset}

			if voidTags[name] {
				node.Source = t.Open
				a.top().Children = append(a.top().Children, node)
				continue
			}
			if literalTags[name] {
				if err := a.literal(node, t); err != nil {
					return err
				}
				continue
			}
			a.top().Children = append(a.top().Children, node)
			a.stack = append(a.stack, frame{node: node})

		case t.Close != "":
			name := strings.ToLower(t.Close[2 : len(t.Close)-1])
			if err := a.close(name, offset, offset+len(t.Close)); err != nil {
				return err
			}
		}
	}

	for i := len(a.stack) - 1; i >= 0; i-- {
		if f := a.stack[i]; !f.implicit {
			return readError(f.node.Offset, f.node.Tag, fmt.Sprintf("unclosed tag [%s]", f.node.Tag))
		}
	}
	return nil
}

// closeTop pops an implicit frame, setting its source span.
func (a *assembler) closeTop(end int) {
	f := a.stack[len(a.stack)-1]
	a.stack = a.stack[:len(a.stack)-1]
	f.node.Source = a.input[f.node.Offset:end]
}

func (a *assembler) close(name string, offset, end int) error {
	// A list end also ends its open item.
	if n := len(a.stack); n > 0 && a.stack[n-1].implicit && name != "*" {
		a.closeTop(offset)
	}
	if len(a.stack) == 0 {
		return readError(offset, name, fmt.Sprintf("unopened tag [/%s]", name))
	}
	f := a.stack[len(a.stack)-1]
	if f.node.Tag != name {
		return readError(f.node.Offset, f.node.Tag, fmt.Sprintf("unclosed tag [%s] before [/%s]", f.node.Tag, name))
	}
	a.stack = a.stack[:len(a.stack)-1]
	f.node.Source = a.input[f.node.Offset:end]
	return nil
}

// literal consumes tokens up to the closing tag of a literal element.
// An identical opening tag right after the close continues the same
// element, so text the writer had to split reads back whole.
func (a *assembler) literal(node *Node, open *token) error {
	var sb strings.Builder
	for a.pos < len(a.tokens) {
		t := a.tokens[a.pos]
		a.pos++
		if t.Close == "" || !strings.EqualFold(t.Close[2:len(t.Close)-1], node.Tag) {
			sb.WriteString(t.value())
			continue
		}
		if a.continues(open) {
			a.pos++
			continue
		}
		end := t.Pos.Offset + len(t.Close)
		if node.Tag == "noparse" {
			a.appendText(sb.String(), node.Offset)
			return nil
		}
		node.Source = a.input[node.Offset:end]
		node.Children = []*Node{{Text: sb.String(), Verbatim: true, Offset: open.Pos.Offset + len(open.Open)}}
		a.top().Children = append(a.top().Children, node)
		return nil
	}
	return readError(node.Offset, node.Tag, fmt.Sprintf("unclosed tag [%s]", node.Tag))
}

// continues reports whether the next token reopens the same literal element.
func (a *assembler) continues(open *token) bool {
	return a.pos < len(a.tokens) && a.tokens[a.pos].Open == open.Open
}
