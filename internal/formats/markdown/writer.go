package markdown

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/markup"
)

// hardBreak is the canonical hard line break.
const hardBreak = "\\\n"

// WriteMarkupText renders the document as Markdown.
func (d *Document) WriteMarkupText() (string, error) {
	return markup.WriteString(d.write)
}

// WriteMarkup writes the document to w, flushing and closing it.
func (d *Document) WriteMarkup(w io.Writer) error {
	return markup.WriteScoped(w, d.write)
}

func (d *Document) write(w *bufio.Writer) error {
	if d.Root == nil {
		return nil
	}
	mw := newWriter(d)
	out := mw.blocks(d.Root, "\n\n")
	if mw.err != nil {
		return &tmerrors.WriteError{Format: Name, Err: mw.err}
	}
	if out != "" {
		w.WriteString(out)
		w.WriteString("\n")
	}
	if err := w.Flush(); err != nil {
		return &tmerrors.WriteError{Format: Name, Err: tmerrors.NewIO("write", "", err)}
	}
	return nil
}

type writer struct {
	src []byte
	gfm bool
	err error

	// labels maps footnote indexes to their reference labels.
	labels map[int]string
}

func newWriter(d *Document) *writer {
	w := &writer{src: d.Source, gfm: d.Flavor != FlavorCommonMark, labels: make(map[int]string)}
	if d.Root == nil {
		return w
	}
	gast.Walk(d.Root, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if fn, ok := n.(*east.Footnote); ok && entering {
			w.labels[fn.Index] = string(fn.Ref)
		}
		return gast.WalkContinue, nil
	})
	return w
}

func (w *writer) fail(n gast.Node) {
	if w.err == nil {
		w.err = tmerrors.NewStructural("", n.Kind().String(), "cannot write "+n.Kind().String())
	}
}

// blocks renders the block children of parent joined by sep.
func (w *writer) blocks(parent gast.Node, sep string) string {
	var parts []string
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		parts = append(parts, w.block(n))
	}
	return strings.Join(parts, sep)
}

func (w *writer) block(n gast.Node) string {
	switch n := n.(type) {
	case *gast.Paragraph, *gast.TextBlock:
		return w.inlines(n, false)

	case *gast.Heading:
		content := headingText(w.inlines(n, false))
		prefix := strings.Repeat("#", n.Level)
		if content == "" {
			return prefix
		}
		return prefix + " " + content

	case *gast.ThematicBreak:
		return "---"

	case *gast.FencedCodeBlock:
		return fence(string(n.Language(w.src)), linesValue(n, w.src))

	case *gast.CodeBlock:
		return fence("", linesValue(n, w.src))

	case *gast.Blockquote:
		return prefixLines(w.blocks(n, "\n\n"), "> ", ">")

	case *gast.List:
		return w.list(n)

	case *gast.HTMLBlock:
		return linesValue(n, w.src)

	case *RawBlock:
		return n.Markup

	case *east.Table:
		return w.table(n)

	case *east.FootnoteList:
		return w.blocks(n, "\n\n")

	case *east.Footnote:
		return w.footnote(n)
	}

	w.fail(n)
	return ""
}

// footnote renders a footnote definition, indenting continuation lines.
func (w *writer) footnote(n *east.Footnote) string {
	first, rest, _ := strings.Cut(w.blocks(n, "\n\n"), "\n")
	out := "[^" + string(n.Ref) + "]: " + first
	if rest != "" {
		out += "\n" + prefixLines(rest, "    ", "")
	}
	return out
}

func (w *writer) footnoteRef(n *east.FootnoteLink) string {
	label, ok := w.labels[n.Index]
	if !ok {
		label = strconv.Itoa(n.Index + 1)
	}
	return "[^" + label + "]"
}

// headingText escapes a trailing run of '#' that would read as a closing
// sequence.
func headingText(s string) string {
	trimmed := strings.TrimRight(s, "#")
	if trimmed == s || !(trimmed == "" || strings.HasSuffix(trimmed, " ")) {
		return s
	}
	return trimmed + "\\" + s[len(trimmed):]
}

// fence renders a fenced code block, lengthening the fence past any
// backtick run in the code.
func fence(lang, code string) string {
	size := max(3, longestRun(code, '`')+1)
	f := strings.Repeat("`", size)
	if code == "" {
		return f + lang + "\n" + f
	}
	return f + lang + "\n" + code + "\n" + f
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return longest
}

// prefixLines prefixes every line of s; empty lines get blank instead.
func prefixLines(s, prefix, blank string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = blank
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func (w *writer) list(l *gast.List) string {
	sep, inner := "\n\n", "\n\n"
	if l.IsTight {
		sep, inner = "\n", "\n"
	}
	number := l.Start
	if number == 0 {
		number = 1
	}

	var items []string
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "-"
		if l.IsOrdered() {
			marker = strconv.Itoa(number) + "."
			number++
		}
		content := w.blocks(item, inner)
		indent := strings.Repeat(" ", len(marker)+1)
		if content == "" {
			items = append(items, marker)
			continue
		}
		body := prefixLines(content, indent, "")
		items = append(items, marker+" "+body[len(indent):])
	}
	return strings.Join(items, sep)
}

func (w *writer) table(t *east.Table) string {
	var rows [][]string
	columns := 0
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, w.inlines(cell, true))
		}
		columns = max(columns, len(cells))
		rows = append(rows, cells)
	}

	var sb strings.Builder
	for i, cells := range rows {
		for len(cells) < columns {
			cells = append(cells, "")
		}
		sb.WriteString("|")
		for _, c := range cells {
			sb.WriteString(" " + c + " |")
		}
		if i == 0 {
			sb.WriteString("\n|")
			sb.WriteString(strings.Repeat(" --- |", columns))
		}
		if i < len(rows)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// inlineWriter renders inline content, tracking whether output is at the
// start of a line.
type inlineWriter struct {
	*writer
	sb  strings.Builder
	esc escapeContext
}

func (w *writer) inlines(parent gast.Node, table bool) string {
	iw := &inlineWriter{writer: w, esc: w.escapeContext(parent, table)}
	iw.children(parent)
	return strings.TrimSuffix(iw.sb.String(), hardBreak)
}

func (iw *inlineWriter) lineStart() bool {
	s := iw.sb.String()
	return s == "" || strings.HasSuffix(s, "\n")
}

func (iw *inlineWriter) children(parent gast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		iw.inline(n)
	}
}

func (iw *inlineWriter) inline(n gast.Node) {
	switch n := n.(type) {
	case *gast.Text:
		iw.sb.WriteString(iw.escape(textValue(n, iw.src)))
		switch {
		case n.HardLineBreak():
			iw.sb.WriteString(hardBreak)
		case n.SoftLineBreak():
			iw.sb.WriteString("\n")
		}

	case *gast.String:
		iw.sb.WriteString(iw.escape(string(n.Value)))

	case *gast.Emphasis:
		iw.delimited(strings.Repeat("*", n.Level), n)

	case *east.Strikethrough:
		iw.delimited("~~", n)

	case *gast.CodeSpan:
		iw.sb.WriteString(codeSpan(codeSpanValue(n, iw.src)))

	case *gast.Link:
		target := string(n.Destination)
		if autolink, ok := iw.autolink(n, target); ok {
			iw.sb.WriteString(autolink)
			return
		}
		iw.sb.WriteString("[")
		iw.children(n)
		iw.sb.WriteString("](" + destination(target) + ")")

	case *gast.AutoLink:
		iw.sb.WriteString("<" + string(n.Label(iw.src)) + ">")

	case *gast.Image:
		var alt strings.Builder
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*gast.Text); ok {
				alt.WriteString(textValue(t, iw.src))
			}
		}
		iw.sb.WriteString("![" + escapeText(alt.String(), false, iw.esc) + "](" + destination(string(n.Destination)) + ")")

	case *gast.RawHTML:
		iw.sb.WriteString(rawValue(n, iw.src))

	case *RawInline:
		iw.sb.WriteString(n.Markup)

	case *east.FootnoteLink:
		iw.sb.WriteString(iw.footnoteRef(n))

	case *east.FootnoteBacklink:

	default:
		iw.fail(n)
	}
}

// delimited writes the children of n between delim. Whitespace at either
// edge of the content is moved outside the delimiters, where it cannot stop
// them from opening or closing.
func (iw *inlineWriter) delimited(delim string, n gast.Node) {
	before := iw.sb.String()
	iw.sb.WriteString(delim)
	iw.children(n)
	body := iw.sb.String()[len(before)+len(delim):]

	core := strings.TrimLeft(body, " \t\n")
	lead := body[:len(body)-len(core)]
	trimmed := trimTrailingSpace(core)
	trail := core[len(trimmed):]

	iw.sb.Reset()
	iw.sb.WriteString(before + lead)
	if trimmed != "" {
		iw.sb.WriteString(delim + trimmed + delim)
	}
	iw.sb.WriteString(trail)
}

// trimTrailingSpace removes trailing whitespace and hard breaks from
// rendered inline markup, leaving escaped backslashes alone.
func trimTrailingSpace(s string) string {
	for s != "" {
		switch last := s[len(s)-1]; {
		case last == ' ' || last == '\t':
			s = s[:len(s)-1]
		case last == '\n':
			s = s[:len(s)-1]
			slashes := len(s) - len(strings.TrimRight(s, "\\"))
			if slashes%2 == 1 {
				s = s[:len(s)-1]
			}
		default:
			return s
		}
	}
	return s
}

func (iw *inlineWriter) escape(s string) string {
	return escapeText(s, iw.lineStart(), iw.esc)
}

// autolink renders a link whose only text is its target as <target>.
func (iw *inlineWriter) autolink(n *gast.Link, target string) (string, bool) {
	t, ok := n.FirstChild().(*gast.Text)
	if !ok || n.ChildCount() != 1 || textValue(t, iw.src) != target {
		return "", false
	}
	if !strings.Contains(target, ":") || strings.ContainsAny(target, " <>\t\n") {
		return "", false
	}
	return "<" + target + ">", true
}

// destination renders a link destination, using the pointy-bracket form
// when it contains spaces or parentheses.
func destination(target string) string {
	if target == "" {
		return "<>"
	}
	if strings.ContainsAny(target, " ()<>") {
		r := strings.NewReplacer("<", "\\<", ">", "\\>")
		return "<" + r.Replace(target) + ">"
	}
	return target
}

// codeSpan renders a code span, lengthening the backtick fence past any run
// in the code and padding content that would otherwise be trimmed.
func codeSpan(code string) string {
	f := strings.Repeat("`", longestRun(code, '`')+1)
	pad := strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") ||
		(len(code) >= 2 && code[0] == ' ' && code[len(code)-1] == ' ' && strings.TrimSpace(code) != "")
	if pad {
		return f + " " + code + " " + f
	}
	return f + code + f
}

// escapeContext records which characters need escaping throughout one
// block of inline content.
type escapeContext struct {
	// table escapes pipes.
	table bool

	// star and underscore escape delimiter runs that could open or close
	// emphasis. A lone run cannot, having nothing to pair with.
	star       bool
	underscore bool
}

// escapeContext scans the inline content of parent for emphasis delimiters.
func (w *writer) escapeContext(parent gast.Node, table bool) escapeContext {
	ctx := escapeContext{table: table}
	stars, underscores := 0, 0
	count := func(s string) {
		st, us := delimiterRuns(s)
		stars += st
		underscores += us
	}
	gast.Walk(parent, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *gast.Emphasis:
			ctx.star = true
		case *gast.Text:
			count(textValue(n, w.src))
		case *gast.String:
			count(string(n.Value))
		case *gast.CodeSpan, *gast.RawHTML, *gast.AutoLink, *RawInline:
			return gast.WalkSkipChildren, nil
		}
		return gast.WalkContinue, nil
	})
	ctx.star = ctx.star || stars > 1
	ctx.underscore = underscores > 1
	return ctx
}

// delimiterRuns counts the runs of '*' and '_' in s that could open or
// close emphasis.
func delimiterRuns(s string) (stars, underscores int) {
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		if r != '*' && r != '_' {
			i++
			continue
		}
		j := runEnd(runes, i)
		if activeRun(runes, i, j) {
			if r == '*' {
				stars++
			} else {
				underscores++
			}
		}
		i = j
	}
	return stars, underscores
}

func runEnd(runes []rune, i int) int {
	j := i
	for j < len(runes) && runes[j] == runes[i] {
		j++
	}
	return j
}

// activeRun reports whether the delimiter run runes[i:j] is left- or
// right-flanking in the CommonMark sense. A run at the edge of s borders
// unknown text and counts as active.
func activeRun(runes []rune, i, j int) bool {
	if i == 0 || j == len(runes) {
		return true
	}
	prev, next := runes[i-1], runes[j]
	left := !unicode.IsSpace(next) && (!isPunct(next) || unicode.IsSpace(prev) || isPunct(prev))
	right := !unicode.IsSpace(prev) && (!isPunct(prev) || unicode.IsSpace(next) || isPunct(next))
	if runes[i] == '_' {
		return (left && (!right || isPunct(prev))) || (right && (!left || isPunct(next)))
	}
	return left || right
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// headingMarker reports whether rest starts with an ATX heading opener: one
// to six '#' followed by a space, a tab or the end of the text.
func headingMarker(rest []rune) bool {
	k := runEnd(rest, 0)
	return k <= 6 && (k == len(rest) || rest[k] == ' ' || rest[k] == '\t')
}

// escapeText backslash-escapes characters that would read as Markdown.
func escapeText(s string, lineStart bool, ctx escapeContext) string {
	var sb strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		atLine := (i == 0 && lineStart) || (i > 0 && runes[i-1] == '\n')
		switch r {
		case '\\', '`', '[', ']', '<', '~':
			sb.WriteByte('\\')
		case '*', '_':
			j := runEnd(runes, i)
			active := (r == '*' && ctx.star) || (r == '_' && ctx.underscore)
			escape := atLine || (active && activeRun(runes, i, j))
			for ; i < j; i++ {
				if escape {
					sb.WriteByte('\\')
				}
				sb.WriteRune(r)
			}
			i--
			continue
		case '&':
			if entityAhead(runes[i+1:]) {
				sb.WriteByte('\\')
			}
		case '|':
			if ctx.table {
				sb.WriteByte('\\')
			}
		case '#':
			if atLine && headingMarker(runes[i:]) {
				sb.WriteByte('\\')
			}
		case '>', '=':
			if atLine {
				sb.WriteByte('\\')
			}
		case '-', '+':
			if atLine && (i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == r) {
				sb.WriteByte('\\')
			}
		case '.', ')':
			if i > 0 && unicode.IsDigit(runes[i-1]) && digitsFromLineStart(runes, i, lineStart) {
				sb.WriteByte('\\')
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// entityAhead reports whether rest starts with an entity or numeric
// character reference body such as "amp;" or "#65;".
func entityAhead(rest []rune) bool {
	if len(rest) > 0 && rest[0] == '#' {
		rest = rest[1:]
	}
	for i, r := range rest {
		if r == ';' {
			return i > 0
		}
		if r > unicode.MaxASCII || !isWord(r) {
			return false
		}
	}
	return false
}

func isWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// digitsFromLineStart reports whether runes[:i] ends in a run of digits that
// starts a line.
func digitsFromLineStart(runes []rune, i int, lineStart bool) bool {
	j := i
	for j > 0 && unicode.IsDigit(runes[j-1]) {
		j--
	}
	if j == 0 {
		return lineStart
	}
	return runes[j-1] == '\n'
}
