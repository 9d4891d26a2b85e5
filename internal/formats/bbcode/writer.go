package bbcode

import (
	"bufio"
	"io"
	"sort"
	"strings"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/markup"
)

// WriteMarkupText renders the document as BBCode.
func (d *Document) WriteMarkupText() (string, error) {
	return markup.WriteString(d.write)
}

// WriteMarkup writes the document to w, flushing and closing it.
func (d *Document) WriteMarkup(w io.Writer) error {
	return markup.WriteScoped(w, d.write)
}

func (d *Document) write(w *bufio.Writer) error {
	for _, n := range d.Nodes {
		writeNode(w, n)
	}
	if err := w.Flush(); err != nil {
		return &tmerrors.WriteError{Format: Name, Err: tmerrors.NewIO("write", "", err)}
	}
	return nil
}

func writeNode(w *bufio.Writer, n *Node) {
	if n.IsText() {
		if n.Verbatim {
			w.WriteString(n.Text)
		} else {
			w.WriteString(escapeText(n.Text))
		}
		return
	}

	if literalTags[n.Tag] {
		w.WriteString(literal(openTag(n), n.Tag, n.TextContent()))
		return
	}
	w.WriteString(openTag(n))
	if n.Tag == "*" || voidTags[n.Tag] {
		for _, c := range n.Children {
			writeNode(w, c)
		}
		return
	}
	for _, c := range n.Children {
		writeNode(w, c)
	}
	w.WriteString("[/" + n.Tag + "]")
}

// literal wraps body in a literal element. A body that would end the
// element early is split after every '[' into repeated elements, which
// the reader joins again.
func literal(open, tag, body string) string {
	closing := "[/" + tag + "]"
	if literalSafe(open, tag, body) {
		return open + body + closing
	}
	var sb strings.Builder
	for _, piece := range strings.SplitAfter(body, "[") {
		if piece == "" {
			continue
		}
		sb.WriteString(open + piece + closing)
	}
	return sb.String()
}

// literalSafe reports whether open+body+close lexes with the only
// matching close at the end.
func literalSafe(open, tag, body string) bool {
	if !strings.Contains(body, "[") {
		return true
	}
	stream, err := bbParser.ParseString("", open+body+"[/"+tag+"]")
	if err != nil || len(stream.Tokens) < 2 || stream.Tokens[0].Open != open {
		return false
	}
	last := len(stream.Tokens) - 1
	for i, t := range stream.Tokens[1:] {
		if t.Close != "" && strings.EqualFold(t.Close[2:len(t.Close)-1], tag) {
			return i+1 == last
		}
	}
	return false
}

func openTag(n *Node) string {
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(n.Tag)
	if n.Param != "" {
		sb.WriteByte('=')
		sb.WriteString(quoteParam(n.Param))
	}
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(" " + k + "=" + quoteAttr(n.Attrs[k]))
	}
	sb.WriteByte(']')
	return sb.String()
}

// quoteParam quotes a tag param that would not read back unquoted.
// A param holding both quote kinds is written bare with ']' escaped.
func quoteParam(p string) string {
	p = strings.ReplaceAll(p, "\n", " ")
	if !strings.ContainsAny(p, " \t\"']") && strings.TrimSpace(p) == p {
		return p
	}
	switch {
	case !strings.Contains(p, `"`):
		return `"` + p + `"`
	case !strings.Contains(p, "'"):
		return "'" + p + "'"
	}
	return strings.ReplaceAll(p, "]", "%5D")
}

func quoteAttr(v string) string {
	v = strings.ReplaceAll(v, "\n", " ")
	if !strings.Contains(v, `"`) {
		return `"` + v + `"`
	}
	if !strings.Contains(v, "'") {
		return "'" + v + "'"
	}
	return `"` + strings.ReplaceAll(v, `"`, "'") + `"`
}

// escapeText wraps text in [noparse] when any part of it would be read as a tag.
func escapeText(s string) string {
	if !looksLikeMarkup(s) {
		return s
	}
	return literal("[noparse]", "noparse", s)
}

// looksLikeMarkup reports whether the lexer would find a tag in s.
func looksLikeMarkup(s string) bool {
	if !strings.Contains(s, "[") {
		return false
	}
	stream, err := bbParser.ParseString("", s)
	if err != nil {
		return true
	}
	for _, t := range stream.Tokens {
		if t.Text == "" {
			return true
		}
	}
	return false
}
