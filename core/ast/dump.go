package ast

import (
	"strconv"
	"strings"
)

// Dump renders the tree rooted at n as a deterministic S-expression, e.g.
//
//	(Document (Paragraph (Text "Some ") (Emphasis (Text "meaningful"))))
//
// Two trees with equal dumps are structurally identical.
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n)
	return sb.String()
}

func dump(sb *strings.Builder, n Node) {
	if isNil(n) {
		sb.WriteString("nil")
		return
	}
	sb.WriteByte('(')
	sb.WriteString(string(n.Kind()))

	switch n := n.(type) {
	case *Heading:
		sb.WriteString(" level=" + strconv.Itoa(n.Level))
	case *List:
		sb.WriteString(" ordered=" + strconv.FormatBool(n.Ordered))
		if n.Start > 0 {
			sb.WriteString(" start=" + strconv.Itoa(n.Start))
		}
	case *CodeBlock:
		if n.Language != "" {
			sb.WriteString(" lang=" + strconv.Quote(n.Language))
		}
		sb.WriteString(" " + strconv.Quote(n.Text))
	case *Quote:
		if n.Attribution != "" {
			sb.WriteString(" by=" + strconv.Quote(n.Attribution))
		}
	case *TableRow:
		if n.Header {
			sb.WriteString(" header")
		}
	case *Raw:
		sb.WriteString(" format=" + n.Format + " " + strconv.Quote(n.Text))
	case *RawInline:
		sb.WriteString(" format=" + n.Format + " " + strconv.Quote(n.Text))
	case *Text:
		sb.WriteString(" " + strconv.Quote(n.Value))
	case *Code:
		sb.WriteString(" " + strconv.Quote(n.Value))
	case *Link:
		sb.WriteString(" target=" + strconv.Quote(n.Target))
	case *Image:
		sb.WriteString(" target=" + strconv.Quote(n.Target) + " alt=" + strconv.Quote(n.Alt))
	case *Styled:
		if n.Color != nil {
			sb.WriteString(" color=" + n.Color.String())
		}
		if n.Size != nil {
			sb.WriteString(" size=" + n.Size.String())
		}
	}

	for _, c := range Children(n) {
		sb.WriteByte(' ')
		dump(sb, c.Node)
	}
	sb.WriteByte(')')
}
