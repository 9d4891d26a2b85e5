package html

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/core/loss"
)

func into(t *testing.T, input string) *ast.Document {
	t.Helper()
	native, err := ReadMarkupText(input)
	if err != nil {
		t.Fatalf("ReadMarkupText(%q) error = %v", input, err)
	}
	doc, err := ConvertInto(native)
	if err != nil {
		t.Fatalf("ConvertInto error = %v", err)
	}
	if err := ast.Validate(doc); err != nil {
		t.Fatalf("tree violates invariants: %v", err)
	}
	return doc
}

func write(t *testing.T, doc *ast.Document, opts format.Options) (string, *loss.Report) {
	t.Helper()
	native, report, err := ConvertFrom(doc, opts)
	if err != nil {
		t.Fatalf("ConvertFrom error = %v", err)
	}
	out, err := native.WriteMarkupText()
	if err != nil {
		t.Fatalf("WriteMarkupText error = %v", err)
	}
	return out, report
}

func TestConvertInto(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "heading",
			input: "<h1>Title!</h1>",
			want:  `(Document (Heading level=1 (Text "Title!")))`,
		},
		{
			name:  "paragraph with italics",
			input: "<p>Some <i>meaningful</i> text.</p>",
			want:  `(Document (Paragraph (Text "Some ") (Emphasis (Text "meaningful")) (Text " text.")))`,
		},
		{
			name:  "loose inline content",
			input: "loose <b>text</b><p>para</p>",
			want:  `(Document (Paragraph (Text "loose ") (Strong (Text "text"))) (Paragraph (Text "para")))`,
		},
		{
			name:  "whitespace collapsed",
			input: "<p>\n  a\n  b  </p>\n\n<p></p>",
			want:  `(Document (Paragraph (Text "a b")))`,
		},
		{
			name:  "lists",
			input: `<ul><li>one</li><li><p>a</p><p>b</p></li></ul><ol start="3"><li>c</li></ol>`,
			want: `(Document (List ordered=false (ListItem (Paragraph (Text "one"))) ` +
				`(ListItem (Paragraph (Text "a")) (Paragraph (Text "b")))) ` +
				`(List ordered=true start=3 (ListItem (Paragraph (Text "c")))))`,
		},
		{
			name:  "code block",
			input: "<pre><code class=\"hl language-go\">x := 1\n</code></pre>",
			want:  `(Document (CodeBlock lang="go" "x := 1"))`,
		},
		{
			name:  "quote and rule",
			input: "<blockquote><p>q</p></blockquote><hr>",
			want:  `(Document (Quote (Paragraph (Text "q"))) (ThematicBreak))`,
		},
		{
			name:  "table",
			input: "<table><tr><th>a</th></tr><tr><td>1</td></tr></table>",
			want:  `(Document (Table (TableRow header (TableCell (Text "a"))) (TableRow (TableCell (Text "1")))))`,
		},
		{
			name:  "styles",
			input: `<p><span style="color: #F00; font-size: 12px">x</span><font color="blue" size="3">y</font><span>plain</span></p>`,
			want: `(Document (Paragraph (Styled color=#ff0000 size=12px (Text "x")) ` +
				`(Styled color=blue size=3 (Text "y")) (Text "plain")))`,
		},
		{
			name:  "invalid style kept raw",
			input: `<p><span style="color: nope">x</span></p>`,
			want:  `(Document (Paragraph (RawInline format=html "<span style=\"color: nope\">x</span>")))`,
		},
		{
			name:  "links images and breaks",
			input: `<p><a href="https://go.dev">Go</a><br><img src="c.png" alt="cat"><a>bare</a></p>`,
			want: `(Document (Paragraph (Link target="https://go.dev" (Text "Go")) (LineBreak) ` +
				`(Image target="c.png" alt="cat") (Text "bare")))`,
		},
		{
			name:  "inline formatting",
			input: "<p><u>u</u><del>s</del><code>a  b</code></p>",
			want:  `(Document (Paragraph (Underline (Text "u")) (Strikethrough (Text "s")) (Code "a  b")))`,
		},
		{
			name:  "unknown elements",
			input: `<div class="x">hi</div><p>a <mark>b</mark></p>`,
			want: `(Document (Raw format=html "<div class=\"x\">hi</div>") ` +
				`(Paragraph (Text "a ") (RawInline format=html "<mark>b</mark>")))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ast.Dump(into(t, tt.input)); got != tt.want {
				t.Errorf("Dump() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"<h1>Title!</h1>",
		"<p>Some <em>meaningful</em> text.</p>",
		"<p>a</p>\n<p>b</p>",
		"<ul><li>one</li><li>two<ul><li>nested</li></ul></li></ul>",
		`<ol start="3"><li>c</li></ol>`,
		"<ul><li><p>a</p><p>b</p></li></ul>",
		`<pre><code class="language-go">x := 1</code></pre>`,
		"<blockquote><p>q</p></blockquote>\n<hr/>",
		"<table><thead><tr><th>a</th></tr></thead><tbody><tr><td>1</td></tr></tbody></table>",
		`<p><u>u</u> <s>s</s> <code>c</code> <a href="https://go.dev">Go</a><br/><img src="c.png" alt="cat"/></p>`,
		`<p><span style="color: #ff0000; font-size: 12px">x</span> <font color="blue" size="3">y</font></p>`,
		"<p>Tom &amp; Jerry &lt;3</p>",
		`<div class="x">hi</div>`,
		"<p>a <mark>b</mark></p>",
	}

	for _, in := range inputs {
		out, report := write(t, into(t, in), format.Options{})
		if out != in {
			t.Errorf("round trip of %q = %q", in, out)
		}
		if report.HasLoss() {
			t.Errorf("round trip of %q reported loss: %v", in, report.Reasons())
		}
	}
}

func TestConvertFromDegrades(t *testing.T) {
	doc := &ast.Document{Blocks: []ast.Block{
		&ast.Quote{Attribution: "Ann", Children: []ast.Block{&ast.Paragraph{Children: []ast.Inline{&ast.Text{Value: "q"}}}}},
		&ast.Raw{Format: "markdown", Text: "**x**"},
	}}
	out, report := write(t, doc, format.Options{})
	if out != "<blockquote><p>q</p></blockquote>\n<p>**x**</p>" {
		t.Errorf("output = %q", out)
	}
	want := []string{"quote attribution unsupported", "raw markdown markup not representable in html"}
	if got := report.Reasons(); !reflect.DeepEqual(got, want) {
		t.Errorf("reasons = %v, want %v", got, want)
	}
}

func TestWriteSanitized(t *testing.T) {
	doc := &ast.Document{Blocks: []ast.Block{
		&ast.Raw{Format: Name, Text: `<script>alert(1)</script>`},
		&ast.Paragraph{Children: []ast.Inline{&ast.Link{Target: "https://go.dev", Children: []ast.Inline{&ast.Text{Value: "ok"}}}}},
	}}
	native, _, err := ConvertFrom(doc, format.Options{})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := (&Handler{}).WriteMarkup(&buf, native, format.WriteOptions{Sanitize: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "script") {
		t.Errorf("sanitized output still has a script: %q", out)
	}
	if !strings.Contains(out, ">ok</a></p>") {
		t.Errorf("sanitized output lost content: %q", out)
	}
}

func TestReadMarkupCharset(t *testing.T) {
	native, err := ReadMarkup(strings.NewReader("<p>caf\xe9</p>"), format.ReadOptions{Charset: "windows-1252"})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := ConvertInto(native)
	if err != nil {
		t.Fatal(err)
	}
	if got := ast.Dump(doc); got != `(Document (Paragraph (Text "café")))` {
		t.Errorf("Dump() = %s", got)
	}
}

func TestParseStyle(t *testing.T) {
	got := parseStyle("COLOR: Red ; font-size:1.5em; margin: 0 auto;")
	want := map[string]string{"color": "Red", "font-size": "1.5em", "margin": "0 auto"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseStyle() = %v, want %v", got, want)
	}
}

func TestHandlerRejectsForeignTrees(t *testing.T) {
	h := &Handler{}
	if _, err := h.ConvertInto(nil); !errors.Is(err, tmerrors.ErrInvalidInput) {
		t.Errorf("ConvertInto(nil) error = %v", err)
	}
	f, _ := ReadMarkupText("<p>x</p>")
	if _, err := h.ConvertInto(f); err != nil {
		t.Fatal(err)
	}
	if _, err := h.ConvertInto(f); !errors.Is(err, tmerrors.ErrStructuralViolation) {
		t.Errorf("second ConvertInto error = %v", err)
	}
}
