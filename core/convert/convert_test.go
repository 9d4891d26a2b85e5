package convert

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/FocuswithJustin/transmark/core/ast"
	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/internal/cache"
	_ "github.com/FocuswithJustin/transmark/internal/embedded"
)

func TestScenarios(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		from, to string
		want     string
		reasons  []string
	}{
		{
			name:  "html heading to markdown",
			input: "<h1>Title!</h1>",
			from:  "html", to: "markdown",
			want: "# Title!\n",
		},
		{
			name:  "html emphasis to bbcode",
			input: "<p>Some <i>meaningful</i> text.</p>",
			from:  "html", to: "bbcode",
			want: "Some [i]meaningful[/i] text.",
		},
		{
			name:  "bbcode color to markdown",
			input: "[color=red]Hi[/color]",
			from:  "bbcode", to: "markdown",
			want:    "Hi\n",
			reasons: []string{"color unsupported"},
		},
		{
			name:  "markdown to plaintext",
			input: "# One\n\nTwo *three*\n",
			from:  "md", to: "txt",
			want:    "One\n\nTwo three\n",
			reasons: []string{"headings unsupported", "emphasis unsupported"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Convert(context.Background(), tt.input, tt.from, tt.to, Options{})
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if res.Output != tt.want {
				t.Errorf("Output = %q, want %q", res.Output, tt.want)
			}
			if got := res.Report.Reasons(); !reflect.DeepEqual(got, tt.reasons) && !(len(got) == 0 && len(tt.reasons) == 0) {
				t.Errorf("Reasons() = %q, want %q", got, tt.reasons)
			}
			if res.ID == "" {
				t.Error("expected a conversion ID")
			}
			if res.SourceHash != ast.HashString(tt.input) {
				t.Errorf("SourceHash = %s", res.SourceHash)
			}
		})
	}
}

func TestColorDiagnostic(t *testing.T) {
	res, err := Convert(context.Background(), "[color=red]Hi[/color]", "bbcode", "markdown", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Report.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %+v", res.Report.Diagnostics)
	}
	d := res.Report.Diagnostics[0]
	if d.NodeKind != ast.KindStyled || d.Reason != "color unsupported" {
		t.Errorf("Diagnostic = %+v", d)
	}
	if res.Report.SourceFormat != "bbcode" || res.Report.TargetFormat != "markdown" {
		t.Errorf("Report formats = %s -> %s", res.Report.SourceFormat, res.Report.TargetFormat)
	}
}

func TestInlineUnderDocumentRejected(t *testing.T) {
	em, err := ast.NewEmphasis(ast.NewText("x"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = ast.NewDocument(em)
	if !errors.Is(err, tmerrors.ErrStructuralViolation) {
		t.Errorf("NewDocument(Emphasis) error = %v, want StructuralViolation", err)
	}
}

func TestStrict(t *testing.T) {
	_, err := Convert(context.Background(), "[color=red]Hi[/color]", "bbcode", "markdown",
		Options{Options: format.Options{Strict: true}})
	if tmerrors.KindOf(err) != tmerrors.KindUnsupportedConstruct {
		t.Fatalf("Convert() error = %v, want UnsupportedConstruct", err)
	}
	var ce *tmerrors.ConversionError
	if !errors.As(err, &ce) || ce.Direction != tmerrors.DirectionFrom || ce.Format != "markdown" {
		t.Errorf("error = %#v, want a ConversionError from markdown", err)
	}

	if _, err := Convert(context.Background(), "[b]Hi[/b]", "bbcode", "markdown",
		Options{Options: format.Options{Strict: true}}); err != nil {
		t.Errorf("lossless strict conversion failed: %v", err)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		from, to string
		kind     tmerrors.Kind
	}{
		{"unknown source", "x", "rtf", "markdown", tmerrors.KindNotFound},
		{"unknown target", "x", "markdown", "docx", tmerrors.KindNotFound},
		{"unclosed bbcode", "[b]x", "bbcode", "html", tmerrors.KindStructuralViolation},
		{"invalid utf-8", "a\xffb", "markdown", "html", tmerrors.KindEncodingFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(context.Background(), tt.input, tt.from, tt.to, Options{})
			if got := tmerrors.KindOf(err); got != tt.kind {
				t.Errorf("KindOf(%v) = %s, want %s", err, got, tt.kind)
			}
		})
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Convert(ctx, "<p>x</p>", "html", "markdown", Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
}

const mixed = `<h2>Report</h2>
<p>Some <span style="color: red">red</span> and <u>underlined</u> text.</p>
<ul><li>one</li><li>two <a href="https://example.com">link</a></li></ul>
<table><tr><td>a</td><td>b</td></tr><tr><td>c</td></tr></table>
<blockquote><p>quoted</p></blockquote>
<pre><code class="language-go">fmt.Println()</code></pre>
<hr/>
<p>end</p>`

func TestDeterministic(t *testing.T) {
	for _, to := range []string{"markdown", "bbcode", "plaintext", "html"} {
		t.Run(to, func(t *testing.T) {
			first, err := Convert(context.Background(), mixed, "html", to, Options{})
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 3; i++ {
				again, err := Convert(context.Background(), mixed, "html", to, Options{})
				if err != nil {
					t.Fatal(err)
				}
				if again.Output != first.Output {
					t.Errorf("run %d output differs:\n%q\n%q", i, again.Output, first.Output)
				}
				if !reflect.DeepEqual(again.Report.Diagnostics, first.Report.Diagnostics) {
					t.Errorf("run %d diagnostics differ", i)
				}
			}
		})
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	for _, to := range []string{"markdown", "bbcode", "plaintext"} {
		t.Run(to, func(t *testing.T) {
			seq, err := Convert(context.Background(), mixed, "html", to, Options{})
			if err != nil {
				t.Fatal(err)
			}
			par, err := Convert(context.Background(), mixed, "html", to,
				Options{Options: format.Options{Parallel: true, Workers: 4}})
			if err != nil {
				t.Fatal(err)
			}
			if par.Output != seq.Output {
				t.Errorf("parallel output differs:\n%q\n%q", par.Output, seq.Output)
			}
			if !reflect.DeepEqual(par.Report, seq.Report) {
				t.Errorf("parallel report differs:\n%+v\n%+v", par.Report, seq.Report)
			}
		})
	}
}

func TestOrderPreserved(t *testing.T) {
	res, err := Convert(context.Background(), "<p>1</p><p>2</p><p>3</p><p>4</p>", "html", "plaintext",
		Options{Options: format.Options{Parallel: true}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Output != "1\n\n2\n\n3\n\n4\n" {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestToCommonValidates(t *testing.T) {
	doc, err := ToCommon(context.Background(), "<h1>Title!</h1>", "html", Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := `(Document (Heading level=1 (Text "Title!")))`
	if got := ast.Dump(doc); got != want {
		t.Errorf("Dump() = %s, want %s", got, want)
	}
	if err := ast.Validate(doc); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestFromCommon(t *testing.T) {
	red, _ := ast.ParseColor("red")
	styled, _ := ast.NewStyled(&red, nil, ast.NewText("warm"))
	p, _ := ast.NewParagraph(ast.NewText("a "), styled)
	doc, err := ast.NewDocument(p)
	if err != nil {
		t.Fatal(err)
	}

	out, report, err := FromCommon(context.Background(), doc, "bbcode", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "a [color=red]warm[/color]" {
		t.Errorf("FromCommon() = %q", out)
	}
	if report.HasLoss() {
		t.Errorf("unexpected loss: %v", report.Reasons())
	}

	if _, _, err := FromCommon(context.Background(), doc, "bbcode", Options{}); !errors.Is(err, tmerrors.ErrStructuralViolation) {
		t.Errorf("second FromCommon() error = %v, want consumed-document violation", err)
	}
}

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestConvertStream(t *testing.T) {
	in := &closeRecorder{}
	in.WriteString("[b]bold[/b] [url=https://go.dev]Go[/url]")
	out := &closeRecorder{}

	report, err := ConvertStream(context.Background(), in, out, "bbcode", "html", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != `<p><strong>bold</strong> <a href="https://go.dev">Go</a></p>` {
		t.Errorf("output = %q", got)
	}
	if report.HasLoss() {
		t.Errorf("unexpected loss: %v", report.Reasons())
	}
	if !in.closed || !out.closed {
		t.Errorf("closed in=%v out=%v, want both closed", in.closed, out.closed)
	}
}

func TestConvertStreamClosesOnFailure(t *testing.T) {
	in := &closeRecorder{}
	in.WriteString("[b]unclosed")
	out := &closeRecorder{}

	if _, err := ConvertStream(context.Background(), in, out, "bbcode", "html", Options{}); err == nil {
		t.Fatal("ConvertStream() should fail")
	}
	if !in.closed || !out.closed {
		t.Errorf("closed in=%v out=%v, want both closed", in.closed, out.closed)
	}
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	store, err := cache.Open(ctx, ":memory:", cache.Options{Memory: cache.DefaultConfig()})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	opts := Options{Cache: store}
	first, err := Convert(ctx, "[color=red]Hi[/color]", "bbcode", "markdown", opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached {
		t.Error("first conversion should not be cached")
	}

	second, err := Convert(ctx, "[color=red]Hi[/color]", "bbcode", "markdown", opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached {
		t.Error("second conversion should come from the cache")
	}
	if second.Output != first.Output || !reflect.DeepEqual(second.Report.Reasons(), first.Report.Reasons()) {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
	if second.ID == first.ID {
		t.Error("each conversion should get its own ID")
	}

	strict := opts
	strict.Strict = true
	if _, err := Convert(ctx, "[color=red]Hi[/color]", "bbcode", "markdown", strict); err == nil {
		t.Error("strict conversion must not be served from the lenient cache entry")
	}

	gfm := opts
	gfm.Read.Flavor = "gfm"
	if _, err := Convert(ctx, "~~gone~~", "markdown", "html", gfm); err != nil {
		t.Fatal(err)
	}
	cm := opts
	cm.Read.Flavor = "commonmark"
	got, err := Convert(ctx, "~~gone~~", "markdown", "html", cm)
	if err != nil {
		t.Fatal(err)
	}
	uncached, err := Convert(ctx, "~~gone~~", "markdown", "html", Options{Read: cm.Read})
	if err != nil {
		t.Fatal(err)
	}
	if got.Cached || got.Output != uncached.Output {
		t.Errorf("commonmark read = %q (cached %v), want %q", got.Output, got.Cached, uncached.Output)
	}
}

func TestConvertAll(t *testing.T) {
	jobs := []Job{
		{Name: "a", Input: "<p>a</p>", From: "html", To: "markdown"},
		{Name: "b", Input: "x", From: "rtf", To: "markdown"},
		{Name: "c", Input: "[i]c[/i]", From: "bbcode", To: "markdown"},
	}

	results := ConvertAll(context.Background(), jobs, 2, Options{})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d", len(results))
	}
	for i, r := range results {
		if r.Job.Name != jobs[i].Name {
			t.Errorf("results[%d] = %s, want %s", i, r.Job.Name, jobs[i].Name)
		}
	}
	if results[0].Err != nil || results[0].Result.Output != "a\n" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if !errors.Is(results[1].Err, tmerrors.ErrNotFound) {
		t.Errorf("results[1].Err = %v", results[1].Err)
	}
	if results[2].Err != nil || !strings.Contains(results[2].Result.Output, "*c*") {
		t.Errorf("results[2] = %+v", results[2])
	}
}
