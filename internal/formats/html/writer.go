package html

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/markup"
)

// sanitizer is the bluemonday UGC policy extended with the presentational
// markup this format produces.
var sanitizer = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyles("color", "font-size").OnElements("span")
	p.AllowAttrs("color", "size").OnElements("font")
	p.AllowElements("font", "u")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#.-]+$`)).OnElements("code")
	return p
}()

// WriteMarkupText renders the fragment as HTML.
func (f *Fragment) WriteMarkupText() (string, error) {
	return markup.WriteString(f.write)
}

// WriteMarkup writes the fragment to w, flushing and closing it.
func (f *Fragment) WriteMarkup(w io.Writer) error {
	return markup.WriteScoped(w, f.write)
}

// WriteSanitized writes the fragment to w after removing scripts, event
// handlers and other unsafe markup, raw HTML included.
func (f *Fragment) WriteSanitized(w io.Writer) error {
	return markup.WriteScoped(w, func(bw *bufio.Writer) error {
		var sb strings.Builder
		if err := f.render(&sb); err != nil {
			return err
		}
		if _, err := bw.WriteString(sanitizer.Sanitize(sb.String())); err != nil {
			return &tmerrors.WriteError{Format: Name, Err: tmerrors.NewIO("write", "", err)}
		}
		return nil
	})
}

func (f *Fragment) write(w *bufio.Writer) error {
	if err := f.render(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return &tmerrors.WriteError{Format: Name, Err: tmerrors.NewIO("write", "", err)}
	}
	return nil
}

func (f *Fragment) render(w io.Writer) error {
	for _, n := range f.Nodes {
		if err := xhtml.Render(w, n); err != nil {
			return &tmerrors.WriteError{Format: Name, Err: tmerrors.NewIO("render", "", err)}
		}
	}
	return nil
}
