// Package markup provides the scoped input sources and output sinks that
// format readers and writers are built on.
//
// A source is always closed once it has been read, and a sink is always
// flushed and closed, whether the operation succeeds, returns early or fails.
package markup

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ulikunitz/xz"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
)

// xzMagic is the header of an xz stream.
var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// bom is the UTF-8 byte order mark.
var bom = []byte{0xEF, 0xBB, 0xBF}

// sniffLen is how much input charset detection looks at.
const sniffLen = 1024

// Options configures ReadAll.
type Options struct {
	// Charset names the input encoding using WHATWG labels (e.g.,
	// "windows-1252", "shift_jis"). Empty means UTF-8 unless SniffHTML is set.
	Charset string

	// SniffHTML detects the encoding of HTML input from a BOM or a <meta>
	// declaration when Charset is empty.
	SniffHTML bool
}

// ReadAll reads r to the end and returns its content as UTF-8 text. xz
// compressed input is decompressed transparently, a declared charset is
// decoded, and a leading BOM is stripped. Invalid UTF-8 fails with an
// EncodingError carrying the byte offset of the first bad sequence. If r is
// an io.Closer it is closed on every path.
func ReadAll(r io.Reader, opts Options) (text string, err error) {
	if c, ok := r.(io.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = tmerrors.NewIO("close", "", cerr)
			}
		}()
	}

	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, _ := br.Peek(len(xzMagic)); bytes.Equal(magic, xzMagic) {
		xr, err := xz.NewReader(br)
		if err != nil {
			return "", tmerrors.NewIO("decompress", "", err)
		}
		src = xr
	}

	label := strings.ToLower(strings.TrimSpace(opts.Charset))
	if label == "" && opts.SniffHTML {
		sr := bufio.NewReaderSize(src, sniffLen)
		head, _ := sr.Peek(sniffLen)
		if _, name, _ := charset.DetermineEncoding(head, "text/html"); name != "" {
			label = name
		}
		src = sr
	}
	if label != "" && label != "utf-8" && label != "utf8" {
		enc, err := htmlindex.Get(label)
		if err != nil {
			return "", tmerrors.NewEncoding(label, -1, err)
		}
		if name, _ := htmlindex.Name(enc); name != "utf-8" {
			src = transform.NewReader(src, enc.NewDecoder())
		}
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", tmerrors.NewIO("read", "", err)
	}

	skipped := 0
	if bytes.HasPrefix(data, bom) {
		data = data[len(bom):]
		skipped = len(bom)
	}
	if off := invalidOffset(data); off >= 0 {
		return "", tmerrors.NewEncoding("utf-8", int64(off+skipped), nil)
	}
	return string(data), nil
}

// ReadString is ReadAll for in-memory markup.
func ReadString(s string) (string, error) {
	return ReadAll(strings.NewReader(s), Options{})
}

// invalidOffset returns the offset of the first invalid UTF-8 sequence, or -1.
func invalidOffset(data []byte) int {
	if utf8.Valid(data) {
		return -1
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// WriteScoped runs fn against a buffered writer over w. The buffer is always
// flushed and w is closed when it is an io.Closer, whatever fn returns. The
// first error wins.
func WriteScoped(w io.Writer, fn func(*bufio.Writer) error) (err error) {
	bw := bufio.NewWriter(w)
	defer func() {
		if ferr := bw.Flush(); ferr != nil && err == nil {
			err = tmerrors.NewIO("flush", "", ferr)
		}
		if c, ok := w.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = tmerrors.NewIO("close", "", cerr)
			}
		}
	}()
	return fn(bw)
}

// WriteString renders markup into a string through a scoped sink.
func WriteString(fn func(*bufio.Writer) error) (string, error) {
	var sb strings.Builder
	if err := WriteScoped(&sb, fn); err != nil {
		return "", err
	}
	return sb.String(), nil
}
