package markup

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
)

// trackingReader records whether Close was called.
type trackingReader struct {
	io.Reader
	closed  bool
	readErr error
}

func (r *trackingReader) Read(p []byte) (int, error) {
	if r.readErr != nil {
		return 0, r.readErr
	}
	return r.Reader.Read(p)
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

func TestReadAll(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		opts  Options
		want  string
	}{
		{"plain", []byte("# Title!\n"), Options{}, "# Title!\n"},
		{"bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, "hi"...), Options{}, "hi"},
		{"windows-1252", []byte{'c', 'a', 'f', 0xE9}, Options{Charset: "windows-1252"}, "café"},
		{"latin1 label", []byte{0xFC}, Options{Charset: "ISO-8859-1"}, "ü"},
		{"utf-8 label", []byte("ü"), Options{Charset: "UTF-8"}, "ü"},
		{"sniffed meta", []byte(`<meta charset="windows-1252"><p>caf` + "\xe9"), Options{SniffHTML: true}, `<meta charset="windows-1252"><p>café`},
		{"sniffed utf-8", []byte("<p>ü</p>"), Options{SniffHTML: true}, "<p>ü</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &trackingReader{Reader: bytes.NewReader(tt.input)}
			got, err := ReadAll(r, tt.opts)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadAll() = %q, want %q", got, tt.want)
			}
			if !r.closed {
				t.Error("source was not closed")
			}
		})
	}
}

func TestReadAllXZ(t *testing.T) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "[b]compressed[/b]"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := ReadAll(&buf, Options{})
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if got != "[b]compressed[/b]" {
		t.Errorf("ReadAll() = %q", got)
	}
}

func TestReadAllInvalidUTF8(t *testing.T) {
	r := &trackingReader{Reader: bytes.NewReader([]byte("abc\xffdef"))}
	_, err := ReadAll(r, Options{})

	var ee *tmerrors.EncodingError
	if !errors.As(err, &ee) {
		t.Fatalf("error = %v, want EncodingError", err)
	}
	if ee.Offset != 3 {
		t.Errorf("Offset = %d, want 3", ee.Offset)
	}
	if tmerrors.KindOf(err) != tmerrors.KindEncodingFailure {
		t.Errorf("KindOf() = %s", tmerrors.KindOf(err))
	}
	if !r.closed {
		t.Error("source was not closed on the error path")
	}

	_, err = ReadAll(bytes.NewReader([]byte("\xEF\xBB\xBFab\xc3")), Options{})
	if !errors.As(err, &ee) || ee.Offset != 5 {
		t.Errorf("offset after BOM = %v", err)
	}
}

func TestReadAllFailures(t *testing.T) {
	r := &trackingReader{Reader: strings.NewReader(""), readErr: io.ErrClosedPipe}
	_, err := ReadAll(r, Options{})
	if !errors.Is(err, tmerrors.ErrIOFailure) || !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("error = %v, want IOError wrapping ErrClosedPipe", err)
	}
	if !r.closed {
		t.Error("source was not closed after a read failure")
	}

	_, err = ReadAll(strings.NewReader("x"), Options{Charset: "klingon"})
	if !errors.Is(err, tmerrors.ErrEncodingFailure) {
		t.Errorf("unknown charset error = %v", err)
	}
}

// trackingWriter records flushes and closes.
type trackingWriter struct {
	bytes.Buffer
	closed   bool
	writeErr error
	closeErr error
}

func (w *trackingWriter) Write(p []byte) (int, error) {
	if w.writeErr != nil {
		return 0, w.writeErr
	}
	return w.Buffer.Write(p)
}

func (w *trackingWriter) Close() error {
	w.closed = true
	return w.closeErr
}

func TestWriteScoped(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		w := &trackingWriter{}
		err := WriteScoped(w, func(bw *bufio.Writer) error {
			_, err := bw.WriteString("Hi\n")
			return err
		})
		if err != nil {
			t.Fatal(err)
		}
		if w.String() != "Hi\n" || !w.closed {
			t.Errorf("output %q closed %v", w.String(), w.closed)
		}
	})

	t.Run("early error still flushes and closes", func(t *testing.T) {
		w := &trackingWriter{}
		boom := errors.New("boom")
		err := WriteScoped(w, func(bw *bufio.Writer) error {
			bw.WriteString("partial")
			return boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want boom", err)
		}
		if w.String() != "partial" || !w.closed {
			t.Errorf("output %q closed %v", w.String(), w.closed)
		}
	})

	t.Run("flush failure", func(t *testing.T) {
		w := &trackingWriter{writeErr: io.ErrShortWrite}
		err := WriteScoped(w, func(bw *bufio.Writer) error {
			_, err := bw.WriteString("x")
			return err
		})
		if !errors.Is(err, tmerrors.ErrIOFailure) || !errors.Is(err, io.ErrShortWrite) {
			t.Errorf("error = %v", err)
		}
		if !w.closed {
			t.Error("sink not closed after flush failure")
		}
	})

	t.Run("close failure", func(t *testing.T) {
		w := &trackingWriter{closeErr: io.ErrClosedPipe}
		err := WriteScoped(w, func(bw *bufio.Writer) error { return nil })
		if !errors.Is(err, io.ErrClosedPipe) {
			t.Errorf("error = %v", err)
		}
	})
}

func TestStringHelpers(t *testing.T) {
	s, err := WriteString(func(bw *bufio.Writer) error {
		_, err := bw.WriteString("abc")
		return err
	})
	if err != nil || s != "abc" {
		t.Errorf("WriteString() = %q, %v", s, err)
	}
	if got, err := ReadString("\xEF\xBB\xBFx"); err != nil || got != "x" {
		t.Errorf("ReadString() = %q, %v", got, err)
	}
}
