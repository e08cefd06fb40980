package httpclient

import (
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/textproto"
	"slices"
	"strings"
)

// Multipart is a multipart/form-data body. Files are streamed to the
// server as they are read, so a large chunk is never buffered in memory.
type Multipart struct {
	Fields map[string]string
	Files  []File
}

// File is one file part of a Multipart body.
type File struct {
	Field       string
	Name        string
	ContentType string
	Reader      io.Reader
}

// encodeError marks failures that happen while producing the body, so they
// are not mistaken for a broken connection.
type encodeError struct{ err error }

func (e *encodeError) Error() string { return "encode body: " + e.err.Error() }
func (e *encodeError) Unwrap() error { return e.err }

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// stream starts writing the body into a pipe and returns its read side.
// The writer goroutine exits once the reader is drained or closed.
func (m *Multipart) stream() (io.ReadCloser, string, error) {
	for i, f := range m.Files {
		if f.Reader == nil {
			return nil, "", fmt.Errorf("file %d (%s): nil reader", i, f.Field)
		}
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		if err := m.write(mw); err != nil {
			pw.CloseWithError(&encodeError{err})
			return
		}
		pw.Close()
	}()
	return pr, mw.FormDataContentType(), nil
}

func (m *Multipart) write(mw *multipart.Writer) error {
	for _, k := range slices.Sorted(maps.Keys(m.Fields)) {
		if err := mw.WriteField(k, m.Fields[k]); err != nil {
			return err
		}
	}
	for _, f := range m.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.Field), quoteEscaper.Replace(f.Name)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	return mw.Close()
}
