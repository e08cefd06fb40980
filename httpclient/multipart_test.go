package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMultipart_StreamsFieldsAndFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != -1 {
			t.Errorf("ContentLength = %d, want a streamed body", r.ContentLength)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if got := r.FormValue("language"); got != "ur" {
			t.Errorf("language = %q", got)
		}
		if got := r.FormValue("task"); got != "translate" {
			t.Errorf("task = %q", got)
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "RIFF....WAVE" {
			t.Errorf("file = %q", data)
		}
		if header.Filename != `chunk "1".wav` {
			t.Errorf("filename = %q", header.Filename)
		}
		if got := header.Header.Get("Content-Type"); got != "audio/wav" {
			t.Errorf("part Content-Type = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newClient(t, Config{
		BaseURL: srv.URL,
		Headers: map[string]string{"Content-Type": "application/json"},
	})
	body := &Multipart{
		Fields: map[string]string{"language": "ur", "task": "translate"},
		Files: []File{{
			Field:       "audio",
			Name:        `chunk "1".wav`,
			ContentType: "audio/wav",
			Reader:      strings.NewReader("RIFF....WAVE"),
		}},
	}
	if _, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/transcribe", Body: body}); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestMultipart_DefaultPartContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("blob")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		if got := header.Header.Get("Content-Type"); got != "application/octet-stream" {
			t.Errorf("part Content-Type = %q", got)
		}
	}))
	defer srv.Close()

	body := &Multipart{Files: []File{{Field: "blob", Name: "b.bin", Reader: strings.NewReader("x")}}}
	if _, err := newClient(t, Config{BaseURL: srv.URL}).Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: body}); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestMultipart_NilReaderIsInvalid(t *testing.T) {
	c := newClient(t, Config{BaseURL: "http://127.0.0.1:1"})
	body := &Multipart{Files: []File{{Field: "audio", Name: "a.wav"}}}
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: body})
	if KindOf(err) != KindInvalid {
		t.Fatalf("kind = %q, want invalid (%v)", KindOf(err), err)
	}
	if IsUnavailable(err) {
		t.Error("an encoding failure must not look like an unreachable peer")
	}
}
