package audio

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "github.com/kbukum/chunkscribe/errors"
)

// Kind classifies an accepted upload.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

var (
	audioExtensions = []string{".mp3", ".wav", ".ogg", ".flac", ".aac", ".wma", ".m4a", ".opus"}
	videoExtensions = []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".mpeg", ".mpg", ".ts"}
)

// Sniff decides whether the file at path, uploaded as filename, is audio or
// video. The extension is checked first and the content second; anything
// else is UNSUPPORTED_MEDIA.
func Sniff(path, filename string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case slices.Contains(audioExtensions, ext):
		return KindAudio, nil
	case slices.Contains(videoExtensions, ext):
		return KindVideo, nil
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", apperrors.UnsupportedMedia(filename, "").WithCause(err)
	}
	switch {
	case isUnder(mt, "audio/"):
		return KindAudio, nil
	case isUnder(mt, "video/"):
		return KindVideo, nil
	}
	return "", apperrors.UnsupportedMedia(filename, mt.String())
}

// isUnder walks the mimetype hierarchy so containers detected as a parent
// type still count.
func isUnder(mt *mimetype.MIME, prefix string) bool {
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), prefix) {
			return true
		}
	}
	return false
}
