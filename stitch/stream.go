package stitch

import "strings"

// Stream accumulates chunk texts for one language, suppressing a word that
// is repeated across a chunk boundary. A Stream is not safe for concurrent
// use; chunks are appended in index order by a single dispatcher.
type Stream struct {
	language string
	text     strings.Builder
	lastWord string
}

// NewStream creates an empty stream for a language.
func NewStream(language string) *Stream {
	return &Stream{language: language}
}

// Append folds a chunk's text into the stream and returns the text actually
// incorporated. If the first word equals the last accumulated word it is
// dropped. Words are whitespace separated and compared exactly.
func (s *Stream) Append(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if s.lastWord != "" && words[0] == s.lastWord {
		words = words[1:]
		if len(words) == 0 {
			return ""
		}
	}

	incorporated := strings.Join(words, " ")
	if s.text.Len() > 0 {
		s.text.WriteByte(' ')
	}
	s.text.WriteString(incorporated)
	s.lastWord = words[len(words)-1]
	return incorporated
}

// Text returns the accumulated transcript.
func (s *Stream) Text() string {
	return s.text.String()
}

// Language returns the stream language.
func (s *Stream) Language() string {
	return s.language
}
