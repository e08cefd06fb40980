package transcription

import "strings"

// Task selects what the engine does with the audio.
type Task string

// TaskTranslate always yields English text.
const (
	TaskTranscribe Task = "transcribe"
	TaskTranslate  Task = "translate"
)

// TranscriptionRequest asks an engine for the text of one audio file.
// An empty Task means transcribe; an empty Model means the engine default.
type TranscriptionRequest struct {
	AudioPath string `json:"audio_path"`
	Language  string `json:"language,omitempty"`
	Task      Task   `json:"task,omitempty"`
	Model     string `json:"model,omitempty"`
}

// TranscriptionResponse is an engine's answer. Segment times are relative
// to the start of the submitted audio; Duration is in seconds.
type TranscriptionResponse struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Language string    `json:"language,omitempty"`
}

// JoinedText returns Text, or the space-joined segment texts when the engine
// only filled segments.
func (r *TranscriptionResponse) JoinedText() string {
	if r == nil {
		return ""
	}
	if t := strings.TrimSpace(r.Text); t != "" {
		return t
	}
	parts := make([]string, 0, len(r.Segments))
	for _, s := range r.Segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Segment is a stretch of text with start and end in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Offset returns a copy of segs shifted by base seconds.
func Offset(segs []Segment, base float64) []Segment {
	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = Segment{Start: s.Start + base, End: s.End + base, Text: s.Text}
	}
	return out
}
