package pipeline

import (
	"io"

	"github.com/kbukum/chunkscribe/enrich"
	"github.com/kbukum/chunkscribe/jobs"
	"github.com/kbukum/chunkscribe/stitch"
)

// Request is one uploaded media file to transcribe.
type Request struct {
	// ID is the job ID. Empty means a new UUID is generated.
	ID string `json:"id" validate:"omitempty,uuid"`
	// Media is the upload body; it is read once into the job workspace.
	Media    io.Reader     `json:"media_file" validate:"required"`
	Filename string        `json:"filename" validate:"required"`
	Language jobs.Language `json:"language" validate:"required,oneof=en ur"`
	Mode     jobs.Mode     `json:"mode" validate:"required,oneof=live report translate"`
	// Enrich requests translation and summarization of the transcript.
	Enrich bool `json:"enrich"`
}

// Result is the transcript of a completed job. Exactly one of the full text
// fields is set, depending on the output language.
type Result struct {
	JobID           string  `json:"job_id"`
	UrduFullText    *string `json:"urdu_full_text"`
	EnglishFullText *string `json:"english_full_text"`
	// Timestamp is the grouped transcript with a missing marker for every gap.
	Timestamp []stitch.MergedSegment `json:"Timestamp"`
	Gaps      []stitch.Gap           `json:"gaps"`
	// ChunkCount is the number of chunks sent to the engine.
	ChunkCount int `json:"chunk_count"`
	// AudioDuration is the normalized audio length in seconds.
	AudioDuration float64        `json:"audio_duration"`
	Language      jobs.Language  `json:"language"`
	Mode          jobs.Mode      `json:"mode"`
	Enrichment    *enrich.Result `json:"enrichment,omitempty"`
}

// FullText returns whichever full text field is set.
func (r *Result) FullText() string {
	switch {
	case r == nil:
		return ""
	case r.EnglishFullText != nil:
		return *r.EnglishFullText
	case r.UrduFullText != nil:
		return *r.UrduFullText
	}
	return ""
}
