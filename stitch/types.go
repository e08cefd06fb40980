package stitch

// DefaultMaxGroupSize is the number of chunk segments folded into one group.
const DefaultMaxGroupSize = 3

// Segment is the incorporated text of one chunk with the chunk's time span
// in seconds from the start of the source audio.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// MergedSegment is a group of consecutive segments, or a marker for audio
// that produced no transcript when Missing is set.
type MergedSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Missing bool    `json:"missing,omitempty"`
}

// Gap records a span of source audio that has no transcript because its
// chunk could not be exported or transcribed.
type Gap struct {
	ChunkIndex int     `json:"chunk_index"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Reason     string  `json:"reason"`
}

// Transcript is the dispatcher output for one language stream.
type Transcript struct {
	Language string
	Text     string
	Segments []Segment
	Gaps     []Gap
}
