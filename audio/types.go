package audio

import "time"

// Normalized describes a decoded mono PCM WAV file on disk.
type Normalized struct {
	// Path is the location of the WAV file.
	Path string `json:"path"`
	// SampleRate is the number of frames per second.
	SampleRate int `json:"sample_rate"`
	// Channels is the channel count; always 1 after normalization.
	Channels int `json:"channels"`
	// BitDepth is the sample width in bits.
	BitDepth int `json:"bit_depth"`
	// Frames is the number of sample frames in the file.
	Frames int64 `json:"frames"`
}

// Seconds returns the audio length in seconds.
func (n *Normalized) Seconds() float64 {
	if n == nil || n.SampleRate <= 0 {
		return 0
	}
	return float64(n.Frames) / float64(n.SampleRate)
}

// Duration returns the audio length.
func (n *Normalized) Duration() time.Duration {
	return time.Duration(n.Seconds() * float64(time.Second))
}

// Format describes the PCM layout used when writing WAV files.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Format returns the PCM layout of n.
func (n *Normalized) Format() Format {
	return Format{SampleRate: n.SampleRate, Channels: n.Channels, BitDepth: n.BitDepth}
}
