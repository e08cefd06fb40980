package chunker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/kbukum/chunkscribe/audio"
	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/stitch"
)

// Chunk is one exported window of the source audio.
type Chunk struct {
	// Index is the 0-based position among emitted chunks.
	Index int `json:"index"`
	// Start is the offset of the first frame, in seconds.
	Start float64 `json:"start"`
	// End is the offset just past the last frame, in seconds.
	End float64 `json:"end"`
	// Path is the chunk WAV file.
	Path string `json:"path"`
}

// Duration returns End - Start in seconds.
func (c Chunk) Duration() float64 { return c.End - c.Start }

// Result is the outcome of Split.
type Result struct {
	Chunks []Chunk
	// Gaps are windows lost to export failures. Their ChunkIndex is the
	// window number, since a failed window never receives a chunk index.
	Gaps []stitch.Gap
}

// Exporter writes interleaved samples to a WAV file.
type Exporter func(path string, format audio.Format, samples []int) error

// Splitter cuts normalized audio into chunk files.
type Splitter struct {
	opts   Options
	export Exporter
	log    *logger.Logger
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithExporter replaces the WAV writer.
func WithExporter(e Exporter) Option {
	return func(s *Splitter) { s.export = e }
}

// NewSplitter creates a Splitter. Unset options fall back to the defaults.
func NewSplitter(opts Options, log *logger.Logger, options ...Option) *Splitter {
	opts.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	s := &Splitter{opts: opts, export: audio.WriteWAV, log: log.WithComponent("chunker")}
	for _, o := range options {
		o(s)
	}
	return s
}

// Split is a convenience wrapper around NewSplitter(opts, log).Split.
func Split(ctx context.Context, src *audio.Normalized, dir string, opts Options, log *logger.Logger) (*Result, error) {
	return NewSplitter(opts, log).Split(ctx, src, dir)
}

// ChunkPath returns the file name used for chunk index inside dir.
func ChunkPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("chunk_%04d.wav", index))
}

// pending holds the samples of the last emitted chunk until the next window
// shows whether a short tail has to be merged into it.
type pending struct {
	chunk   Chunk
	samples []int
}

// Split reads src window by window and writes chunk files into dir.
// Audio without frames fails with DECODE_FAILED. An export failure skips the
// window and records a gap; a short final window after a failed one widens
// that gap.
func (s *Splitter) Split(ctx context.Context, src *audio.Normalized, dir string) (*Result, error) {
	if src == nil || src.Frames <= 0 || src.SampleRate <= 0 {
		return nil, apperrors.DecodeFailed("No audio found in the provided media.", errors.New("chunker: audio has no frames"))
	}

	r, err := audio.Open(src.Path)
	if err != nil {
		return nil, apperrors.DecodeFailed("Normalized audio could not be read.", err)
	}
	defer r.Close()

	format := r.Format()
	rate := src.SampleRate
	window := frames(s.opts.ChunkDuration, rate)
	minimum := frames(s.opts.MinChunkDuration, rate)
	total := src.Frames

	res := &Result{}
	var prev *pending

	for start := int64(0); start < total; start += window {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+window, total)

		samples, err := r.ReadFrames(int(end - start))
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, apperrors.DecodeFailed("Normalized audio could not be read.", err)
		}
		if len(samples) == 0 {
			break
		}
		if got := int64(len(samples) / format.Channels); got < end-start {
			end = start + got
		}

		windowIndex := int(start / window)
		startSec := float64(start) / float64(rate)
		endSec := float64(end) / float64(rate)

		if end-start < minimum && prev != nil {
			s.mergeTail(prev, samples, format, stitch.Gap{ChunkIndex: windowIndex, Start: startSec, End: endSec}, res)
			continue
		}
		if end-start < minimum && start > 0 {
			// The window before failed to export; a short tail is lost with it.
			last := &res.Gaps[len(res.Gaps)-1]
			last.End = endSec
			continue
		}

		if prev != nil {
			res.Chunks = append(res.Chunks, prev.chunk)
			prev = nil
		}

		index := len(res.Chunks)
		c := Chunk{Index: index, Start: startSec, End: endSec, Path: ChunkPath(dir, index)}
		if err := s.export(c.Path, format, samples); err != nil {
			exportErr := apperrors.ChunkExportFailed(index, err)
			s.log.Error("chunk export failed", logger.MergeWithError(logger.ChunkFields(index, c.Path), exportErr))
			res.Gaps = append(res.Gaps, stitch.Gap{ChunkIndex: windowIndex, Start: startSec, End: endSec, Reason: string(apperrors.ErrCodeChunkExportFailed)})
			continue
		}
		prev = &pending{chunk: c, samples: samples}
	}

	if prev != nil {
		res.Chunks = append(res.Chunks, prev.chunk)
	}
	if len(res.Chunks) == 0 && len(res.Gaps) == 0 {
		return nil, apperrors.DecodeFailed("No audio found in the provided media.", errors.New("chunker: no frames could be read"))
	}

	s.log.Debug("audio split", logger.Fields(
		"chunks", len(res.Chunks),
		"gaps", len(res.Gaps),
		"duration_s", src.Seconds(),
	))
	return res, nil
}

// mergeTail re-exports prev with the short tail appended. On failure the
// previous chunk is left as it was and the tail becomes a gap.
func (s *Splitter) mergeTail(prev *pending, tail []int, format audio.Format, span stitch.Gap, res *Result) {
	merged := make([]int, 0, len(prev.samples)+len(tail))
	merged = append(merged, prev.samples...)
	merged = append(merged, tail...)

	if err := s.export(prev.chunk.Path, format, merged); err != nil {
		exportErr := apperrors.ChunkExportFailed(prev.chunk.Index, err)
		s.log.Error("trailing chunk merge failed", logger.MergeWithError(logger.ChunkFields(prev.chunk.Index, prev.chunk.Path), exportErr))
		// The failed write may have truncated the file; restore the original samples.
		if restoreErr := s.export(prev.chunk.Path, format, prev.samples); restoreErr != nil {
			s.log.Error("chunk restore failed", logger.MergeWithError(logger.ChunkFields(prev.chunk.Index, prev.chunk.Path), restoreErr))
		}
		span.Reason = string(apperrors.ErrCodeChunkExportFailed)
		res.Gaps = append(res.Gaps, span)
		return
	}
	prev.chunk.End = span.End
	prev.samples = merged
	fields := logger.ChunkFields(prev.chunk.Index, prev.chunk.Path)
	fields["tail_s"] = span.End - span.Start
	s.log.Debug("merged short trailing window", fields)
}
