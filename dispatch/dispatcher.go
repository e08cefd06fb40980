package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kbukum/chunkscribe/chunker"
	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/stitch"
	"github.com/kbukum/chunkscribe/transcription"
)

const languageUrdu = "ur"

// Request describes one dispatch run.
type Request struct {
	Chunks []chunker.Chunk
	// Language is the spoken language passed to the engine.
	Language string
	// Task is transcribe or translate.
	Task transcription.Task
	// Model optionally overrides the engine's model.
	Model string
}

// OutputLanguage returns the language of the produced text: English when
// translating or when the source is English, otherwise the source language.
func (r Request) OutputLanguage() string {
	if r.Task == transcription.TaskTranslate {
		return "en"
	}
	return r.Language
}

// Observer is notified after every chunk.
type Observer func(ChunkResult)

// Dispatcher runs chunks through one engine strictly in index order.
type Dispatcher struct {
	engine    transcription.Provider
	log       *logger.Logger
	observers []Observer
	keepFiles bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver registers a per-chunk callback.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observers = append(d.observers, o) }
}

// WithKeepFiles leaves chunk files in place after they are incorporated.
func WithKeepFiles() Option {
	return func(d *Dispatcher) { d.keepFiles = true }
}

// New creates a Dispatcher over engine.
func New(engine transcription.Provider, log *logger.Logger, opts ...Option) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	d := &Dispatcher{engine: engine, log: log.WithComponent("dispatch")}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Run transcribes every chunk and returns the stitched transcript of the
// output language. Skipped chunks become gaps. The first Abort stops the run
// and its error is returned: EngineUnavailable, ResourceExhausted, or the
// context error.
func (d *Dispatcher) Run(ctx context.Context, req Request) (*stitch.Transcript, error) {
	lang := req.OutputLanguage()
	stream := stitch.NewStream(lang)
	tr := &stitch.Transcript{Language: lang, Segments: make([]stitch.Segment, 0, len(req.Chunks))}

	for _, c := range req.Chunks {
		res := d.dispatch(ctx, c, req, stream)
		for _, o := range d.observers {
			o(res)
		}

		switch res.Outcome {
		case Success:
			tr.Segments = append(tr.Segments, stitch.Segment{Start: c.Start, End: c.End, Text: res.Text})
			d.fold(c)
		case Skip:
			tr.Gaps = append(tr.Gaps, stitch.Gap{
				ChunkIndex: c.Index,
				Start:      c.Start,
				End:        c.End,
				Reason:     string(apperrors.ErrCodeEngineCallFailed),
			})
		case Abort:
			return nil, res.Err
		}
	}

	tr.Text = stream.Text()
	d.log.Info("dispatch finished", logger.Fields(
		"chunks", len(req.Chunks),
		"segments", len(tr.Segments),
		"gaps", len(tr.Gaps),
		logger.FieldEngine, d.engine.Name(),
	))
	return tr, nil
}

// dispatch makes the engine call for one chunk and classifies the outcome.
func (d *Dispatcher) dispatch(ctx context.Context, c chunker.Chunk, req Request, stream *stitch.Stream) ChunkResult {
	res := ChunkResult{Chunk: c}
	fields := logger.ChunkFields(c.Index, c.Path)

	if err := ctx.Err(); err != nil {
		res.Outcome, res.Err = Abort, fmt.Errorf("dispatch: %w", err)
		return res
	}

	start := time.Now()
	resp, err := d.engine.Transcribe(ctx, transcription.TranscriptionRequest{
		AudioPath: c.Path,
		Language:  req.Language,
		Task:      req.Task,
		Model:     req.Model,
	})
	res.Duration = time.Since(start)

	if err != nil {
		res.Outcome, res.Err = d.classify(ctx, c, err)
		if res.Outcome == Skip {
			d.log.Error("chunk transcription failed", logger.MergeWithError(fields, res.Err))
		} else {
			d.log.Error("transcription aborted", logger.MergeWithError(fields, res.Err))
		}
		return res
	}

	text := resp.JoinedText()
	if stream.Language() == languageUrdu {
		text = stitch.StripDevanagari(text)
	}
	res.Text = stream.Append(text)
	res.Segments = transcription.Offset(resp.Segments, c.Start)
	res.Outcome = Success

	d.log.Debug("chunk transcribed", logger.MergeWithDuration(logger.Fields(
		logger.FieldChunkIndex, c.Index,
		"start", c.Start,
		"end", c.End,
		"segments", len(res.Segments),
	), res.Duration))
	return res
}

func (d *Dispatcher) classify(ctx context.Context, c chunker.Chunk, err error) (Outcome, error) {
	switch {
	case ctx.Err() != nil:
		return Abort, fmt.Errorf("dispatch: %w", ctx.Err())
	case errors.Is(err, transcription.ErrEngineUnavailable):
		return Abort, apperrors.EngineUnavailable(d.engine.Name(), err)
	case errors.Is(err, transcription.ErrResourceExhausted):
		return Abort, apperrors.ResourceExhausted(apperrors.ResourceAccelerator, err)
	}
	if exhausted := apperrors.AsResourceExhausted(err); exhausted != nil {
		return Abort, exhausted
	}
	return Skip, apperrors.EngineCallFailed(c.Index, err)
}

// fold removes a chunk file once its text is part of the transcript.
func (d *Dispatcher) fold(c chunker.Chunk) {
	if d.keepFiles {
		return
	}
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.log.Warn("chunk cleanup failed", logger.MergeWithError(logger.ChunkFields(c.Index, c.Path), err))
	}
}
