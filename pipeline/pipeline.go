package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/chunkscribe/audio"
	"github.com/kbukum/chunkscribe/chunker"
	"github.com/kbukum/chunkscribe/dispatch"
	"github.com/kbukum/chunkscribe/enrich"
	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/jobs"
	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/observability"
	"github.com/kbukum/chunkscribe/reaper"
	"github.com/kbukum/chunkscribe/resilience"
	"github.com/kbukum/chunkscribe/stitch"
	"github.com/kbukum/chunkscribe/transcription"
	"github.com/kbukum/chunkscribe/util"
	"github.com/kbukum/chunkscribe/validation"
	"github.com/kbukum/chunkscribe/workspace"
)

// EngineRouter picks the speech engine for a spoken language.
type EngineRouter interface {
	Route(ctx context.Context, language string) (transcription.Provider, error)
}

// Deps are the collaborators of a Pipeline. Gate, Tracker, Enricher and
// Metrics are optional.
type Deps struct {
	Gate      *resilience.Gate
	Decoder   audio.Decoder
	Engines   EngineRouter
	Workspace *workspace.Workspace
	Tracker   *jobs.Tracker
	Enricher  *enrich.Enricher
	Metrics   *observability.Metrics
	Logger    *logger.Logger
}

// Pipeline runs transcription jobs.
type Pipeline struct {
	gate      *resilience.Gate
	decoder   audio.Decoder
	engines   EngineRouter
	workspace *workspace.Workspace
	tracker   *jobs.Tracker
	enricher  *enrich.Enricher
	metrics   *observability.Metrics
	splitter  *chunker.Splitter
	cfg       Config
	log       *logger.Logger
}

// New creates a Pipeline. Decoder, Engines and Workspace are required.
func New(deps Deps, cfg Config) (*Pipeline, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Decoder == nil:
		return nil, errors.New("pipeline: decoder is required")
	case deps.Engines == nil:
		return nil, errors.New("pipeline: engine router is required")
	case deps.Workspace == nil:
		return nil, errors.New("pipeline: workspace is required")
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	gate := deps.Gate
	if gate == nil {
		gate = resilience.NewGate(resilience.DefaultGateConfig("pipeline"))
	}
	tracker := deps.Tracker
	if tracker == nil {
		tracker = jobs.NewTracker(log)
	}

	return &Pipeline{
		gate:      gate,
		decoder:   deps.Decoder,
		engines:   deps.Engines,
		workspace: deps.Workspace,
		tracker:   tracker,
		enricher:  deps.Enricher,
		metrics:   deps.Metrics,
		splitter:  chunker.NewSplitter(cfg.Chunking, log),
		cfg:       cfg,
		log:       log.WithComponent("pipeline"),
	}, nil
}

// Gate returns the admission gate.
func (p *Pipeline) Gate() *resilience.Gate { return p.gate }

// Tracker returns the job tracker.
func (p *Pipeline) Tracker() *jobs.Tracker { return p.tracker }

// Run validates req, waits for admission and runs the job to completion.
// The returned error is an *errors.AppError. Job storage is gone by the
// time Run returns.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Mode == "" {
		req.Mode = jobs.ModeLive
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	if _, err := p.tracker.Register(jobs.Job{
		ID:         req.ID,
		SourceName: req.Filename,
		Language:   req.Language,
		Mode:       req.Mode,
	}); err != nil {
		if errors.Is(err, jobs.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("Job %s already exists.", req.ID))
		}
		return nil, apperrors.Internal(err)
	}

	// An accepted job runs to the end even if the client goes away.
	ctx = logger.ContextWithJobID(context.WithoutCancel(ctx), req.ID)
	ctx, span := observability.StartSpan(ctx, observability.SpanJob, trace.WithAttributes(
		attribute.String(observability.AttrJobID, req.ID),
		attribute.String(observability.AttrLanguage, string(req.Language)),
		attribute.String(observability.AttrMode, string(req.Mode)),
	))
	defer span.End()

	log := p.log.WithContext(ctx)
	start := time.Now()

	permit, err := p.gate.Acquire(ctx)
	if err != nil {
		err = apperrors.Internal(fmt.Errorf("admission: %w", err))
		p.finish(ctx, log, req, start, err)
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	defer permit.Release()
	log.Info("job admitted", logger.Fields(
		"waited_ms", time.Since(start).Milliseconds(),
		"in_use", p.gate.InUse(),
		"waiting", p.gate.Waiting(),
	))

	res, err := p.execute(ctx, log, req)
	p.finish(ctx, log, req, start, err)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	return res, nil
}

// execute runs the stages under a reaper. The reaper is closed before
// execute returns, on success, failure and panic alike.
func (p *Pipeline) execute(ctx context.Context, log *logger.Logger, req Request) (res *Result, err error) {
	r := reaper.New(req.ID, log)
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("job panicked", logger.Fields("panic", fmt.Sprintf("%v", rec), "stack", string(debug.Stack())))
			res, err = nil, apperrors.Internal(fmt.Errorf("panic: %v", rec))
		}
		_ = r.Close(ctx)
		if err != nil {
			err = apperrors.Wrap(err)
		}
	}()

	if err := p.tracker.Transition(req.ID, jobs.StatusAdmitted); err != nil {
		return nil, apperrors.Internal(err)
	}
	job, err := p.workspace.Create(req.ID)
	if err != nil {
		return nil, err
	}
	r.Track(job.Root())

	var (
		normalized *audio.Normalized
		split      *chunker.Result
		tr         *stitch.Transcript
	)

	err = p.stage(ctx, req.ID, jobs.StatusNormalizing, func(ctx context.Context) error {
		var err error
		normalized, err = p.normalize(ctx, log, job, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, req.ID, jobs.StatusChunking, func(ctx context.Context) error {
		var err error
		split, err = p.splitter.Split(ctx, normalized, job.ChunkDir())
		return err
	})
	if err != nil {
		return nil, err
	}
	// The full-length audio is no longer needed once the chunks exist.
	removeQuietly(log, normalized.Path)

	err = p.stage(ctx, req.ID, jobs.StatusTranscribing, func(ctx context.Context) error {
		var err error
		tr, err = p.transcribe(ctx, log, r, req, split.Chunks)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, req.ID, jobs.StatusStitching, func(context.Context) error {
		res = p.assemble(req, normalized, split, tr)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Enrich && p.enricher != nil {
		_, st := observability.StartStage(ctx, p.metrics, req.ID, "enrich")
		res.Enrichment = p.enricher.Enrich(ctx, res.FullText())
		st.End(nil)
	}
	return res, nil
}

// stage moves the job to status and runs fn inside a stage span.
func (p *Pipeline) stage(ctx context.Context, jobID string, status jobs.Status, fn func(context.Context) error) error {
	if err := p.tracker.Transition(jobID, status); err != nil {
		return apperrors.Internal(err)
	}
	ctx, st := observability.StartStage(ctx, p.metrics, jobID, string(status))
	err := fn(ctx)
	st.End(err)
	return err
}

func (p *Pipeline) normalize(ctx context.Context, log *logger.Logger, job *workspace.Job, req Request) (*audio.Normalized, error) {
	src, size, err := job.SaveSource(req.Filename, req.Media)
	if err != nil {
		return nil, err
	}
	log.Info("upload saved", logger.Fields(logger.FieldPath, src, logger.FieldSize, audio.HumanSize(size)))

	kind, err := audio.Sniff(src, req.Filename)
	if err != nil {
		return nil, err
	}
	normalized, err := p.decoder.Normalize(ctx, src, job.AudioPath())
	if err != nil {
		return nil, err
	}
	removeQuietly(log, src)

	log.Info("media normalized", logger.Fields(
		"kind", string(kind),
		"seconds", normalized.Seconds(),
		"sample_rate", normalized.SampleRate,
	))
	return normalized, nil
}

func (p *Pipeline) transcribe(ctx context.Context, log *logger.Logger, r *reaper.Reaper, req Request, chunks []chunker.Chunk) (*stitch.Transcript, error) {
	engine, err := p.engines.Route(ctx, string(req.Language))
	if err != nil {
		return nil, apperrors.EngineUnavailable(string(req.Language), err)
	}
	if cr, ok := engine.(transcription.CacheReleaser); ok && !p.cfg.SkipCacheRelease {
		r.ReleaseEngine(cr)
	}

	opts := []dispatch.Option{
		dispatch.WithObserver(func(cr dispatch.ChunkResult) {
			p.metrics.RecordChunk(ctx, cr.Outcome.String())
		}),
	}
	if p.cfg.KeepChunks {
		opts = append(opts, dispatch.WithKeepFiles())
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String(observability.AttrEngine, engine.Name()),
		attribute.Int(observability.AttrChunkCount, len(chunks)),
	)
	log.Info("transcribing", logger.Fields(logger.FieldEngine, engine.Name(), "chunks", len(chunks)))
	return dispatch.New(engine, log, opts...).Run(ctx, dispatch.Request{
		Chunks:   chunks,
		Language: string(req.Language),
		Task:     req.Mode.Task(),
		Model:    p.cfg.Model,
	})
}

// assemble builds the result from the stitched transcript. Export gaps and
// engine gaps are merged in time order.
func (p *Pipeline) assemble(req Request, normalized *audio.Normalized, split *chunker.Result, tr *stitch.Transcript) *Result {
	gaps := make([]stitch.Gap, 0, len(split.Gaps)+len(tr.Gaps))
	gaps = append(gaps, split.Gaps...)
	gaps = append(gaps, tr.Gaps...)
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Start < gaps[j].Start })

	groups := stitch.Group(tr.Segments, p.cfg.MaxGroupSize)

	res := &Result{
		JobID:         req.ID,
		Timestamp:     stitch.Timeline(groups, gaps),
		Gaps:          gaps,
		ChunkCount:    len(split.Chunks),
		AudioDuration: normalized.Seconds(),
		Language:      req.Language,
		Mode:          req.Mode,
	}
	if req.Mode.OutputLanguage(req.Language) == jobs.LanguageEnglish {
		res.EnglishFullText = util.Ptr(tr.Text)
	} else {
		res.UrduFullText = util.Ptr(tr.Text)
	}
	return res
}

// finish records the terminal state of a job.
func (p *Pipeline) finish(ctx context.Context, log *logger.Logger, req Request, start time.Time, err error) {
	elapsed := time.Since(start)
	status := jobs.StatusCompleted
	if err != nil {
		status = jobs.StatusFailed
		if ferr := p.tracker.Fail(req.ID, err); ferr != nil {
			log.Warn("job state not updated", logger.MergeWithError(nil, ferr))
		}
		log.Error("job failed", logger.MergeWithDuration(logger.MergeWithError(logger.Fields(
			"code", string(apperrors.CodeOf(err)),
		), err), elapsed))
	} else {
		if terr := p.tracker.Transition(req.ID, jobs.StatusCompleted); terr != nil {
			log.Warn("job state not updated", logger.MergeWithError(nil, terr))
		}
		log.Info("job completed", logger.MergeWithDuration(nil, elapsed))
	}
	p.metrics.RecordJob(ctx, string(status), string(req.Language), string(req.Mode), elapsed)
}

func removeQuietly(log *logger.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("intermediate file not removed", logger.MergeWithError(logger.Fields(logger.FieldPath, path), err))
	}
}
