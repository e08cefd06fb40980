package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/chunkscribe/audio"
	"github.com/kbukum/chunkscribe/chunker"
	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/jobs"
	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/resilience"
	"github.com/kbukum/chunkscribe/transcription"
	"github.com/kbukum/chunkscribe/workspace"
)

const testRate = 1000

// toneDecoder writes a silent WAV of a fixed length instead of running ffmpeg.
type toneDecoder struct {
	seconds int
	err     error
	panic   bool
}

func (d *toneDecoder) Normalize(_ context.Context, src, dst string) (*audio.Normalized, error) {
	if d.panic {
		panic("decoder blew up")
	}
	if d.err != nil {
		return nil, d.err
	}
	if _, err := os.Stat(src); err != nil {
		return nil, err
	}
	samples := make([]int, d.seconds*testRate)
	if err := audio.WriteWAV(dst, audio.Format{SampleRate: testRate, Channels: 1, BitDepth: 16}, samples); err != nil {
		return nil, err
	}
	return audio.Load(dst)
}

// countingEngine answers "part<index>" per chunk and records concurrency.
type countingEngine struct {
	delay    time.Duration
	failOn   map[int]error
	tracker  *jobs.Tracker
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	maxTx    atomic.Int32
	released atomic.Int32

	// gate, when set, is sampled on every cache release.
	gate           *resilience.Gate
	inUseAtRelease atomic.Int32

	mu    sync.Mutex
	tasks []transcription.Task
}

func (e *countingEngine) Name() string                      { return "fake" }
func (e *countingEngine) IsAvailable(_ context.Context) bool { return true }

func (e *countingEngine) Transcribe(_ context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	raise(&e.maxSeen, n)
	if e.tracker != nil {
		raise(&e.maxTx, int32(e.tracker.Count(jobs.StatusTranscribing)))
	}

	e.mu.Lock()
	e.tasks = append(e.tasks, req.Task)
	e.mu.Unlock()

	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	idx := chunkIndex(req.AudioPath)
	if err := e.failOn[idx]; err != nil {
		return nil, err
	}
	return &transcription.TranscriptionResponse{Text: fmt.Sprintf("part%d", idx)}, nil
}

func (e *countingEngine) ReleaseCache(_ context.Context) error {
	e.released.Add(1)
	if e.gate != nil {
		raise(&e.inUseAtRelease, int32(e.gate.InUse()))
	}
	return nil
}

func raise(v *atomic.Int32, n int32) {
	for {
		cur := v.Load()
		if n <= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func chunkIndex(path string) int {
	for i := 0; i < 1000; i++ {
		if filepath.Base(chunker.ChunkPath("", i)) == filepath.Base(path) {
			return i
		}
	}
	return -1
}

type staticRouter struct {
	engine transcription.Provider
	err    error
}

func (r staticRouter) Route(context.Context, string) (transcription.Provider, error) {
	return r.engine, r.err
}

type fixture struct {
	p       *Pipeline
	engine  *countingEngine
	tracker *jobs.Tracker
	root    string
}

func newFixture(t *testing.T, dec audio.Decoder, gateSize int) *fixture {
	t.Helper()
	root := t.TempDir()
	ws, err := workspace.New(root)
	if err != nil {
		t.Fatal(err)
	}
	tracker := jobs.NewTracker(logger.NewNop())
	engine := &countingEngine{tracker: tracker, failOn: map[int]error{}}
	p, err := New(Deps{
		Gate:      resilience.NewGate(resilience.GateConfig{Name: "test", MaxConcurrent: gateSize}),
		Decoder:   dec,
		Engines:   staticRouter{engine: engine},
		Workspace: ws,
		Tracker:   tracker,
		Logger:    logger.NewNop(),
	}, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	engine.gate = p.Gate()
	return &fixture{p: p, engine: engine, tracker: tracker, root: root}
}

func (f *fixture) assertClean(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no job directories, found %d", len(entries))
	}
	if f.p.Gate().InUse() != 0 {
		t.Fatalf("gate still holds %d permits", f.p.Gate().InUse())
	}
}

func upload(lang jobs.Language, mode jobs.Mode) Request {
	return Request{
		Media:    strings.NewReader("RIFF-not-really"),
		Filename: "bulletin.wav",
		Language: lang,
		Mode:     mode,
	}
}

func TestRun_UrduTranscript(t *testing.T) {
	f := newFixture(t, &toneDecoder{seconds: 25}, 2)

	res, err := f.p.Run(context.Background(), upload(jobs.LanguageUrdu, jobs.ModeLive))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.UrduFullText == nil || res.EnglishFullText != nil {
		t.Fatalf("expected only the Urdu text, got %+v", res)
	}
	if *res.UrduFullText != "part0 part1 part2" {
		t.Errorf("full text = %q", *res.UrduFullText)
	}
	if res.ChunkCount != 3 {
		t.Errorf("ChunkCount = %d, want 3", res.ChunkCount)
	}
	if len(res.Timestamp) != 1 || res.Timestamp[0].Start != 0 || res.Timestamp[0].End != 25 {
		t.Errorf("Timestamp = %+v", res.Timestamp)
	}
	if res.Gaps == nil || len(res.Gaps) != 0 {
		t.Errorf("expected empty gaps, got %v", res.Gaps)
	}
	if res.AudioDuration != 25 {
		t.Errorf("AudioDuration = %v", res.AudioDuration)
	}

	job, err := f.tracker.Get(res.JobID)
	if err != nil || job.Status != jobs.StatusCompleted {
		t.Fatalf("job status = %v (%v)", job.Status, err)
	}
	if f.engine.released.Load() != 1 {
		t.Errorf("cache released %d times, want 1", f.engine.released.Load())
	}
	f.assertClean(t)
}

func TestRun_TranslateProducesEnglish(t *testing.T) {
	f := newFixture(t, &toneDecoder{seconds: 5}, 1)

	res, err := f.p.Run(context.Background(), upload(jobs.LanguageUrdu, jobs.ModeTranslate))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.EnglishFullText == nil || res.UrduFullText != nil {
		t.Fatalf("expected only the English text, got %+v", res)
	}
	for _, task := range f.engine.tasks {
		if task != transcription.TaskTranslate {
			t.Fatalf("engine got task %q", task)
		}
	}
	f.assertClean(t)
}

func TestRun_SkippedChunkBecomesGap(t *testing.T) {
	f := newFixture(t, &toneDecoder{seconds: 25}, 1)
	f.engine.failOn[1] = errors.New("engine returned 500")

	res, err := f.p.Run(context.Background(), upload(jobs.LanguageEnglish, jobs.ModeLive))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Gaps) != 1 || res.Gaps[0].Start != 10 || res.Gaps[0].End != 20 {
		t.Fatalf("Gaps = %+v", res.Gaps)
	}
	missing := 0
	for _, seg := range res.Timestamp {
		if seg.Missing {
			missing++
		}
	}
	if missing != 1 {
		t.Errorf("expected one missing marker, got %d in %+v", missing, res.Timestamp)
	}
	if *res.EnglishFullText != "part0 part2" {
		t.Errorf("full text = %q", *res.EnglishFullText)
	}
	f.assertClean(t)
}

func TestRun_JobFailures(t *testing.T) {
	tests := []struct {
		name     string
		decoder  *toneDecoder
		engine   error
		filename string
		want     apperrors.ErrorCode
	}{
		{"decode", &toneDecoder{err: apperrors.DecodeFailed("No audio found in the provided media.", nil)}, nil, "a.mp4", apperrors.ErrCodeDecodeFailed},
		{"unsupported", &toneDecoder{seconds: 5}, nil, "notes.txt", apperrors.ErrCodeUnsupportedMedia},
		{"engine unavailable", &toneDecoder{seconds: 25}, transcription.ErrEngineUnavailable, "a.wav", apperrors.ErrCodeEngineUnavailable},
		{"accelerator", &toneDecoder{seconds: 25}, transcription.ErrResourceExhausted, "a.wav", apperrors.ErrCodeResourceExhausted},
		{"disk", &toneDecoder{err: errors.New("write: no space left on device")}, nil, "a.wav", apperrors.ErrCodeResourceExhausted},
		{"panic", &toneDecoder{panic: true}, nil, "a.wav", apperrors.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.decoder, 1)
			if tt.engine != nil {
				f.engine.failOn[0] = tt.engine
			}
			req := upload(jobs.LanguageUrdu, jobs.ModeLive)
			req.Filename = tt.filename
			if tt.filename == "notes.txt" {
				req.Media = strings.NewReader("just some plain text, not media")
			}

			_, err := f.p.Run(context.Background(), req)
			if got := apperrors.CodeOf(err); got != tt.want {
				t.Fatalf("code = %q, want %q (err: %v)", got, tt.want, err)
			}
			snap := f.tracker.Snapshot()
			if len(snap) != 1 || snap[0].Status != jobs.StatusFailed || snap[0].ErrorCode != string(tt.want) {
				t.Fatalf("tracker = %+v", snap)
			}
			f.assertClean(t)
		})
	}
}

func TestRun_RouteFailureIsEngineUnavailable(t *testing.T) {
	f := newFixture(t, &toneDecoder{seconds: 5}, 1)
	f.p.engines = staticRouter{err: errors.New("no engine for ur")}

	_, err := f.p.Run(context.Background(), upload(jobs.LanguageUrdu, jobs.ModeLive))
	if apperrors.CodeOf(err) != apperrors.ErrCodeEngineUnavailable {
		t.Fatalf("expected ENGINE_UNAVAILABLE, got %v", err)
	}
	f.assertClean(t)
}

func TestRun_Validation(t *testing.T) {
	f := newFixture(t, &toneDecoder{seconds: 5}, 1)

	bad := []Request{
		{Filename: "a.wav", Language: jobs.LanguageUrdu},
		{Media: strings.NewReader("x"), Language: jobs.LanguageUrdu},
		{Media: strings.NewReader("x"), Filename: "a.wav", Language: "fr"},
		{Media: strings.NewReader("x"), Filename: "a.wav", Language: jobs.LanguageUrdu, Mode: "karaoke"},
		{ID: "not-a-uuid", Media: strings.NewReader("x"), Filename: "a.wav", Language: jobs.LanguageUrdu},
	}
	for i, req := range bad {
		_, err := f.p.Run(context.Background(), req)
		if apperrors.CodeOf(err) != apperrors.ErrCodeInvalidInput {
			t.Errorf("request %d: expected INVALID_INPUT, got %v", i, err)
		}
	}
	if len(f.tracker.Snapshot()) != 0 {
		t.Fatal("invalid requests must not register jobs")
	}
}

func TestRun_DuplicateID(t *testing.T) {
	f := newFixture(t, &toneDecoder{seconds: 5}, 1)
	req := upload(jobs.LanguageEnglish, jobs.ModeLive)
	req.ID = "0b4e7a52-8c1f-4f43-9a3e-2f1d6a9c7b10"

	if _, err := f.p.Run(context.Background(), req); err != nil {
		t.Fatalf("first run: %v", err)
	}
	req.Media = strings.NewReader("again")
	if _, err := f.p.Run(context.Background(), req); apperrors.CodeOf(err) != apperrors.ErrCodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRun_IgnoresCallerCancellation(t *testing.T) {
	f := newFixture(t, &toneDecoder{seconds: 5}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.p.Run(ctx, upload(jobs.LanguageEnglish, jobs.ModeLive)); err != nil {
		t.Fatalf("accepted job should run to completion: %v", err)
	}
	f.assertClean(t)
}

func TestRun_GateBoundsConcurrentJobs(t *testing.T) {
	f := newFixture(t, &toneDecoder{seconds: 25}, 2)
	f.engine.delay = 20 * time.Millisecond

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.p.Run(context.Background(), upload(jobs.LanguageUrdu, jobs.ModeLive))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("job failed: %v", err)
		}
	}
	if got := f.engine.maxSeen.Load(); got > 2 {
		t.Errorf("engine saw %d concurrent calls, want <= 2", got)
	}
	if got := f.engine.maxTx.Load(); got > 2 {
		t.Errorf("%d jobs were transcribing at once, want <= 2", got)
	}
	if got := f.tracker.Count(jobs.StatusCompleted); got != 5 {
		t.Errorf("completed = %d, want 5", got)
	}
	f.assertClean(t)
}

func TestRun_ReleasesEngineWhileHoldingPermit(t *testing.T) {
	f := newFixture(t, &toneDecoder{seconds: 15}, 2)

	if _, err := f.p.Run(context.Background(), upload(jobs.LanguageUrdu, jobs.ModeLive)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := f.engine.released.Load(); got != 1 {
		t.Fatalf("ReleaseCache calls = %d, want 1", got)
	}
	if got := f.engine.inUseAtRelease.Load(); got != 1 {
		t.Errorf("gate in use at release = %d, want the job's own permit", got)
	}
	f.assertClean(t)
}

// dirCountingDecoder records how many job directories exist whenever a job
// starts normalizing.
type dirCountingDecoder struct {
	toneDecoder
	root    string
	maxDirs atomic.Int32
}

func (d *dirCountingDecoder) Normalize(ctx context.Context, src, dst string) (*audio.Normalized, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}
	raise(&d.maxDirs, int32(len(entries)))
	return d.toneDecoder.Normalize(ctx, src, dst)
}

func TestRun_NextJobFindsPreviousStorageGone(t *testing.T) {
	dec := &dirCountingDecoder{toneDecoder: toneDecoder{seconds: 15}}
	f := newFixture(t, dec, 1)
	dec.root = f.root
	f.engine.delay = 10 * time.Millisecond

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.p.Run(context.Background(), upload(jobs.LanguageEnglish, jobs.ModeLive))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("job failed: %v", err)
		}
	}
	if got := dec.maxDirs.Load(); got != 1 {
		t.Errorf("an admitted job saw %d job directories, want only its own", got)
	}
	f.assertClean(t)
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.MaxGroupSize != 3 {
		t.Errorf("MaxGroupSize = %d", cfg.MaxGroupSize)
	}
	if cfg.Chunking.ChunkDuration != 10*time.Second {
		t.Errorf("ChunkDuration = %v", cfg.Chunking.ChunkDuration)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(Deps{}, Config{}); err == nil {
		t.Fatal("expected error without decoder")
	}
}
