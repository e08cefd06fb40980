package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/jobs"
	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/pipeline"
	"github.com/kbukum/chunkscribe/server"
	"github.com/kbukum/chunkscribe/sse"
	"github.com/kbukum/chunkscribe/validation"
)

// Form fields and headers read by Transcribe.
const (
	FieldMediaFile       = "media_file"
	FieldLegacyMediaFile = "video_file"
	FieldLanguage        = "language"
	FieldMode            = "mode"
	FieldEnrich          = "enrich"
	FieldJobID           = "job_id"
	HeaderLanguage       = "language"
	HeaderNewsType       = "news_type"
)

// Runner runs one transcription job.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// JobStore looks up tracked jobs.
type JobStore interface {
	Get(id string) (jobs.Job, error)
	Snapshot() []jobs.Job
}

// Handler serves the transcription routes.
type Handler struct {
	runner Runner
	jobs   JobStore
	events *sse.Hub
	log    *logger.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithEvents enables the job status stream served from hub.
func WithEvents(hub *sse.Hub) HandlerOption {
	return func(h *Handler) { h.events = hub }
}

// NewHandler creates a Handler.
func NewHandler(runner Runner, store JobStore, log *logger.Logger, opts ...HandlerOption) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	h := &Handler{runner: runner, jobs: store, log: log.WithComponent("api")}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/transcriptions", h.Transcribe)
	v1.GET("/jobs", h.ListJobs)
	v1.GET("/jobs/:id", h.GetJob)
	if h.events != nil {
		v1.GET("/jobs/:id/events", h.StreamJob)
	}
}

// Transcribe accepts an upload and responds with the finished transcript.
// The request blocks while the job waits for admission.
func (h *Handler) Transcribe(c *gin.Context) {
	req, closeFn, err := h.parse(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	defer closeFn()

	log := h.log.WithContext(c.Request.Context())
	log.Info("transcription requested", logger.Fields(
		"filename", req.Filename,
		logger.FieldLanguage, string(req.Language),
		logger.FieldMode, string(req.Mode),
	))

	res, err := h.runner.Run(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, res)
}

// parse builds a pipeline request from the multipart form. The returned
// func closes the uploaded file.
func (h *Handler) parse(c *gin.Context) (pipeline.Request, func(), error) {
	fh, err := c.FormFile(FieldMediaFile)
	if errors.Is(err, http.ErrMissingFile) {
		fh, err = c.FormFile(FieldLegacyMediaFile)
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return pipeline.Request{}, nil, apperrors.New(apperrors.ErrCodeInvalidInput,
				"The upload exceeds the maximum allowed size.", http.StatusRequestEntityTooLarge).
				WithDetail("limit_bytes", maxErr.Limit)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return pipeline.Request{}, nil, apperrors.MissingField(FieldMediaFile)
		default:
			return pipeline.Request{}, nil, apperrors.InvalidInput(FieldMediaFile, err.Error())
		}
	}

	v := validation.New()
	rawLang := firstNonEmpty(c.PostForm(FieldLanguage), c.GetHeader(HeaderLanguage))
	v.Required(FieldLanguage, rawLang)
	lang, langErr := jobs.ParseLanguage(rawLang)
	v.Check(rawLang == "" || langErr == nil, FieldLanguage, "must be one of: en english ur urdu")

	rawMode := firstNonEmpty(c.PostForm(FieldMode), c.GetHeader(HeaderNewsType))
	mode, modeErr := jobs.ParseMode(rawMode)
	v.Check(modeErr == nil, FieldMode, "must be one of: live report dataset translate")

	id := c.PostForm(FieldJobID)
	v.OptionalUUID(FieldJobID, id)
	if verr := v.Err(); verr != nil {
		return pipeline.Request{}, nil, verr
	}

	f, err := fh.Open()
	if err != nil {
		return pipeline.Request{}, nil, apperrors.InvalidInput(FieldMediaFile, "upload could not be read")
	}
	closeFn := func() {
		if cerr := f.Close(); cerr != nil {
			h.log.Warn("upload not closed", logger.MergeWithError(nil, cerr))
		}
	}

	return pipeline.Request{
		ID:       id,
		Media:    f,
		Filename: fh.Filename,
		Language: lang,
		Mode:     mode,
		Enrich:   isTrue(c.PostForm(FieldEnrich)),
	}, closeFn, nil
}

// GetJob returns one job's tracked state.
func (h *Handler) GetJob(c *gin.Context) {
	id := c.Param("id")
	job, err := h.jobs.Get(id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			server.RespondWithError(c, apperrors.NotFound("job", id))
			return
		}
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, job)
}

// ListJobs returns the tracked jobs, oldest first.
func (h *Handler) ListJobs(c *gin.Context) {
	server.RespondOK(c, gin.H{"jobs": h.jobs.Snapshot()})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
