// Package whisper implements transcription.Provider against a faster-whisper
// HTTP sidecar.
//
// The sidecar exposes:
//
//	POST /transcribe      multipart: audio, model, language, task
//	GET  /health
//	POST /cache/release   frees accelerator memory between jobs
package whisper

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/httpclient"
	"github.com/kbukum/chunkscribe/provider"
	"github.com/kbukum/chunkscribe/resilience"
	"github.com/kbukum/chunkscribe/transcription"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultWhisperURL   = "http://localhost:8387"
	defaultWhisperModel = "large-v2"
	healthTimeout       = 3 * time.Second
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	// Name is the provider name; defaults to ProviderName.
	Name string `yaml:"name" mapstructure:"name"`
	// URL is the sidecar base URL.
	URL string `yaml:"url" mapstructure:"url"`
	// Model is the default model (e.g. large-v2, medium.en, a fine-tuned path).
	Model string `yaml:"model" mapstructure:"model"`
	// Language is used when a request does not set one.
	Language string `yaml:"language" mapstructure:"language"`
	// Timeout bounds one call. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MaxFailures is how many consecutive unavailable answers open the circuit.
	MaxFailures int `yaml:"max_failures" mapstructure:"max_failures"`
	// ResetTimeout is how long the circuit stays open before probing again.
	ResetTimeout time.Duration `yaml:"reset_timeout" mapstructure:"reset_timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ProviderName
	}
	if c.URL == "" {
		c.URL = defaultWhisperURL
	}
	if c.Model == "" {
		c.Model = defaultWhisperModel
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = 3
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = 30 * time.Second
	}
}

// Validate checks the provider configuration.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("whisper %s: timeout must not be negative", c.Name)
	}
	return nil
}

// Provider implements transcription.Provider using a faster-whisper HTTP sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

var (
	_ transcription.Provider      = (*Provider)(nil)
	_ transcription.CacheReleaser = (*Provider)(nil)
	_ provider.HealthChecker      = (*Provider)(nil)
)

// NewProvider creates a new Whisper transcription provider. Connection
// failures and 502, 503 or 504 answers count against its circuit breaker;
// other error answers come from a sidecar that is still serving.
func NewProvider(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
		Breaker: &resilience.CircuitBreakerConfig{
			Name:        cfg.Name,
			MaxFailures: cfg.MaxFailures,
			Timeout:     cfg.ResetTimeout,
			IsFailure:   httpclient.IsUnavailable,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.cfg.Name }

// Model returns the configured default model.
func (p *Provider) Model() string { return p.cfg.Model }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	_, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil
}

// Health reports reachability together with the circuit state.
func (p *Provider) Health(ctx context.Context) provider.HealthStatus {
	details := map[string]any{
		"model":   p.cfg.Model,
		"circuit": p.client.Breaker().State().String(),
	}
	if p.client.Breaker().State() == resilience.StateOpen {
		return provider.HealthStatus{Status: provider.StatusUnavailable, Message: "circuit open", Details: details}
	}
	if !p.IsAvailable(ctx) {
		return provider.HealthStatus{Status: provider.StatusUnavailable, Message: "sidecar unreachable", Details: details}
	}
	if p.client.Breaker().State() == resilience.StateHalfOpen {
		return provider.HealthStatus{Status: provider.StatusDegraded, Message: "circuit half-open", Details: details}
	}
	return provider.HealthStatus{Status: provider.StatusHealthy, Details: details}
}

// Transcribe sends an audio file to the Whisper sidecar and returns the transcription.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: open audio: %w", err)
	}
	defer f.Close()

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	task := req.Task
	if task == "" {
		task = transcription.TaskTranscribe
	}

	fields := map[string]string{"model": model, "task": string(task)}
	if lang != "" {
		fields["language"] = lang
	}
	body := &httpclient.Multipart{
		Fields: fields,
		Files: []httpclient.File{{
			Field:       "audio",
			Name:        filepath.Base(req.AudioPath),
			ContentType: "audio/wav",
			Reader:      f,
		}},
	}

	resp, err := httpclient.Post[whisperResponse](p.client, ctx, "/transcribe", body)
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	return toTranscriptionResponse(&resp.Data), nil
}

// ReleaseCache asks the sidecar to free accelerator memory. Sidecars without
// the endpoint answer 404, which is not an error.
func (p *Provider) ReleaseCache(ctx context.Context) error {
	_, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodPost, Path: "/cache/release"})
	if err == nil || httpclient.IsNotFound(err) {
		return nil
	}
	return fmt.Errorf("whisper %s: release cache: %w", p.cfg.Name, err)
}

// classify maps transport failures onto the transcription error sentinels.
func (p *Provider) classify(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("whisper %s: %w", p.cfg.Name, ctx.Err())
	case httpclient.IsUnavailable(err):
		return fmt.Errorf("whisper %s: %w: %w", p.cfg.Name, transcription.ErrEngineUnavailable, err)
	case httpclient.IsInsufficientStorage(err),
		apperrors.ExhaustedResource(string(httpclient.ResponseBody(err))) != "":
		return fmt.Errorf("whisper %s: %w: %w", p.cfg.Name, transcription.ErrResourceExhausted, err)
	default:
		return fmt.Errorf("whisper %s: %w", p.cfg.Name, err)
	}
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toTranscriptionResponse(resp *whisperResponse) *transcription.TranscriptionResponse {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
	}

	duration := resp.Duration
	if duration == 0 && len(resp.Segments) > 0 {
		duration = resp.Segments[len(resp.Segments)-1].End
	}

	return &transcription.TranscriptionResponse{
		Text:     resp.Text,
		Segments: segments,
		Duration: duration,
		Language: resp.Language,
	}
}
