package enrich

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/httpclient"
	"github.com/kbukum/chunkscribe/logger"
)

const (
	serviceTranslate = "translation"
	serviceSummarize = "summarization"
)

// Summary holds the bilingual summary returned by the summarizer.
type Summary struct {
	Urdu    string `json:"Urdu_summary"`
	English string `json:"English_summary"`
}

// Result is what enrichment added to a transcript.
type Result struct {
	Translation string   `json:"translation,omitempty"`
	Summary     *Summary `json:"summary,omitempty"`
	// Errors maps a service name to the failure message.
	Errors map[string]string `json:"errors,omitempty"`
}

// Translator translates transcript text.
type Translator struct {
	client  *httpclient.Client
	url     string
	timeout time.Duration
}

// Summarizer summarizes transcript text.
type Summarizer struct {
	client  *httpclient.Client
	url     string
	timeout time.Duration
}

type translateRequest struct {
	Text string `json:"text"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

type summarizeRequest struct {
	Input            []string `json:"input"`
	RunningSummaries []string `json:"running_summaries"`
}

// Translate returns the translation of text.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := httpclient.Post[translateResponse](t.client, ctx, t.url, translateRequest{Text: text},
		httpclient.WithHeader("Accept", "application/json"))
	if err != nil {
		return "", classify(serviceTranslate, err)
	}
	return resp.Data.TranslatedText, nil
}

// Summarize returns the Urdu and English summaries of text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := httpclient.Post[Summary](s.client, ctx, s.url,
		summarizeRequest{Input: []string{text}, RunningSummaries: []string{}},
		httpclient.WithHeader("Accept", "application/json"))
	if err != nil {
		return Summary{}, classify(serviceSummarize, err)
	}
	return resp.Data, nil
}

// Enricher runs the configured services.
type Enricher struct {
	translator *Translator
	summarizer *Summarizer
	log        *logger.Logger
}

// New creates an Enricher. Services with an empty URL are skipped.
func New(cfg Config, log *logger.Logger) (*Enricher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	client, err := httpclient.New(httpclient.Config{
		Headers: map[string]string{"Content-Type": "application/json"},
	})
	if err != nil {
		return nil, err
	}

	e := &Enricher{log: log.WithComponent("enrich")}
	if cfg.TranslateURL != "" {
		e.translator = &Translator{client: client, url: cfg.TranslateURL, timeout: cfg.Timeout}
	}
	if cfg.SummarizeURL != "" {
		e.summarizer = &Summarizer{client: client, url: cfg.SummarizeURL, timeout: cfg.Timeout}
	}
	return e, nil
}

// Enrich runs translation and summarization concurrently. It never returns
// an error; failures are listed in Result.Errors.
func (e *Enricher) Enrich(ctx context.Context, text string) *Result {
	res := &Result{}
	if e == nil || text == "" {
		return res
	}

	var mu sync.Mutex
	fail := func(service string, err error) {
		e.log.Warn("enrichment failed", logger.MergeWithError(logger.Fields("service", service), err))
		mu.Lock()
		defer mu.Unlock()
		if res.Errors == nil {
			res.Errors = make(map[string]string)
		}
		res.Errors[service] = err.Error()
	}

	var g errgroup.Group
	if e.translator != nil {
		g.Go(func() error {
			translated, err := e.translator.Translate(ctx, text)
			if err != nil {
				fail(serviceTranslate, err)
				return nil
			}
			mu.Lock()
			res.Translation = translated
			mu.Unlock()
			return nil
		})
	}
	if e.summarizer != nil {
		g.Go(func() error {
			summary, err := e.summarizer.Summarize(ctx, text)
			if err != nil {
				fail(serviceSummarize, err)
				return nil
			}
			mu.Lock()
			res.Summary = &summary
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return res
}

func classify(service string, err error) *apperrors.AppError {
	switch {
	case httpclient.IsTimeout(err):
		return apperrors.Timeout(service).WithCause(err)
	case httpclient.IsConnection(err):
		return apperrors.ConnectionFailed(service).WithCause(err)
	default:
		return apperrors.ExternalServiceError(service, err)
	}
}
