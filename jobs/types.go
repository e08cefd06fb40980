package jobs

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/chunkscribe/transcription"
)

// Status is a job lifecycle state.
type Status string

const (
	StatusPending      Status = "pending"
	StatusAdmitted     Status = "admitted"
	StatusNormalizing  Status = "normalizing"
	StatusChunking     Status = "chunking"
	StatusTranscribing Status = "transcribing"
	StatusStitching    Status = "stitching"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// lifecycle lists the forward path; StatusFailed is reachable from any
// non-terminal entry.
var lifecycle = []Status{
	StatusPending,
	StatusAdmitted,
	StatusNormalizing,
	StatusChunking,
	StatusTranscribing,
	StatusStitching,
	StatusCompleted,
}

// Statuses returns every status in lifecycle order, failed last.
func Statuses() []Status {
	return append(append([]Status(nil), lifecycle...), StatusFailed)
}

// Rank orders statuses along the lifecycle. Failed ranks after every other
// status, so a job's rank never decreases.
func (s Status) Rank() int {
	if s == StatusFailed {
		return len(lifecycle)
	}
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	for i := 0; i < len(lifecycle)-1; i++ {
		if lifecycle[i] == from {
			return lifecycle[i+1] == to
		}
	}
	return false
}

// Language is the spoken language of a job.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageUrdu    Language = "ur"
)

// ParseLanguage accepts ISO codes and English names, case-insensitively.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return LanguageEnglish, nil
	case "ur", "urdu":
		return LanguageUrdu, nil
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

// Mode selects what a job produces.
type Mode string

const (
	// ModeLive transcribes in the spoken language.
	ModeLive Mode = "live"
	// ModeReport produces English text for reporting.
	ModeReport Mode = "report"
	// ModeTranslate produces English text.
	ModeTranslate Mode = "translate"
)

// ParseMode accepts a mode name, case-insensitively. Empty means live and
// the legacy "dataset" news type is a report.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeLive, nil
	case ModeLive, ModeReport, ModeTranslate:
		return m, nil
	case "dataset":
		return ModeReport, nil
	}
	return "", fmt.Errorf("unsupported mode %q", s)
}

// Task returns the engine task for the mode.
func (m Mode) Task() transcription.Task {
	if m == ModeReport || m == ModeTranslate {
		return transcription.TaskTranslate
	}
	return transcription.TaskTranscribe
}

// OutputLanguage returns the language of the text a job in this mode
// produces for spoken language lang.
func (m Mode) OutputLanguage(lang Language) Language {
	if m.Task() == transcription.TaskTranslate {
		return LanguageEnglish
	}
	return lang
}

// Job is a snapshot of one transcription job.
type Job struct {
	ID         string    `json:"id"`
	SourceName string    `json:"source_name"`
	Language   Language  `json:"language"`
	Mode       Mode      `json:"mode"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	// Error is set once the job has failed.
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}
