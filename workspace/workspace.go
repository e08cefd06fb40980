package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/util"
)

const (
	audioFile       = "audio.wav"
	chunksDir       = "chunks"
	defaultFileName = "upload"
)

// Workspace manages job directories under one root.
type Workspace struct {
	root string
}

// New creates the root directory if needed and returns a Workspace over it.
func New(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("workspace: create root: %w", err)
	}
	return &Workspace{root: abs}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string { return w.root }

// Sweep removes every entry under the root and returns how many were
// removed. It is meant for startup, before any job runs.
func (w *Workspace) Sweep() (int, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return 0, fmt.Errorf("workspace: read root: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(w.root, e.Name())); err != nil {
			return removed, fmt.Errorf("workspace: remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// Create makes the directory tree for jobID. A tree that cannot be
// completed is removed again.
func (w *Workspace) Create(jobID string) (*Job, error) {
	name := filepath.Base(filepath.Clean(jobID))
	if name == "" || name == "." || name == ".." || name != jobID {
		return nil, apperrors.InvalidInput("job_id", "job id must be a single path element")
	}
	root := filepath.Join(w.root, name)
	if err := os.MkdirAll(filepath.Join(root, chunksDir), 0o750); err != nil {
		_ = os.RemoveAll(root)
		if exhausted := apperrors.AsResourceExhausted(err); exhausted != nil {
			return nil, exhausted
		}
		return nil, fmt.Errorf("workspace: create job directory: %w", err)
	}
	return &Job{id: jobID, root: root}, nil
}

// Job is one job's directory tree.
type Job struct {
	id   string
	root string
}

// ID returns the job ID.
func (j *Job) ID() string { return j.id }

// Root returns the job directory. Removing it removes everything the job wrote.
func (j *Job) Root() string { return j.root }

// AudioPath returns where the normalized audio is written.
func (j *Job) AudioPath() string { return filepath.Join(j.root, audioFile) }

// ChunkDir returns the directory holding chunk files.
func (j *Job) ChunkDir() string { return filepath.Join(j.root, chunksDir) }

// SaveSource writes the uploaded media under a sanitized file name and
// returns its path and size.
func (j *Job) SaveSource(filename string, r io.Reader) (string, int64, error) {
	path := filepath.Join(j.root, "source-"+SanitizeFileName(filename))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, wrapWrite("create source file", err)
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", 0, wrapWrite("write source file", err)
	}
	return path, n, nil
}

// SanitizeFileName reduces name to a safe base name. Path elements, control
// characters and separators are dropped; an empty result becomes "upload".
func SanitizeFileName(name string) string {
	name = util.SanitizeString(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		case ' ':
			return '_'
		}
		return r
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "/" {
		return defaultFileName
	}
	return name
}

func wrapWrite(op string, err error) error {
	if exhausted := apperrors.AsResourceExhausted(err); exhausted != nil {
		return exhausted
	}
	return fmt.Errorf("workspace: %s: %w", op, err)
}
