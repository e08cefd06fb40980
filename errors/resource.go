package errors

import (
	stderrors "errors"
	"strings"
	"syscall"
)

// Resource names reported in RESOURCE_EXHAUSTED details.
const (
	ResourceDisk        = "disk space"
	ResourceAccelerator = "accelerator memory"
)

var exhaustionMarkers = []struct {
	marker   string
	resource string
}{
	{"no space left on device", ResourceDisk},
	{"disk quota exceeded", ResourceDisk},
	{"cuda out of memory", ResourceAccelerator},
	{"out of memory", ResourceAccelerator},
}

// AsResourceExhausted returns a RESOURCE_EXHAUSTED AppError when err signals
// a full disk or exhausted accelerator memory, and nil otherwise. Both the
// errno and the messages printed by external tools are recognized.
func AsResourceExhausted(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok && appErr.Code == ErrCodeResourceExhausted {
		return appErr
	}
	if stderrors.Is(err, syscall.ENOSPC) || stderrors.Is(err, syscall.EDQUOT) {
		return ResourceExhausted(ResourceDisk, err)
	}
	if resource := ExhaustedResource(err.Error()); resource != "" {
		return ResourceExhausted(resource, err)
	}
	return nil
}

// ExhaustedResource scans free-form output (stderr, response bodies) for a
// resource exhaustion message and returns the resource name, or "".
func ExhaustedResource(text string) string {
	lower := strings.ToLower(text)
	for _, m := range exhaustionMarkers {
		if strings.Contains(lower, m.marker) {
			return m.resource
		}
	}
	return ""
}
