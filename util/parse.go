package util

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffix string
	mult   int64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseBytes parses a human-readable size such as "512KB", "2GB" or
// "2 GB" into bytes. Units are binary; a bare number is bytes.
func ParseBytes(s string) (int64, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	if norm == "" {
		return 0, fmt.Errorf("empty size")
	}
	mult := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(norm, u.suffix) {
			mult = u.mult
			norm = strings.TrimSpace(strings.TrimSuffix(norm, u.suffix))
			break
		}
	}
	val, err := strconv.ParseInt(norm, 10, 64)
	if err != nil || val < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if val > (1<<63-1)/mult {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return val * mult, nil
}

// ParseSize is ParseBytes with a fallback for empty or invalid input.
func ParseSize(s string, defaultBytes int64) int64 {
	n, err := ParseBytes(s)
	if err != nil {
		return defaultBytes
	}
	return n
}
