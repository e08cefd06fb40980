package audio

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/process"
)

// Decoder converts arbitrary media into normalized PCM WAV.
type Decoder interface {
	Normalize(ctx context.Context, src, dst string) (*Normalized, error)
}

// Config configures the ffmpeg decoder.
type Config struct {
	// Binary is the ffmpeg executable name or path.
	Binary string `yaml:"binary" mapstructure:"binary"`
	// SampleRate is the output sample rate in Hz.
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate"`
	// GracePeriod is how long ffmpeg gets to exit after SIGTERM.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
}

// DefaultConfig returns the decoder defaults: ffmpeg on PATH, 16 kHz.
func DefaultConfig() Config {
	return Config{Binary: "ffmpeg", SampleRate: 16000, GracePeriod: 5 * time.Second}
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Binary == "" {
		c.Binary = d.Binary
	}
	if c.SampleRate <= 0 {
		c.SampleRate = d.SampleRate
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = d.GracePeriod
	}
}

// Validate checks the decoder configuration.
func (c *Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 48000 {
		return fmt.Errorf("audio.sample_rate must be between 8000 and 48000 (got: %d)", c.SampleRate)
	}
	return nil
}

// noAudioMarkers are ffmpeg stderr fragments that mean the input has no
// usable audio track.
var noAudioMarkers = []string{
	"does not contain any stream",
	"matches no streams",
	"output file is empty",
	"invalid data found when processing input",
}

const noAudioMessage = "No audio found in the provided media."

// FFmpegDecoder normalizes media with ffmpeg. It makes a single attempt.
type FFmpegDecoder struct {
	cfg  Config
	exec process.Executor
	log  *logger.Logger
}

var _ Decoder = (*FFmpegDecoder)(nil)

// NewFFmpegDecoder creates a decoder that runs ffmpeg through exec.
func NewFFmpegDecoder(cfg Config, exec process.Executor, log *logger.Logger) *FFmpegDecoder {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &FFmpegDecoder{cfg: cfg, exec: exec, log: log.WithComponent("audio")}
}

// Args returns the ffmpeg arguments used to normalize src into dst.
func (d *FFmpegDecoder) Args(src, dst string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(d.cfg.SampleRate),
		"-c:a", "pcm_s16le",
		dst,
	}
}

// Normalize converts src to mono 16-bit PCM at the configured sample rate.
// Missing audio and empty output are DECODE_FAILED; a full disk is
// RESOURCE_EXHAUSTED.
func (d *FFmpegDecoder) Normalize(ctx context.Context, src, dst string) (*Normalized, error) {
	cmd := process.Command{
		Binary:      d.cfg.Binary,
		Args:        d.Args(src, dst),
		GracePeriod: d.cfg.GracePeriod,
	}
	d.log.Debug("running ffmpeg", logger.Fields(logger.FieldPath, src, "command", cmd.String()))

	result, err := d.exec.Run(ctx, cmd)
	if err != nil {
		return nil, d.classify(ctx, result, err)
	}

	info, err := os.Stat(dst)
	if err != nil || info.Size() == 0 {
		return nil, apperrors.DecodeFailed(noAudioMessage, fmt.Errorf("audio: ffmpeg produced no output for %s", src))
	}

	n, err := Load(dst)
	if err != nil {
		return nil, err
	}
	d.log.Info("media normalized", logger.Fields(
		logger.FieldPath, dst,
		"duration_s", n.Seconds(),
		"sample_rate", n.SampleRate,
	))
	return n, nil
}

func (d *FFmpegDecoder) classify(ctx context.Context, result *process.Result, err error) error {
	if ctx.Err() != nil {
		return apperrors.Internal(fmt.Errorf("audio: decode interrupted: %w", ctx.Err()))
	}
	stderr := ""
	if result != nil {
		stderr = string(result.Stderr)
	}
	if resource := apperrors.ExhaustedResource(stderr); resource != "" {
		return apperrors.ResourceExhausted(resource, err)
	}
	if exhausted := apperrors.AsResourceExhausted(err); exhausted != nil {
		return exhausted
	}

	tail := result.StderrTail(3)
	d.log.Warn("ffmpeg failed", logger.MergeWithError(logger.Fields("stderr", tail), err))

	lower := strings.ToLower(stderr)
	for _, m := range noAudioMarkers {
		if strings.Contains(lower, m) {
			return apperrors.DecodeFailed(noAudioMessage, err).WithDetail("stderr", tail)
		}
	}
	return apperrors.DecodeFailed("The media could not be decoded.", err).WithDetail("stderr", tail)
}
