package audio

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/process"
)

var mono16k = Format{SampleRate: 16000, Channels: 1, BitDepth: 16}

func writeTone(t *testing.T, path string, frames int) {
	t.Helper()
	samples := make([]int, frames)
	for i := range samples {
		samples[i] = (i % 200) - 100
	}
	if err := WriteWAV(path, mono16k, samples); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
}

func TestWriteWAVAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTone(t, path, 24000)

	n, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n.Frames != 24000 {
		t.Errorf("Frames = %d, want 24000", n.Frames)
	}
	if n.SampleRate != 16000 || n.Channels != 1 || n.BitDepth != 16 {
		t.Errorf("unexpected layout: %+v", n)
	}
	if got := n.Seconds(); got != 1.5 {
		t.Errorf("Seconds() = %v, want 1.5", got)
	}
}

func TestLoad_NotWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.wav")
	if err := os.WriteFile(path, []byte("definitely not riff"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if apperrors.CodeOf(err) != apperrors.ErrCodeDecodeFailed {
		t.Fatalf("expected DECODE_FAILED, got %v", err)
	}
}

func TestReader_ReadFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTone(t, path, 2500)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	var sizes []int
	for {
		samples, err := r.ReadFrames(1000)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadFrames: %v", err)
		}
		sizes = append(sizes, len(samples))
	}
	if !slices.Equal(sizes, []int{1000, 1000, 500}) {
		t.Errorf("read sizes = %v, want [1000 1000 500]", sizes)
	}
}

func fakeFFmpeg(frames int, stderr string, runErr error) process.Executor {
	return process.ExecutorFunc(func(_ context.Context, cmd process.Command) (*process.Result, error) {
		res := &process.Result{Stderr: []byte(stderr)}
		if runErr != nil {
			res.ExitCode = 1
			return res, runErr
		}
		dst := cmd.Args[len(cmd.Args)-1]
		if frames < 0 {
			return res, os.WriteFile(dst, nil, 0o600)
		}
		samples := make([]int, frames)
		return res, WriteWAV(dst, mono16k, samples)
	})
}

func TestFFmpegDecoder_Normalize(t *testing.T) {
	dir := t.TempDir()
	dec := NewFFmpegDecoder(Config{}, fakeFFmpeg(32000, "", nil), nil)

	n, err := dec.Normalize(context.Background(), filepath.Join(dir, "in.mp4"), filepath.Join(dir, "out.wav"))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if n.Duration().Seconds() != 2 {
		t.Errorf("Duration = %v, want 2s", n.Duration())
	}
}

func TestFFmpegDecoder_Args(t *testing.T) {
	dec := NewFFmpegDecoder(Config{}, nil, nil)
	got := dec.Args("in.mkv", "out.wav")
	want := []string{"-hide_banner", "-nostdin", "-y", "-i", "in.mkv", "-vn", "-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le", "out.wav"}
	if !slices.Equal(got, want) {
		t.Errorf("Args = %v\nwant %v", got, want)
	}
}

func TestFFmpegDecoder_Failures(t *testing.T) {
	tests := []struct {
		name   string
		exec   process.Executor
		expect apperrors.ErrorCode
	}{
		{
			name:   "no audio stream",
			exec:   fakeFFmpeg(0, "Output file #0 does not contain any stream\n", errors.New("exit status 1")),
			expect: apperrors.ErrCodeDecodeFailed,
		},
		{
			name:   "corrupt input",
			exec:   fakeFFmpeg(0, "in.mp4: Invalid data found when processing input\n", errors.New("exit status 1")),
			expect: apperrors.ErrCodeDecodeFailed,
		},
		{
			name:   "disk full",
			exec:   fakeFFmpeg(0, "av_interleaved_write_frame(): No space left on device\n", errors.New("exit status 1")),
			expect: apperrors.ErrCodeResourceExhausted,
		},
		{
			name:   "empty output",
			exec:   fakeFFmpeg(-1, "", nil),
			expect: apperrors.ErrCodeDecodeFailed,
		},
		{
			name:   "zero frames",
			exec:   fakeFFmpeg(0, "", nil),
			expect: apperrors.ErrCodeDecodeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			dec := NewFFmpegDecoder(Config{}, tt.exec, nil)
			_, err := dec.Normalize(context.Background(), filepath.Join(dir, "in.mp4"), filepath.Join(dir, "out.wav"))
			if got := apperrors.CodeOf(err); got != tt.expect {
				t.Fatalf("code = %q, want %q (err: %v)", got, tt.expect, err)
			}
		})
	}
}

func TestSniff(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "blob")
	writeTone(t, wavPath, 1600)
	textPath := filepath.Join(dir, "readme")
	if err := os.WriteFile(textPath, []byte("just some plain text\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		filename string
		want     Kind
		wantErr  bool
	}{
		{"audio extension", textPath, "clip.MP3", KindAudio, false},
		{"video extension", textPath, "news.mkv", KindVideo, false},
		{"content detection", wavPath, "upload.bin", KindAudio, false},
		{"unsupported", textPath, "notes.txt", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff(tt.path, tt.filename)
			if tt.wantErr {
				if apperrors.CodeOf(err) != apperrors.ErrCodeUnsupportedMedia {
					t.Fatalf("expected UNSUPPORTED_MEDIA, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Sniff = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHumanSize(t *testing.T) {
	tests := map[int64]string{
		0:               "0.00 B",
		512:             "512.00 B",
		1536:            "1.50 KB",
		5 * 1024 * 1024: "5.00 MB",
	}
	for in, want := range tests {
		if got := HumanSize(in); got != want {
			t.Errorf("HumanSize(%d) = %q, want %q", in, got, want)
		}
	}
}
