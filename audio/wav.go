package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	apperrors "github.com/kbukum/chunkscribe/errors"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag.
const wavFormatPCM = 1

// Load reads the header of a PCM WAV file and reports its layout and length.
// A file without any sample frames is a decode failure.
func Load(path string) (*Normalized, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.DecodeFailed("Normalized audio could not be opened.", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, apperrors.DecodeFailed("No audio found in the provided media.", fmt.Errorf("audio: %s is not a valid PCM wav file", path))
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, apperrors.DecodeFailed("Normalized audio could not be read.", err)
	}

	frameSize := int64(dec.NumChans) * int64(dec.BitDepth/8)
	if frameSize <= 0 {
		return nil, apperrors.DecodeFailed("Normalized audio has an invalid layout.", fmt.Errorf("audio: channels=%d bit_depth=%d", dec.NumChans, dec.BitDepth))
	}
	n := &Normalized{
		Path:       path,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Frames:     int64(dec.PCMSize) / frameSize,
	}
	if n.Frames == 0 {
		return nil, apperrors.DecodeFailed("No audio found in the provided media.", fmt.Errorf("audio: %s has no sample frames", path))
	}
	return n, nil
}

// Reader streams interleaved samples from a WAV file.
type Reader struct {
	f      *os.File
	dec    *wav.Decoder
	format Format
}

// Open prepares path for sequential frame reads.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("audio: %s is not a valid PCM wav file", path)
	}
	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{
		f:   f,
		dec: dec,
		format: Format{
			SampleRate: int(dec.SampleRate),
			Channels:   int(dec.NumChans),
			BitDepth:   int(dec.BitDepth),
		},
	}, nil
}

// Format returns the PCM layout of the file being read.
func (r *Reader) Format() Format { return r.format }

// ReadFrames reads up to frames sample frames and returns the interleaved
// samples. It returns io.EOF once the data chunk is exhausted.
func (r *Reader) ReadFrames(frames int) ([]int, error) {
	if frames <= 0 {
		return nil, nil
	}
	want := frames * r.format.Channels
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: r.format.Channels, SampleRate: r.format.SampleRate},
		Data:   make([]int, want),
	}
	out := make([]int, 0, want)
	for len(out) < want {
		buf.Data = buf.Data[:want-len(out)]
		n, err := r.dec.PCMBuffer(buf)
		out = append(out, buf.Data[:n]...)
		if err != nil {
			if err == io.EOF {
				break
			}
			return out, err
		}
		if n == 0 {
			break
		}
	}
	if len(out) == 0 {
		return nil, io.EOF
	}
	return out, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error { return r.f.Close() }

// WriteWAV writes interleaved samples to path as a PCM WAV file, replacing
// any existing file.
func WriteWAV(path string, format Format, samples []int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc := wav.NewEncoder(f, format.SampleRate, format.BitDepth, format.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
		Data:           samples,
		SourceBitDepth: format.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audio: write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: finalize %s: %w", path, err)
	}
	return nil
}
