// Package audio turns uploaded media into normalized mono PCM WAV and gives
// the rest of the pipeline frame-level access to it.
//
// Decoding is delegated to ffmpeg through the process package. Reading and
// writing WAV files uses github.com/go-audio/wav so chunk files carry a
// correct RIFF header without shelling out again.
//
// # Usage
//
//	dec := audio.NewFFmpegDecoder(audio.DefaultConfig(), process.NewAdapter(process.Config{}), log)
//	norm, err := dec.Normalize(ctx, "upload.mp4", "audio.wav")
//	if err != nil {
//	    return err // DECODE_FAILED or RESOURCE_EXHAUSTED
//	}
//	fmt.Println(norm.Duration())
package audio
