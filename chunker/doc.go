// Package chunker splits normalized audio into fixed-length WAV chunks.
//
// Windows are cut on sample frames. A trailing window shorter than the
// minimum chunk length is appended to the previous chunk so the engine never
// sees a fragment too short to transcribe. Chunks that cannot be written are
// skipped and reported as gaps; the job keeps going.
//
// # Usage
//
//	res, err := chunker.Split(ctx, norm, job.ChunkDir(), chunker.DefaultOptions(), log)
//	for _, c := range res.Chunks {
//	    fmt.Println(c.Index, c.Start, c.End, c.Path)
//	}
package chunker
