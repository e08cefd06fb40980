// Package stitch joins per-chunk transcripts into one transcript.
//
// Chunk boundaries cut words in half, and the engine tends to emit the cut
// word on both sides. A Stream drops the first word of a new chunk when it
// repeats the last word already accumulated. Group then folds consecutive
// chunk segments into fixed-size groups for display.
package stitch
