// Package pipeline runs one transcription job end to end.
//
// A job waits at the admission gate, then moves strictly sequentially
// through its stages:
//
//	save upload → sniff → normalize → chunk → transcribe → stitch → (enrich)
//
// Each stage is a tracked job status, a span named "pipeline.<status>" and a
// stage duration metric. The job's workspace directory is registered with a
// reaper the moment it exists; the reaper runs on every exit path, panics
// included, before the gate permit is released.
//
// Run detaches from the caller's context: a client that disconnects does
// not cancel a job that has been accepted.
//
//	p, err := pipeline.New(pipeline.Deps{
//	    Gate:      gate,
//	    Decoder:   decoder,
//	    Engines:   router,
//	    Workspace: ws,
//	    Tracker:   tracker,
//	    Logger:    log,
//	}, cfg)
//	res, err := p.Run(ctx, pipeline.Request{Media: file, Filename: "clip.mp4", Language: jobs.LanguageUrdu})
package pipeline
