// Package transcription defines the speech engine contract used by the
// dispatcher: the Provider interface, request and response types, the
// engine error sentinels, and a Router that picks an engine per language.
//
// # Backends
//
//   - transcription/whisper: faster-whisper HTTP sidecar
//
// # Usage
//
//	router := transcription.NewRouter(transcription.NewManager(log), transcription.Routes{"ur": "whisper-ur"})
//	engine, err := router.Route(ctx, "ur")
//	resp, err := engine.Transcribe(ctx, transcription.TranscriptionRequest{
//	    AudioPath: chunk.Path,
//	    Language:  "ur",
//	    Task:      transcription.TaskTranscribe,
//	})
package transcription
