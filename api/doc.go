// Package api exposes transcription jobs over HTTP.
//
// Routes:
//
//	POST /v1/transcriptions   multipart upload, runs a job and returns the transcript
//	GET  /v1/jobs             recent jobs
//	GET  /v1/jobs/:id         one job's status
//
// The upload goes in the media_file form field (video_file is accepted for
// older clients). Language and mode come from the language and mode form
// fields, or from the language and news_type headers.
package api
