// Package enrich calls the optional translation and summarization services
// on a finished transcript.
//
// Both services sit behind a short fixed timeout. Their failures are
// reported next to the transcript and never fail the job.
package enrich
