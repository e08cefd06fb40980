// Package workspace lays out job-scoped scratch directories on local disk.
//
// Every job gets root/<jobID> holding the uploaded source, the normalized
// audio and a chunks/ directory. Removing the job directory removes all of
// the job's intermediate artifacts.
package workspace
