// Package logger provides structured logging on top of zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. Pipeline code tags its
// lines with job_id, stage and chunk_index so one job can be followed end to
// end.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("dispatch").WithJob(jobID)
//	log.Warn("chunk skipped", logger.ChunkFields(3, path))
package logger
