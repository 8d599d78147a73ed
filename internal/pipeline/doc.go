// Package pipeline orchestrates the one-shot preprocessing batch: load,
// clean, resample, derive features, write. Stages run synchronously in a
// single goroutine and fail fast; the first error terminates the run with
// the failing stage identified.
package pipeline
