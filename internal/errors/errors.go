// Package errors defines the pipeline error taxonomy. Every stage fails
// fast: the first error is wrapped with stage and locus context and
// surfaced to the caller. There is no retry and no partial-result
// recovery.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code identifies the error category for machine consumption.
type Code string

const (
	// CodeMalformedInput indicates a schema mismatch in the input file:
	// wrong header, wrong column count, or violated ordering precondition.
	CodeMalformedInput Code = "MALFORMED_INPUT"
	// CodeParse indicates an unparseable field that is not the documented
	// missing-value token.
	CodeParse Code = "PARSE_ERROR"
	// CodeInvalidFrequency indicates an unrecognized resample frequency
	// specifier.
	CodeInvalidFrequency Code = "INVALID_FREQUENCY"
	// CodeIO indicates a read or write failure on an input or output file.
	CodeIO Code = "IO_ERROR"
)

// PipelineError is a structured error carrying the failing stage and, where
// meaningful, the record line and column at fault.
type PipelineError struct {
	Code    Code
	Stage   string
	Message string
	Line    int    // 1-based input line, 0 when not applicable
	Column  string // column name, empty when not applicable
	Err     error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("%s [%s]: %s", e.Stage, e.Code, e.Message)
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d", e.Line)
		if e.Column != "" {
			msg += fmt.Sprintf(", column %s", e.Column)
		}
		msg += ")"
	} else if e.Column != "" {
		msg += fmt.Sprintf(" (column %s)", e.Column)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewMalformedInput creates a schema-mismatch error.
func NewMalformedInput(stage, message string) *PipelineError {
	return &PipelineError{Code: CodeMalformedInput, Stage: stage, Message: message}
}

// NewParse creates a parse error located at a specific line and column.
func NewParse(stage string, line int, column, message string, err error) *PipelineError {
	return &PipelineError{Code: CodeParse, Stage: stage, Message: message, Line: line, Column: column, Err: err}
}

// NewInvalidFrequency creates an error for an unrecognized frequency
// specifier.
func NewInvalidFrequency(stage, spec string) *PipelineError {
	return &PipelineError{Code: CodeInvalidFrequency, Stage: stage, Message: fmt.Sprintf("unrecognized frequency %q", spec)}
}

// NewIO creates an error for a failed read or write.
func NewIO(stage, operation string, err error) *PipelineError {
	return &PipelineError{Code: CodeIO, Stage: stage, Message: operation, Err: err}
}

// HasCode reports whether err is (or wraps) a PipelineError with the given
// code.
func HasCode(err error, code Code) bool {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// StageOf returns the failing stage of err, or the empty string when err is
// not a PipelineError.
func StageOf(err error) string {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}
