// Package apperrors defines structured application error types,
// allowing for a clear distinction between error classes (configuration,
// invalid funnel input, etc.) and for mapping them to process exit codes.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Wrapping types implement Unwrap() to support errors.Is() and errors.As().
package apperrors
