// Package sanitizer normalizes free-form text before validation and storage.
//
// All functions are idempotent and handle invalid input by returning an
// empty string rather than an error.
package sanitizer
