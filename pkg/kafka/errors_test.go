package kafka

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"tagged transient", NewTransientError("publish", errors.New("boom")), ErrorTypeTransient},
		{"tagged permanent", NewPermanentError("decode", errors.New("boom")), ErrorTypePermanent},
		{"wrapped tagged error", fmt.Errorf("outer: %w", NewTransientError("publish", nil)), ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp 127.0.0.1:9092: connection refused"), ErrorTypeTransient},
		{"context deadline", errors.New("context deadline exceeded"), ErrorTypeTransient},
		{"io timeout", errors.New("read tcp: i/o timeout"), ErrorTypeTransient},
		{"unknown errors are permanent", errors.New("schema field missing"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("publish", errors.New("timeout"))
	permanent := NewPermanentError("decode", errors.New("bad payload"))

	tests := []struct {
		name           string
		err            error
		currentRetries int
		maxRetries     int
		want           bool
	}{
		{"transient under budget", transient, 0, 3, true},
		{"transient at budget", transient, 3, 3, false},
		{"permanent never retries", permanent, 0, 3, false},
		{"nil never retries", nil, 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.err, tt.currentRetries, tt.maxRetries); got != tt.want {
				t.Errorf("ShouldRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}
