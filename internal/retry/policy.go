package retry

import "time"

// Classifier separates errors worth another attempt from fatal ones.
type Classifier interface {
	IsTransient(err error) bool
}

// Strategy spaces out attempts. NextDelay gets the zero-based retry number;
// MaxAttempts is the retry budget after the first try (-1 for unlimited).
type Strategy interface {
	NextDelay(attempt int) time.Duration
	MaxAttempts() int
}
