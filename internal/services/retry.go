package services

import (
	"log"
	"time"
)

// backoffFactor multiplies the delay between successive retry attempts
const backoffFactor = 1.5

// WithRetry calls fn until it succeeds or maxRetries extra attempts have been
// spent, sleeping initialDelay before the first retry and growing the delay by
// backoffFactor for each subsequent one. The last error is returned when every
// attempt fails.
func WithRetry(fn func() (string, error), maxRetries int, initialDelay time.Duration) (string, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * backoffFactor)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Printf("WARNING: attempt %d/%d failed: %v", attempt+1, maxRetries+1, err)
	}

	return "", lastErr
}
