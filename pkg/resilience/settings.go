package resilience

import "time"

// Settings tunes a CircuitBreaker
type Settings struct {
	Name string
	// Interval clears the failure counts of a closed breaker; zero never clears them.
	Interval time.Duration
	// Timeout is how long an open breaker rejects calls before letting a probe through.
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
	// IsFailure reports whether err counts against the breaker. Nil counts every error.
	IsFailure func(err error) bool
}

// BuildSettings turns primitive config knobs into Settings, substituting
// defaults for non-positive values.
func BuildSettings(name string, intervalSeconds, timeoutSeconds, failureThreshold, successThreshold int) Settings {
	return Settings{
		Name:             name,
		Interval:         secondsOr(intervalSeconds, time.Minute),
		Timeout:          secondsOr(timeoutSeconds, 30*time.Second),
		FailureThreshold: countOr(failureThreshold, 5),
		SuccessThreshold: countOr(successThreshold, 1),
	}
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func countOr(n int, fallback uint32) uint32 {
	if n <= 0 {
		return fallback
	}
	return uint32(n)
}
