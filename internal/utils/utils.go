package utils

import (
	"math"
	"math/rand"
	"mime"
	"regexp"
	"time"
)

// textContentTypePatterns is a slice of regular expressions that match content types
// considered to be text-based. This includes "text/*", "application/json", and
// "application/*+json" variants such as problem+json.
//
//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
var textContentTypePatterns = []*regexp.Regexp{
	regexp.MustCompile("^text/.+"),
	regexp.MustCompile("^application/json$"),
	regexp.MustCompile(`^application/.+\+json$`),
	regexp.MustCompile(`^application/x-www-form-urlencoded$`),
}

// SafeUint64ToInt64 converts an uint64 value to an int64 safely,
// ensuring that the value does not exceed the maximum limit of int64.
func SafeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(val)
}

// SafeInt64ToInt converts an int64 value to an int safely,
// clamping negative values to zero.
func SafeInt64ToInt(val int64) int {
	if val < 0 {
		return 0
	}

	if val > math.MaxInt {
		return math.MaxInt
	}

	return int(val)
}

// IsTextContentType reports whether the given content type describes
// a text-based payload that is safe to include in debug logs.
func IsTextContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, pattern := range textContentTypePatterns {
		if pattern.MatchString(mediaType) {
			return true
		}
	}

	return false
}

// RandomPauseDuration returns a random duration between the min and max
// bounds. Swapped bounds are reordered; a non-positive upper bound yields
// zero.
func RandomPauseDuration(minPause, maxPause time.Duration) time.Duration {
	// Ensure minPause is always less than or equal to maxPause.
	if minPause > maxPause {
		minPause, maxPause = maxPause, minPause
	}

	if maxPause <= 0 {
		return 0
	}

	randomDelay := maxPause
	if maxPause > minPause {
		randomDelay = minPause + time.Duration(
			//nolint:gosec // math/rand is fine for jitter.
			rand.Int63n(int64(maxPause-minPause)),
		)
	}

	return randomDelay
}

// RandomPause pauses execution for a random duration between min and max values.
// The min and max parameters should be of type time.Duration and represent
// the lower and upper bounds of the delay period, respectively.
func RandomPause(minPause, maxPause time.Duration) {
	time.Sleep(RandomPauseDuration(minPause, maxPause))
}
