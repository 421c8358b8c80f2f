// Package utils contains small shared helpers: safe numeric conversions,
// content-type classification for transport logging, and randomized pauses
// used between retry attempts.
package utils
