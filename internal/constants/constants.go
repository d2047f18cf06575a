// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Upload constants
const (
	// MaxUploadSize is the maximum accepted size of a multipart upload body
	MaxUploadSize = 32 << 20 // 32 MB

	// MaxImageSize is the maximum dimension (width or height) sent to a
	// recognition provider; larger images are scaled down first
	MaxImageSize = 800
)

// Verification constants
const (
	// DefaultWorkerTimeout bounds a single recognition provider call.
	// A call that exceeds it is reported as a worker error, not a mismatch.
	DefaultWorkerTimeout = 20 * time.Second

	// MaxCombinationLength is the maximum number of gestures in a
	// lock or unlock combination
	MaxCombinationLength = 8

	// GestureUnknown is the sentinel returned when a gesture image cannot
	// be classified as any catalog gesture
	GestureUnknown = "UNKNOWN"

	// MismatchMessage is the single user-facing message for any credential
	// mismatch. Face and gesture failures share it so a caller cannot tell
	// which factor failed.
	MismatchMessage = "incorrect credentials"

	// UnavailableMessage is the user-facing message for recognition worker
	// failures, which are safe to retry unchanged.
	UnavailableMessage = "verification is temporarily unavailable, please try again later"
)
