package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateSeedName validates a seed name passed on the command line or in a
// config file. Names are compared exactly against feature name tags, so
// leading and trailing whitespace is almost always a quoting mistake.
func ValidateSeedName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "seed name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "seed name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "seed name contains invalid control characters")
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidInput, "seed name has surrounding whitespace: %q", name)
	}

	return nil
}

// ValidatePath validates a local file path given as input or output.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateBound validates a longitude/latitude bounding box given as
// minLon, minLat, maxLon, maxLat.
func ValidateBound(minLon, minLat, maxLon, maxLat float64) error {
	for _, v := range []float64{minLon, minLat, maxLon, maxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "bounding box contains a non-finite value")
		}
	}
	if minLon > maxLon || minLat > maxLat {
		return New(ErrCodeInvalidInput, "bounding box min exceeds max: (%g,%g) > (%g,%g)", minLon, minLat, maxLon, maxLat)
	}
	if minLon < -180 || maxLon > 180 || minLat < -90 || maxLat > 90 {
		return New(ErrCodeInvalidInput, "bounding box outside longitude/latitude range")
	}
	return nil
}
