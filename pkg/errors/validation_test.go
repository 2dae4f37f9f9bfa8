package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateSeedName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Lake Sammamish", false},
		{"unicode", "Lac Léman", false},
		{"punctuation", "St. Mary's River", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"control char", "Lake\x01", true},
		{"newline", "Lake\nWashington", true},
		{"leading space", " Lake Union", true},
		{"trailing space", "Lake Union ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeedName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSeedName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateSeedName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "data/washington.geojson", false},
		{"absolute", "/tmp/out.geojson", false},
		{"filename only", "out.svg", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 5000)), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateBound(t *testing.T) {
	tests := []struct {
		name                   string
		minX, minY, maxX, maxY float64
		wantErr                bool
	}{
		{"seattle", -122.5, 47.4, -121.9, 47.8, false},
		{"degenerate point", 1, 1, 1, 1, false},
		{"whole world", -180, -90, 180, 90, false},

		{"inverted lon", 10, 0, -10, 1, true},
		{"inverted lat", 0, 10, 1, -10, true},
		{"out of range", -200, 0, 0, 1, true},
		{"nan", math.NaN(), 0, 1, 1, true},
		{"inf", 0, 0, math.Inf(1), 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBound(tt.minX, tt.minY, tt.maxX, tt.maxY)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBound() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeDuplicateFeature,
		ErrCodeNoSeed,
		ErrCodeAmbiguousSeed,
		ErrCodeUnknownSeed,
		ErrCodeEmptyRings,
		ErrCodeMalformedGeometry,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeWorkerFailure,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
