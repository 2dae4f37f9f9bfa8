package feature

import (
	"testing"

	"github.com/matzehuels/followstreams/pkg/errors"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		in      string
		want    Tag
		wantErr bool
	}{
		{"natural=water", Tag{"natural", "water"}, false},
		{" waterway = stream ", Tag{"waterway", "stream"}, false},
		{"name=a=b", Tag{"name", "a=b"}, false},
		{"natural", Tag{}, true},
		{"=water", Tag{}, true},
		{"natural=", Tag{}, true},
		{"", Tag{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTag(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTag(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("error code = %s, want INVALID_INPUT", errors.GetCode(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseTag(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got.String() != tt.want.Key+"="+tt.want.Value {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	tags, err := ParseTags([]string{"natural=water", "waterway=river"})
	if err != nil {
		t.Fatalf("ParseTags: %v", err)
	}
	if len(tags) != 2 || tags[1] != (Tag{"waterway", "river"}) {
		t.Errorf("ParseTags = %v", tags)
	}

	if _, err := ParseTags([]string{"natural=water", "bogus"}); err == nil {
		t.Error("expected error for malformed tag")
	}
}

func TestWaterTags(t *testing.T) {
	match := MatchAny(WaterTags)
	tests := []struct {
		tags map[string]string
		want bool
	}{
		{map[string]string{"natural": "water"}, true},
		{map[string]string{"water": "oxbow"}, true},
		{map[string]string{"waterway": "tidal_channel"}, true},
		{map[string]string{"waterway": "dam"}, false},
		{map[string]string{"highway": "primary"}, false},
		{nil, false},
	}

	for _, tt := range tests {
		f := New(1, nil, tt.tags)
		if got := match(f); got != tt.want {
			t.Errorf("MatchAny(WaterTags)(%v) = %v, want %v", tt.tags, got, tt.want)
		}
	}
}
