package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
)

// keyVersion is bumped whenever the serialized graph format changes so that
// entries written by older builds are never read back.
const keyVersion = "v2"

// GraphKeyOpts holds the builder options that change the resulting graph.
type GraphKeyOpts struct {
	// Predicate names the adjacency predicate.
	Predicate string `json:"predicate"`
	// NearMissTolerance changes the reported near misses.
	NearMissTolerance float64 `json:"near_miss_tolerance"`
}

// Keyer derives cache keys.
type Keyer interface {
	// GraphKey returns the key for the adjacency graph of a feature set
	// identified by its content hash, as computed by [Digest].
	GraphKey(featuresHash string, opts GraphKeyOpts) string
}

// Digest returns the hex SHA-256 of everything write produces. Feature sets
// are hashed by streaming their GeoJSON encoding through it.
func Digest(write func(w io.Writer) error) (string, error) {
	h := sha256.New()
	if err := write(h); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DefaultKeyer generates keys of the form "graph:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey hashes the key version, the feature hash and opts together.
func (DefaultKeyer) GraphKey(featuresHash string, opts GraphKeyOpts) string {
	sum, _ := Digest(func(w io.Writer) error {
		return json.NewEncoder(w).Encode(struct {
			Version  string       `json:"v"`
			Features string       `json:"features"`
			Opts     GraphKeyOpts `json:"opts"`
		}{keyVersion, featuresHash, opts})
	})
	return "graph:" + sum
}
