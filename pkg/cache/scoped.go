package cache

// ScopedKeyer wraps a Keyer with a prefix so that several projects can
// share one Redis database without their entries colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "puget-sound:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed key for adjacency graph caching.
func (k *ScopedKeyer) GraphKey(featuresHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(featuresHash, opts)
}
