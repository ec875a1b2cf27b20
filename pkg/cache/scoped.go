package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "modelgraph:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SummaryKey implements [Keyer].
func (k *ScopedKeyer) SummaryKey(docHash string) string {
	return k.prefix + k.inner.SummaryKey(docHash)
}

// ArtifactKey implements [Keyer].
func (k *ScopedKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(docHash, opts)
}
