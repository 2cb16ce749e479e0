package cache

// ScopedKeyer prefixes the keys of another Keyer, for example to keep one
// preview server's entries apart from another's in a shared redis:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "survfit:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ModelKey implements [Keyer].
func (k *ScopedKeyer) ModelKey(datasetHash string, opts ModelKeyOpts) string {
	return k.prefix + k.inner.ModelKey(datasetHash, opts)
}

// ArtifactKey implements [Keyer].
func (k *ScopedKeyer) ArtifactKey(figureID string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(figureID, opts)
}
