package cache

// ScopedKeyer wraps a Keyer with a prefix. The CLI scopes keys by build
// version so an upgrade never serves artifacts rendered by an older release.
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

// TreeKey generates a prefixed key for a rendered placement tree.
func (k *ScopedKeyer) TreeKey(dotHash string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(dotHash, opts)
}
