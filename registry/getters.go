package registry

import (
	"github.com/vectorhive/core/instance"
	"github.com/vectorhive/core/manifest"
)

// Typed getters build a capability instance on demand from the flat table.
// They return false both for unknown aliases and for aliases registered
// under a different capability type; absence is a normal "not configured"
// outcome, never an error. Callers may cache the returned instance.

// typed looks up alias and checks its declared capability.
func (r *Registry) typed(alias string, t manifest.Type) (instance.Instance, bool) {
	lp, ok := r.lookup(alias)
	if !ok || lp.Manifest.Type != t {
		return nil, false
	}
	return r.instantiate(lp), true
}

// firstOf returns the first-registered plugin of the capability type.
// Storage and database backends are expected to be singular per
// deployment, so their getters take no alias.
func (r *Registry) firstOf(t manifest.Type) (instance.Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, alias := range r.order {
		lp, ok := r.plugins[alias]
		if ok && lp.Manifest.Type == t {
			return r.instantiate(lp), true
		}
	}
	return nil, false
}

// Provider returns the data-source connector registered under alias.
func (r *Registry) Provider(alias string) (*instance.Provider, bool) {
	i, ok := r.typed(alias, manifest.TypeProvider)
	if !ok {
		return nil, false
	}
	return i.(*instance.Provider), true
}

// FileParser returns the file parser registered under alias.
func (r *Registry) FileParser(alias string) (*instance.FileParser, bool) {
	i, ok := r.typed(alias, manifest.TypeFileParser)
	if !ok {
		return nil, false
	}
	return i.(*instance.FileParser), true
}

// Storage returns the authoritative storage backend (first registered).
func (r *Registry) Storage() (*instance.Storage, bool) {
	i, ok := r.firstOf(manifest.TypeStorage)
	if !ok {
		return nil, false
	}
	return i.(*instance.Storage), true
}

// Database returns the authoritative database backend (first registered).
func (r *Registry) Database() (*instance.Database, bool) {
	i, ok := r.firstOf(manifest.TypeDatabase)
	if !ok {
		return nil, false
	}
	return i.(*instance.Database), true
}

// TextVectorizer returns the text vectorizer registered under alias.
func (r *Registry) TextVectorizer(alias string) (*instance.TextVectorizer, bool) {
	i, ok := r.typed(alias, manifest.TypeTextVectorizer)
	if !ok {
		return nil, false
	}
	return i.(*instance.TextVectorizer), true
}

// ImageVectorizer returns the image vectorizer registered under alias.
func (r *Registry) ImageVectorizer(alias string) (*instance.ImageVectorizer, bool) {
	i, ok := r.typed(alias, manifest.TypeImageVectorizer)
	if !ok {
		return nil, false
	}
	return i.(*instance.ImageVectorizer), true
}

// MultimodalVectorizer returns the multimodal vectorizer registered under
// alias.
func (r *Registry) MultimodalVectorizer(alias string) (*instance.MultimodalVectorizer, bool) {
	i, ok := r.typed(alias, manifest.TypeMultimodalVectorizer)
	if !ok {
		return nil, false
	}
	return i.(*instance.MultimodalVectorizer), true
}

// Reranker returns the reranker registered under alias.
func (r *Registry) Reranker(alias string) (*instance.Reranker, bool) {
	i, ok := r.typed(alias, manifest.TypeReranker)
	if !ok {
		return nil, false
	}
	return i.(*instance.Reranker), true
}

// Generative returns the generative-model adapter registered under alias.
func (r *Registry) Generative(alias string) (*instance.Generative, bool) {
	i, ok := r.typed(alias, manifest.TypeGenerative)
	if !ok {
		return nil, false
	}
	return i.(*instance.Generative), true
}

// Enhancer returns the enhancer registered under alias.
func (r *Registry) Enhancer(alias string) (*instance.Enhancer, bool) {
	i, ok := r.typed(alias, manifest.TypeEnhancer)
	if !ok {
		return nil, false
	}
	return i.(*instance.Enhancer), true
}

// Instance returns the capability-typed instance for any registered alias,
// regardless of type. Useful for generic task invocation.
func (r *Registry) Instance(alias string) (instance.Instance, bool) {
	lp, ok := r.lookup(alias)
	if !ok {
		return nil, false
	}
	return r.instantiate(lp), true
}
