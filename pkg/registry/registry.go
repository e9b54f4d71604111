// Package registry tracks display names for peers observed in room
// traffic. It is the only state shared between the chat client's
// concurrent tasks.
package registry

import "sync"

const (
	// PrefixLength is the identity prefix length used as the map key.
	PrefixLength = 8

	// maxEntries bounds registry growth. Crossing it clears the whole
	// table before the next insert rather than evicting by recency.
	maxEntries = 1000
)

// Peer is one registry entry.
type Peer struct {
	Prefix string
	Name   string
}

// Registry is a bounded, concurrency-safe mapping from identity prefix to
// the first display name observed for that peer.
type Registry struct {
	mu    sync.RWMutex
	peers map[string]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{peers: make(map[string]string)}
}

// Prefix truncates an identity to the registry key length. Identities
// shorter than the prefix are used whole.
func Prefix(identity string) string {
	if len(identity) <= PrefixLength {
		return identity
	}
	return identity[:PrefixLength]
}

// Observe records a display name for a peer prefix. The first name seen
// wins; later observations of the same prefix are ignored. The size-cap
// check, possible clear, and insert happen atomically under one lock.
func (r *Registry) Observe(prefix, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.peers) > maxEntries {
		r.peers = make(map[string]string)
	}
	if _, exists := r.peers[prefix]; !exists {
		r.peers[prefix] = name
	}
}

// Lookup returns the display name recorded for a prefix.
func (r *Registry) Lookup(prefix string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.peers[prefix]
	return name, ok
}

// NameOr returns the recorded name for a prefix, or fallback when the
// peer has not been observed yet.
func (r *Registry) NameOr(prefix, fallback string) string {
	if name, ok := r.Lookup(prefix); ok {
		return name
	}
	return fallback
}

// List returns an unordered snapshot of all entries.
func (r *Registry) List() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Peer, 0, len(r.peers))
	for prefix, name := range r.peers {
		out = append(out, Peer{Prefix: prefix, Name: name})
	}
	return out
}

// Len returns the number of tracked peers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}
