package redis

import "strings"

// DefaultKeyPrefix namespaces every key the store writes.
const DefaultKeyPrefix = "linkfold:"

// Keys builds the Redis key names under a prefix.
type Keys struct {
	prefix string
}

// NewKeys returns key helpers for prefix. An empty prefix means
// DefaultKeyPrefix; a missing trailing colon is added.
func NewKeys(prefix string) Keys {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return Keys{prefix: prefix}
}

// Prefix returns the namespace prefix including the trailing colon.
func (k Keys) Prefix() string { return k.prefix }

// Record returns the key holding the JSON record for id.
func (k Keys) Record(id string) string { return k.prefix + "link:id:" + id }

// Canonical returns the key mapping a canonical URL to its id.
func (k Keys) Canonical(canonicalURL string) string {
	return k.prefix + "link:canonical:" + canonicalURL
}

// All is the sorted set of ids scored by creation time in ms.
func (k Keys) All() string { return k.prefix + "links:all" }

// Platforms is the hash of per-platform counters.
func (k Keys) Platforms() string { return k.prefix + "stats:platforms" }

// Clicks is the hash of per-id click counters.
func (k Keys) Clicks() string { return k.prefix + "links:clicks" }

// IDFromRecordKey extracts the id from a Record key.
func (k Keys) IDFromRecordKey(key string) (string, bool) {
	p := k.prefix + "link:id:"
	if len(key) <= len(p) || !strings.HasPrefix(key, p) {
		return "", false
	}
	return key[len(p):], true
}
