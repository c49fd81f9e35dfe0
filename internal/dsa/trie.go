// Package dsa provides the prefix index behind the in-memory outline
// history. Uses go-radix for a compressed prefix tree (radix tree).
package dsa

import (
	"github.com/armon/go-radix"
)

// Trie wraps go-radix for a compressed prefix tree (radix tree).
// Record ids share long prefixes only rarely, so most keys sit in a
// single compressed node.
//
// Time Complexity: O(k) where k is key length
type Trie[V any] struct {
	tree *radix.Tree
}

// NewTrie creates a new empty radix tree.
func NewTrie[V any]() *Trie[V] {
	return &Trie[V]{tree: radix.New()}
}

// Insert adds or replaces the value stored under key.
func (t *Trie[V]) Insert(key string, value V) {
	t.tree.Insert(key, value)
}

// Search looks up a key in the tree.
func (t *Trie[V]) Search(key string) (V, bool) {
	val, found := t.tree.Get(key)
	if !found {
		var zero V
		return zero, false
	}
	v, ok := val.(V)
	return v, ok
}

// StartsWith returns up to limit keys that start with prefix, in key
// order. A limit of zero or less means no limit.
func (t *Trie[V]) StartsWith(prefix string, limit int) []string {
	var results []string
	t.tree.WalkPrefix(prefix, func(k string, v interface{}) bool {
		results = append(results, k)
		return limit > 0 && len(results) >= limit
	})
	return results
}

// Len returns the number of keys in the tree.
func (t *Trie[V]) Len() int {
	return t.tree.Len()
}

// ForEach calls fn for each key-value pair in key order.
func (t *Trie[V]) ForEach(fn func(key string, value V)) {
	t.tree.Walk(func(k string, v interface{}) bool {
		if val, ok := v.(V); ok {
			fn(k, val)
		}
		return false // continue walking
	})
}
