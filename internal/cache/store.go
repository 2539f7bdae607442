// Package cache keeps rendered report documents in memory for a short time,
// keyed by report id, so each request gets its own copy instead of sharing a
// file on disk.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DocumentStore is a size-bounded, expiring store of rendered documents.
// It is safe for concurrent use.
type DocumentStore struct {
	lru *expirable.LRU[string, []byte]
}

// NewDocumentStore creates a store holding at most size documents,
// each for at most ttl.
func NewDocumentStore(size int, ttl time.Duration) *DocumentStore {
	return &DocumentStore{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Put stores doc under id, evicting the least recently used entry when full.
func (s *DocumentStore) Put(id string, doc []byte) {
	s.lru.Add(id, doc)
}

// Get returns the document for id if it is still present.
func (s *DocumentStore) Get(id string) ([]byte, bool) {
	return s.lru.Get(id)
}

// Len reports how many documents are currently held.
func (s *DocumentStore) Len() int {
	return s.lru.Len()
}
