// Package kvstore provides the string key-value persistence used for the
// ledger documents. Each key holds one serialized JSON blob and every write
// replaces the whole value, mirroring browser local storage semantics.
package kvstore

import (
	"context"

	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = appErrors.ErrKeyNotFound

// Store is a whole-value key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Prefixed namespaces every key of an underlying store.
type Prefixed struct {
	Store  Store
	Prefix string
}

// WithPrefix wraps the store so all keys receive the prefix. An empty prefix
// returns the store unchanged.
func WithPrefix(store Store, prefix string) Store {
	if prefix == "" {
		return store
	}
	return &Prefixed{Store: store, Prefix: prefix}
}

func (p *Prefixed) Get(ctx context.Context, key string) (string, error) {
	return p.Store.Get(ctx, p.Prefix+key)
}

func (p *Prefixed) Set(ctx context.Context, key, value string) error {
	return p.Store.Set(ctx, p.Prefix+key, value)
}

func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.Store.Delete(ctx, p.Prefix+key)
}
