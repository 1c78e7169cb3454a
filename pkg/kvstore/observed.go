package kvstore

import (
	"context"
	"time"
)

// ObserveFunc receives the operation name and its latency.
type ObserveFunc func(op string, d time.Duration)

type observed struct {
	store   Store
	observe ObserveFunc
}

// WithObserver reports the latency of every call to fn.
func WithObserver(store Store, fn ObserveFunc) Store {
	if fn == nil {
		return store
	}
	return &observed{store: store, observe: fn}
}

func (o *observed) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	value, err := o.store.Get(ctx, key)
	o.observe("get", time.Since(start))
	return value, err
}

func (o *observed) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := o.store.Set(ctx, key, value)
	o.observe("set", time.Since(start))
	return err
}

func (o *observed) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := o.store.Delete(ctx, key)
	o.observe("delete", time.Since(start))
	return err
}
