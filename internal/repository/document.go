package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/smart-tuition/pkg/kvstore"
)

// DocumentRepository reads and writes whole JSON documents under fixed keys.
type DocumentRepository struct {
	store kvstore.Store
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(store kvstore.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// ReadRaw returns the stored text and whether the key exists.
func (r *DocumentRepository) ReadRaw(ctx context.Context, key string) (string, bool, error) {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return raw, true, nil
}

// WriteRaw overwrites the key with the given text.
func (r *DocumentRepository) WriteRaw(ctx context.Context, key, value string) error {
	if err := r.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (r *DocumentRepository) Delete(ctx context.Context, key string) error {
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// readJSON decodes the key into dest. It reports false when the key is absent
// or holds the literal null.
func (r *DocumentRepository) readJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok, err := r.ReadRaw(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if raw == "" || raw == "null" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *DocumentRepository) writeJSON(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.WriteRaw(ctx, key, string(payload))
}
