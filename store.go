package dict

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/minio/blake2b-simd"
)

// Persist is the interface for loading and storing serialized
// snapshots.  The given string identity corresponds to the content,
// which is immutable (never modified).
type Persist interface {
	// Store makes the given bytes accessible by the given name.
	Store(ctx context.Context, name string, data []byte) error
	// Load retrieves the previously-stored bytes by the given name.
	Load(ctx context.Context, name string) ([]byte, error)
}

// SnapshotConfig controls where snapshots are persisted and cached.
type SnapshotConfig struct {
	// Store persists and loads serialized snapshots.
	Store Persist

	// Cache, if non-nil, caches snapshot bytes by name and is used
	// to avoid re-storing snapshots.  One cache can be shared by any
	// number of trees, but should be invalidated when Store changes.
	Cache SnapshotCache
}

// SaveSnapshot serializes the tree and persists it under a
// content-derived name, returning that name.  Identical trees store
// to the identical name, so repeated saves of unchanged state are
// deduplicated by the cache and by content-addressed stores.
func (d *Dictionary) SaveSnapshot(ctx context.Context, config *SnapshotConfig) (string, error) {
	if config == nil || config.Store == nil {
		return "", fmt.Errorf("no persistence mechanism set; set SnapshotConfig.Store")
	}
	data, err := d.Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize: %w", err)
	}
	hashBytes := blake2b.Sum256(data)
	name := base64.RawURLEncoding.EncodeToString(hashBytes[:])
	if config.Cache != nil && config.Cache.Contains(name) {
		return name, nil
	}
	if err := config.Store.Store(ctx, name, data); err != nil {
		return "", fmt.Errorf("persist store: %w", err)
	}
	if config.Cache != nil {
		config.Cache.Add(name, data)
	}
	return name, nil
}

// LoadSnapshot loads the named snapshot and decodes it into a fresh
// dictionary, with leaf types inferred from the wire tags.
func LoadSnapshot(ctx context.Context, config *SnapshotConfig, name string) (*Dictionary, error) {
	if config == nil || config.Store == nil {
		return nil, fmt.Errorf("no persistence mechanism set; set SnapshotConfig.Store")
	}
	var data []byte
	if config.Cache != nil {
		if cached, ok := config.Cache.Get(name); ok {
			data = cached.([]byte)
		}
	}
	if data == nil {
		loaded, err := config.Store.Load(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("persist load %s: %w", name, err)
		}
		data = loaded
		if config.Cache != nil {
			config.Cache.Add(name, data)
		}
	}
	d := New()
	if err := d.UpdateBytes(data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return d, nil
}
