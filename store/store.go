// Package store is the namespaced key/value layer the repositories persist
// their JSON collections in.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("store: key not found")
	ErrQuotaExceeded = errors.New("store: value exceeds quota")
	ErrSerialization = errors.New("store: serialization failed")
	ErrBackend       = errors.New("store: backend failure")
)

const (
	RestaurantsKey = "restaurants"
	UsersKey       = "users"
)

// DefaultMaxValueBytes mirrors the per-origin localStorage quota browsers enforce.
const DefaultMaxValueBytes = 5 << 20

func MenuItemsKey(restaurantID string) string {
	return "menuItems-" + restaurantID
}

func OrdersKey(restaurantID string) string {
	return "orders-" + restaurantID
}

// SessionKey names one login's document. It replaces the browser layout's
// single "user" key.
func SessionKey(sessionID string) string {
	return "session-" + sessionID
}

// Store is a synchronous key/value map of raw JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// GetJSON decodes the document at key into v.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrSerialization, key, err)
	}
	return nil
}

// SetJSON encodes v and writes it at key.
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrSerialization, key, err)
	}
	return s.Set(ctx, key, raw)
}

func checkQuota(key string, value []byte, max int) error {
	if max > 0 && len(value) > max {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrQuotaExceeded, key, len(value), max)
	}
	return nil
}

func backendErr(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrBackend, op, key, err)
}
