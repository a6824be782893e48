// Package repositories implements owner-scoped CRUD over the key/value store.
// Every mutation reads one partition, changes it in memory and writes the
// whole partition back.
package repositories

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lucsky/cuid"

	"github.com/yeremiapane/restaurant-dashboard/store"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

// Repositories bundles the repositories sharing one store and lock table.
type Repositories struct {
	Users       *UserRepository
	Sessions    *SessionRepository
	Restaurants *RestaurantRepository
	MenuItems   *MenuItemRepository
	Orders      *OrderRepository
}

func New(s store.Store) *Repositories {
	locks := newPartitionLocks()
	users := &UserRepository{store: s, locks: locks}
	restaurants := &RestaurantRepository{store: s, locks: locks, users: users}
	menuItems := &MenuItemRepository{store: s, locks: locks, restaurants: restaurants}
	return &Repositories{
		Users:       users,
		Sessions:    &SessionRepository{store: s},
		Restaurants: restaurants,
		MenuItems:   menuItems,
		Orders:      &OrderRepository{store: s, locks: locks, restaurants: restaurants, menuItems: menuItems},
	}
}

var nowFunc = func() time.Time {
	return time.Now().UTC()
}

// partitionLocks serialises read-modify-write cycles per store key.
type partitionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPartitionLocks() *partitionLocks {
	return &partitionLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *partitionLocks) lock(key string) func() {
	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &sync.Mutex{}
		p.locks[key] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// loadCollection reads the array at key; a missing key is an empty partition.
func loadCollection[T any](ctx context.Context, s store.Store, key string) ([]T, error) {
	var items []T
	err := store.GetJSON(ctx, s, key, &items)
	if errors.Is(err, store.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, utils.Storage("read "+key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func saveCollection[T any](ctx context.Context, s store.Store, key string, items []T) error {
	if err := store.SetJSON(ctx, s, key, items); err != nil {
		return utils.Storage("write "+key, err)
	}
	return nil
}

// mintID returns prefix-<cuid>, retrying until taken reports the id unused.
func mintID(prefix string, taken func(string) bool) string {
	for {
		id := prefix + "-" + cuid.New()
		if !taken(id) {
			return id
		}
	}
}

// checkVersion rejects a write whose caller saw an older revision. A zero
// version means the caller did not send one.
func checkVersion(kind, id string, supplied, stored int) error {
	if supplied != 0 && supplied != stored {
		return utils.Conflict("%s %s is at version %d, got %d", kind, id, stored, supplied)
	}
	return nil
}
