package repositories

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/store"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

// MenuItemRepository stores one menu-item collection per restaurant.
type MenuItemRepository struct {
	store       store.Store
	locks       *partitionLocks
	restaurants *RestaurantRepository
}

func (r *MenuItemRepository) List(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	return loadCollection[models.MenuItem](ctx, r.store, store.MenuItemsKey(restaurantID))
}

// ListAvailable returns only the items customers can order right now.
func (r *MenuItemRepository) ListAvailable(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	items, err := r.List(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	available := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if item.IsAvailable {
			available = append(available, item)
		}
	}
	return available, nil
}

func (r *MenuItemRepository) Get(ctx context.Context, restaurantID, id string) (models.MenuItem, error) {
	items, err := r.List(ctx, restaurantID)
	if err != nil {
		return models.MenuItem{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.MenuItem{}, utils.NotFound("menu item %s not found", id)
}

// Upsert creates the item when item.ID is empty, otherwise replaces it.
func (r *MenuItemRepository) Upsert(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	if err := utils.ValidateStruct(item); err != nil {
		return models.MenuItem{}, err
	}

	key := store.MenuItemsKey(item.RestaurantID)
	unlock := r.locks.lock(key)
	defer unlock()

	if _, err := r.restaurants.Get(ctx, item.RestaurantID); err != nil {
		return models.MenuItem{}, err
	}

	items, err := loadCollection[models.MenuItem](ctx, r.store, key)
	if err != nil {
		return models.MenuItem{}, err
	}

	now := nowFunc()
	if item.ID == "" {
		item.ID = mintID("item", func(id string) bool {
			for _, existing := range items {
				if existing.ID == id {
					return true
				}
			}
			return false
		})
		item.Version = 1
		item.CreatedAt = now
		item.UpdatedAt = now
		items = append(items, item)
	} else {
		idx := indexOfMenuItem(items, item.ID)
		if idx < 0 {
			return models.MenuItem{}, utils.NotFound("menu item %s not found", item.ID)
		}
		if err := checkVersion("menu item", item.ID, item.Version, items[idx].Version); err != nil {
			return models.MenuItem{}, err
		}
		item.CreatedAt = items[idx].CreatedAt
		item.UpdatedAt = now
		item.Version = items[idx].Version + 1
		items[idx] = item
	}

	if err := saveCollection(ctx, r.store, key, items); err != nil {
		return models.MenuItem{}, err
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": item.RestaurantID,
		"menu_item_id":  item.ID,
		"version":       item.Version,
	}).Info("menu item saved")
	return item, nil
}

// SetAvailability flips only isAvailable; the partition is still rewritten whole.
func (r *MenuItemRepository) SetAvailability(ctx context.Context, restaurantID, id string, available bool) (models.MenuItem, error) {
	key := store.MenuItemsKey(restaurantID)
	unlock := r.locks.lock(key)
	defer unlock()

	items, err := loadCollection[models.MenuItem](ctx, r.store, key)
	if err != nil {
		return models.MenuItem{}, err
	}
	idx := indexOfMenuItem(items, id)
	if idx < 0 {
		return models.MenuItem{}, utils.NotFound("menu item %s not found", id)
	}
	items[idx].IsAvailable = available
	items[idx].UpdatedAt = nowFunc()
	items[idx].Version++

	if err := saveCollection(ctx, r.store, key, items); err != nil {
		return models.MenuItem{}, err
	}
	return items[idx], nil
}

func (r *MenuItemRepository) Delete(ctx context.Context, restaurantID, id string) error {
	key := store.MenuItemsKey(restaurantID)
	unlock := r.locks.lock(key)
	defer unlock()

	items, err := loadCollection[models.MenuItem](ctx, r.store, key)
	if err != nil {
		return err
	}
	idx := indexOfMenuItem(items, id)
	if idx < 0 {
		return utils.NotFound("menu item %s not found", id)
	}
	items = append(items[:idx], items[idx+1:]...)
	return saveCollection(ctx, r.store, key, items)
}

func indexOfMenuItem(items []models.MenuItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
