package repositories

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/store"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

type RestaurantRepository struct {
	store store.Store
	locks *partitionLocks
	users *UserRepository
}

// List returns the owner's restaurants in stored order. The scan is linear in
// the total number of restaurants.
func (r *RestaurantRepository) List(ctx context.Context, ownerID string) ([]models.Restaurant, error) {
	all, err := loadCollection[models.Restaurant](ctx, r.store, store.RestaurantsKey)
	if err != nil {
		return nil, err
	}
	owned := make([]models.Restaurant, 0, len(all))
	for _, rest := range all {
		if rest.OwnerID == ownerID {
			owned = append(owned, rest)
		}
	}
	return owned, nil
}

func (r *RestaurantRepository) Get(ctx context.Context, id string) (models.Restaurant, error) {
	all, err := loadCollection[models.Restaurant](ctx, r.store, store.RestaurantsKey)
	if err != nil {
		return models.Restaurant{}, err
	}
	for _, rest := range all {
		if rest.ID == id {
			return rest, nil
		}
	}
	return models.Restaurant{}, utils.NotFound("restaurant %s not found", id)
}

// Upsert appends rest under a fresh id when rest.ID is empty and otherwise
// replaces the stored record in place.
func (r *RestaurantRepository) Upsert(ctx context.Context, rest models.Restaurant) (models.Restaurant, error) {
	if err := utils.ValidateStruct(rest); err != nil {
		return models.Restaurant{}, err
	}
	if _, err := r.users.Get(ctx, rest.OwnerID); err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return models.Restaurant{}, utils.FieldError("ownerId", "does not reference an existing user")
		}
		return models.Restaurant{}, err
	}

	unlock := r.locks.lock(store.RestaurantsKey)
	defer unlock()

	all, err := loadCollection[models.Restaurant](ctx, r.store, store.RestaurantsKey)
	if err != nil {
		return models.Restaurant{}, err
	}

	now := nowFunc()
	if rest.ID == "" {
		rest.ID = mintID("rest", func(id string) bool {
			for _, existing := range all {
				if existing.ID == id {
					return true
				}
			}
			return false
		})
		rest.Version = 1
		rest.CreatedAt = now
		rest.UpdatedAt = now
		all = append(all, rest)
	} else {
		idx := -1
		for i, existing := range all {
			if existing.ID == rest.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return models.Restaurant{}, utils.NotFound("restaurant %s not found", rest.ID)
		}
		stored := all[idx]
		if err := checkVersion("restaurant", rest.ID, rest.Version, stored.Version); err != nil {
			return models.Restaurant{}, err
		}
		rest.CreatedAt = stored.CreatedAt
		rest.UpdatedAt = now
		rest.Version = stored.Version + 1
		all[idx] = rest
	}

	if err := saveCollection(ctx, r.store, store.RestaurantsKey, all); err != nil {
		return models.Restaurant{}, err
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": rest.ID,
		"owner_id":      rest.OwnerID,
		"version":       rest.Version,
	}).Info("restaurant saved")
	return rest, nil
}

// Delete removes the restaurant together with its menu-item and order
// partitions. Partitions go first so a failure never leaves orphans behind a
// deleted restaurant; a retry finishes the job.
func (r *RestaurantRepository) Delete(ctx context.Context, id string) error {
	unlock := r.locks.lock(store.RestaurantsKey)
	defer unlock()

	all, err := loadCollection[models.Restaurant](ctx, r.store, store.RestaurantsKey)
	if err != nil {
		return err
	}
	idx := -1
	for i, rest := range all {
		if rest.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return utils.NotFound("restaurant %s not found", id)
	}

	menuKey, ordersKey := store.MenuItemsKey(id), store.OrdersKey(id)
	unlockMenu := r.locks.lock(menuKey)
	defer unlockMenu()
	unlockOrders := r.locks.lock(ordersKey)
	defer unlockOrders()

	if err := r.store.Delete(ctx, menuKey, ordersKey); err != nil {
		return utils.Storage("delete partitions of "+id, err)
	}

	remaining := make([]models.Restaurant, 0, len(all)-1)
	remaining = append(remaining, all[:idx]...)
	remaining = append(remaining, all[idx+1:]...)
	if err := saveCollection(ctx, r.store, store.RestaurantsKey, remaining); err != nil {
		return err
	}
	utils.InfoLogger.WithField("restaurant_id", id).Info("restaurant deleted with its menu and orders")
	return nil
}
