package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/store"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

func setupStore(t *testing.T) *store.GormStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	s := store.NewGormStore(db, 0)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func setupRepos(t *testing.T) (*Repositories, *store.GormStore) {
	s := setupStore(t)
	return New(s), s
}

func registerOwner(t *testing.T, repos *Repositories, email string) models.User {
	t.Helper()
	u, err := repos.Users.Register(context.Background(), Registration{
		Name: "Owner " + email, Email: email, Password: "secret123",
	})
	require.NoError(t, err)
	return u
}

func createRestaurant(t *testing.T, repos *Repositories, ownerID, name string) models.Restaurant {
	t.Helper()
	r, err := repos.Restaurants.Upsert(context.Background(), models.Restaurant{
		OwnerID: ownerID,
		Name:    name,
		Address: "12 Galle Road",
		Location: models.Location{
			Longitude: 79.8612,
			Latitude:  6.9271,
		},
	})
	require.NoError(t, err)
	return r
}

func addMenuItem(t *testing.T, repos *Repositories, restaurantID, name string, price float64) models.MenuItem {
	t.Helper()
	item, err := repos.MenuItems.Upsert(context.Background(), models.MenuItem{
		RestaurantID: restaurantID,
		Name:         name,
		Price:        price,
		IsAvailable:  true,
	})
	require.NoError(t, err)
	return item
}

func TestUserRegisterAndAuthenticate(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()

	u := registerOwner(t, repos, "Owner@Example.com")
	assert.True(t, strings.HasPrefix(u.ID, "user-"))
	assert.Equal(t, "owner@example.com", u.Email)
	assert.Equal(t, models.RoleRestaurant, u.Role)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	_, err := repos.Users.Register(ctx, Registration{Name: "Dup", Email: "OWNER@example.com", Password: "secret123"})
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	_, err = repos.Users.Register(ctx, Registration{Name: "Bad", Email: "not-an-email", Password: "secret123"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	got, err := repos.Users.Authenticate(ctx, "owner@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repos.Users.Authenticate(ctx, "owner@example.com", "wrong")
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
	_, err = repos.Users.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
}

func TestSessionLifecycle(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()
	u := registerOwner(t, repos, "s@example.com")

	session, err := repos.Sessions.Create(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, u.ID, session.UserID)
	_, err = uuid.Parse(session.ID)
	assert.NoError(t, err)

	got, err := repos.Sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.User.Email)

	require.NoError(t, repos.Sessions.Delete(ctx, session.ID))
	_, err = repos.Sessions.Get(ctx, session.ID)
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
}

// failingDeletes refuses every delete so cleanup errors surface.
type failingDeletes struct {
	store.Store
}

func (failingDeletes) Delete(context.Context, ...string) error {
	return fmt.Errorf("%w: disk full", store.ErrBackend)
}

func expireSessions(t *testing.T) {
	t.Helper()
	orig := nowFunc
	nowFunc = func() time.Time { return orig().Add(utils.TokenTTL + time.Minute) }
	t.Cleanup(func() { nowFunc = orig })
}

func TestExpiredSessionIsRemoved(t *testing.T) {
	repos, s := setupRepos(t)
	ctx := context.Background()
	session, err := repos.Sessions.Create(ctx, registerOwner(t, repos, "x@example.com"))
	require.NoError(t, err)

	expireSessions(t)
	_, err = repos.Sessions.Get(ctx, session.ID)
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))

	_, err = s.Get(ctx, store.SessionKey(session.ID))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExpiredSessionCleanupFailureIsLogged(t *testing.T) {
	s := setupStore(t)
	repos := New(failingDeletes{s})
	ctx := context.Background()
	session, err := repos.Sessions.Create(ctx, registerOwner(t, repos, "y@example.com"))
	require.NoError(t, err)

	hook := logtest.NewLocal(utils.ErrorLogger)
	expireSessions(t)
	_, err = repos.Sessions.Get(ctx, session.ID)
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized), "the caller still sees an expired session")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, session.ID, entry.Data["session_id"])
	assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), store.ErrBackend)
}

func TestRestaurantUpsertMintsUniqueIDs(t *testing.T) {
	repos, _ := setupRepos(t)
	owner := registerOwner(t, repos, "u1@example.com")

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		r := createRestaurant(t, repos, owner.ID, fmt.Sprintf("Restaurant %d", i))
		assert.True(t, strings.HasPrefix(r.ID, "rest-"))
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestRestaurantListFiltersByOwnerInOrder(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()
	a := registerOwner(t, repos, "a@example.com")
	b := registerOwner(t, repos, "b@example.com")

	a1 := createRestaurant(t, repos, a.ID, "A1")
	b1 := createRestaurant(t, repos, b.ID, "B1")
	a2 := createRestaurant(t, repos, a.ID, "A2")
	b2 := createRestaurant(t, repos, b.ID, "B2")
	a3 := createRestaurant(t, repos, a.ID, "A3")

	listA, err := repos.Restaurants.List(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID, a2.ID, a3.ID}, restaurantIDs(listA))

	listB, err := repos.Restaurants.List(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b1.ID, b2.ID}, restaurantIDs(listB))

	none, err := repos.Restaurants.List(ctx, "user-nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func restaurantIDs(rs []models.Restaurant) []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestRestaurantListReadsBrowserUserID(t *testing.T) {
	repos, s := setupRepos(t)
	ctx := context.Background()
	owner := registerOwner(t, repos, "legacy@example.com")

	legacy := `[{"id":"rest-1714000000000","userId":"` + owner.ID + `","name":"Spice Hut",` +
		`"address":"12 Galle Road","location":{"longitude":79.8612,"latitude":6.9271},` +
		`"phone":"0112345678","cuisineType":"Sri Lankan","description":"","openHours":"10-22","imageReference":""}]`
	require.NoError(t, s.Set(ctx, store.RestaurantsKey, []byte(legacy)))

	list, err := repos.Restaurants.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, owner.ID, list[0].OwnerID)

	list[0].Name = "Spice Hut Colombo"
	_, err = repos.Restaurants.Upsert(ctx, list[0])
	require.NoError(t, err)

	raw, err := s.Get(ctx, store.RestaurantsKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"ownerId":"`+owner.ID+`"`)
	assert.NotContains(t, string(raw), `"userId"`)
}

func TestRestaurantUpsertUpdatesInPlace(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()
	owner := registerOwner(t, repos, "u@example.com")
	first := createRestaurant(t, repos, owner.ID, "First")
	second := createRestaurant(t, repos, owner.ID, "Second")

	first.Name = "First, renamed"
	updated, err := repos.Restaurants.Upsert(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)

	list, err := repos.Restaurants.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, restaurantIDs(list))
	assert.Equal(t, "First, renamed", list[0].Name)

	// a stale version is refused
	first.Name = "Lost update"
	_, err = repos.Restaurants.Upsert(ctx, first)
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	_, err = repos.Restaurants.Upsert(ctx, models.Restaurant{ID: "rest-missing", OwnerID: owner.ID, Name: "x"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestRestaurantUpsertValidation(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()
	owner := registerOwner(t, repos, "u@example.com")

	_, err := repos.Restaurants.Upsert(ctx, models.Restaurant{OwnerID: "user-ghost", Name: "Ghost"})
	require.Error(t, err)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "ownerId")

	_, err = repos.Restaurants.Upsert(ctx, models.Restaurant{
		OwnerID:  owner.ID,
		Location: models.Location{Longitude: 200, Latitude: -95},
	})
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Fields, "name")
	assert.Contains(t, appErr.Fields, "location.longitude")
	assert.Contains(t, appErr.Fields, "location.latitude")
}

func TestRestaurantDeleteRemovesPartitions(t *testing.T) {
	repos, s := setupRepos(t)
	ctx := context.Background()
	owner := registerOwner(t, repos, "u@example.com")
	keep := createRestaurant(t, repos, owner.ID, "Keep")
	gone := createRestaurant(t, repos, owner.ID, "Gone")

	for _, r := range []models.Restaurant{keep, gone} {
		item := addMenuItem(t, repos, r.ID, "Biryani", 850)
		_, err := repos.Orders.Create(ctx, r.ID, PlaceOrder{
			CustomerID: "cust-1", CustomerName: "John", CustomerPhone: "0771234567",
			Items: []OrderLine{{MenuItemID: item.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	require.NoError(t, repos.Restaurants.Delete(ctx, gone.ID))

	_, err := repos.Restaurants.Get(ctx, gone.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	items, err := repos.MenuItems.List(ctx, gone.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	orders, err := repos.Orders.ListByRestaurant(ctx, gone.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	_, err = s.Get(ctx, store.MenuItemsKey(gone.ID))
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Get(ctx, store.OrdersKey(gone.ID))
	assert.ErrorIs(t, err, store.ErrNotFound)

	// the other restaurant is untouched
	items, err = repos.MenuItems.List(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	orders, err = repos.Orders.ListByRestaurant(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	err = repos.Restaurants.Delete(ctx, gone.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestMenuItemRoundTrip(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()
	owner := registerOwner(t, repos, "u@example.com")
	rest := createRestaurant(t, repos, owner.ID, "Spice Hut")

	input := models.MenuItem{
		RestaurantID: rest.ID,
		Name:         "Vegetable Kottu",
		Description:  "Shredded roti mixed with vegetables and spices.",
		Price:        650,
		ImageURL:     "https://example.com/images/kottu.jpg",
		IsAvailable:  true,
	}
	saved, err := repos.MenuItems.Upsert(ctx, input)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(saved.ID, "item-"))

	got, err := repos.MenuItems.Get(ctx, rest.ID, saved.ID)
	require.NoError(t, err)

	// everything but the repository-managed fields survives unchanged
	input.ID = saved.ID
	got.Version, got.CreatedAt, got.UpdatedAt = 0, input.CreatedAt, input.UpdatedAt
	assert.Equal(t, input, got)
}

func TestMenuItemRules(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()
	owner := registerOwner(t, repos, "u@example.com")
	rest := createRestaurant(t, repos, owner.ID, "Spice Hut")

	_, err := repos.MenuItems.Upsert(ctx, models.MenuItem{RestaurantID: rest.ID, Name: "Free lunch", Price: -1})
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "price")

	_, err = repos.MenuItems.Upsert(ctx, models.MenuItem{RestaurantID: "rest-ghost", Name: "Orphan", Price: 1})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	item := addMenuItem(t, repos, rest.ID, "Biryani", 850)
	addMenuItem(t, repos, rest.ID, "Kottu", 650)

	toggled, err := repos.MenuItems.SetAvailability(ctx, rest.ID, item.ID, false)
	require.NoError(t, err)
	assert.False(t, toggled.IsAvailable)
	assert.Equal(t, "Biryani", toggled.Name)
	assert.Equal(t, 2, toggled.Version)

	available, err := repos.MenuItems.ListAvailable(ctx, rest.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Kottu", available[0].Name)

	require.NoError(t, repos.MenuItems.Delete(ctx, rest.ID, item.ID))
	_, err = repos.MenuItems.Get(ctx, rest.ID, item.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	assert.True(t, utils.IsKind(repos.MenuItems.Delete(ctx, rest.ID, item.ID), utils.KindNotFound))
}

func TestOrderCreateCapturesMenu(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()
	owner := registerOwner(t, repos, "u@example.com")
	rest := createRestaurant(t, repos, owner.ID, "Spice Hut")
	biryani := addMenuItem(t, repos, rest.ID, "Chicken Biryani", 850)
	kottu := addMenuItem(t, repos, rest.ID, "Vegetable Kottu", 650)

	order, err := repos.Orders.Create(ctx, rest.ID, PlaceOrder{
		CustomerID: "cust-1", CustomerName: "John Smith", CustomerPhone: "0771234567",
		Items: []OrderLine{{MenuItemID: biryani.ID, Quantity: 2}, {MenuItemID: kottu.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2350.0, order.Total)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, "Chicken Biryani", order.Items[0].Name)

	// later price changes do not touch the captured price
	biryani.Price = 900
	_, err = repos.MenuItems.Upsert(ctx, biryani)
	require.NoError(t, err)
	stored, err := repos.Orders.Get(ctx, rest.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 850.0, stored.Items[0].Price)
	assert.True(t, stored.TotalMatches())
}

func TestOrderCreateRejectsBadInput(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()
	owner := registerOwner(t, repos, "u@example.com")
	rest := createRestaurant(t, repos, owner.ID, "Spice Hut")
	item := addMenuItem(t, repos, rest.ID, "Biryani", 850)
	off := addMenuItem(t, repos, rest.ID, "Seasonal", 500)
	_, err := repos.MenuItems.SetAvailability(ctx, rest.ID, off.ID, false)
	require.NoError(t, err)

	base := PlaceOrder{CustomerID: "c", CustomerName: "n", CustomerPhone: "p"}

	tests := []struct {
		name  string
		lines []OrderLine
		total *float64
		field string
	}{
		{"unknown item", []OrderLine{{MenuItemID: "item-x", Quantity: 1}}, nil, "items[0].menuItemId"},
		{"unavailable item", []OrderLine{{MenuItemID: off.ID, Quantity: 1}}, nil, "items[0].menuItemId"},
		{"zero quantity", []OrderLine{{MenuItemID: item.ID, Quantity: 0}}, nil, "items[0].quantity"},
		{"huge quantity", []OrderLine{{MenuItemID: item.ID, Quantity: 1 << 50}}, nil, "items[0].quantity"},
		{"second line over the cap", []OrderLine{{MenuItemID: item.ID, Quantity: 1}, {MenuItemID: item.ID, Quantity: models.MaxLineQuantity + 1}}, nil, "items[1].quantity"},
		{"wrong total", []OrderLine{{MenuItemID: item.ID, Quantity: 2}}, ptr(1000.0), "total"},
		{"no items", nil, nil, "items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.Items = tt.lines
			req.Total = tt.total
			_, err := repos.Orders.Create(ctx, rest.ID, req)
			var appErr *utils.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, utils.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Fields, tt.field)
			assert.Len(t, appErr.Fields, 1, "%v", appErr.Fields)
		})
	}

	orders, err := repos.Orders.ListByRestaurant(ctx, rest.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func ptr(f float64) *float64 { return &f }

func TestOrderInsertEnforcesTotal(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()
	owner := registerOwner(t, repos, "u@example.com")
	rest := createRestaurant(t, repos, owner.ID, "Spice Hut")

	order := models.Order{
		RestaurantID: rest.ID, CustomerID: "c", CustomerName: "n", CustomerPhone: "p",
		Items: []models.OrderItem{{MenuItemID: "item-1", Name: "Biryani", Price: 850, Quantity: 2}},
		Total: 1600,
	}
	_, err := repos.Orders.Insert(ctx, order)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	order.Total = 1700
	saved, err := repos.Orders.Insert(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, saved.Status)

	order.ID = saved.ID
	_, err = repos.Orders.Insert(ctx, order)
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	huge := order
	huge.ID = ""
	huge.Items = []models.OrderItem{{MenuItemID: "item-1", Name: "Biryani", Price: 850, Quantity: 1 << 50}}
	huge.Total = 0
	_, err = repos.Orders.Insert(ctx, huge)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "must be at most 10000", appErr.Fields["items[0].quantity"])
}

func TestOrderTransitions(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()
	owner := registerOwner(t, repos, "u@example.com")
	rest := createRestaurant(t, repos, owner.ID, "Spice Hut")
	item := addMenuItem(t, repos, rest.ID, "Biryani", 850)

	newOrder := func() models.Order {
		o, err := repos.Orders.Create(ctx, rest.ID, PlaceOrder{
			CustomerID: "c", CustomerName: "n", CustomerPhone: "p",
			Items: []OrderLine{{MenuItemID: item.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		return o
	}

	t.Run("pending to completed is illegal", func(t *testing.T) {
		o := newOrder()
		_, _, err := repos.Orders.Transition(ctx, rest.ID, o.ID, models.OrderCompleted)
		assert.True(t, utils.IsKind(err, utils.KindIllegalTransition))
		got, err := repos.Orders.Get(ctx, rest.ID, o.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderPending, got.Status)
	})

	t.Run("accept then complete", func(t *testing.T) {
		o := newOrder()
		before, after, err := repos.Orders.Transition(ctx, rest.ID, o.ID, models.OrderAccepted)
		require.NoError(t, err)
		assert.Equal(t, models.OrderPending, before.Status)
		assert.Equal(t, models.OrderAccepted, after.Status)
		_, after, err = repos.Orders.Transition(ctx, rest.ID, o.ID, models.OrderCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.OrderCompleted, after.Status)
		assert.Equal(t, 3, after.Version)

		_, _, err = repos.Orders.Transition(ctx, rest.ID, o.ID, models.OrderAccepted)
		assert.True(t, utils.IsKind(err, utils.KindIllegalTransition))
	})

	t.Run("declined is terminal", func(t *testing.T) {
		o := newOrder()
		_, _, err := repos.Orders.Transition(ctx, rest.ID, o.ID, models.OrderDeclined)
		require.NoError(t, err)
		for _, next := range []models.OrderStatus{models.OrderPending, models.OrderAccepted, models.OrderCompleted} {
			_, _, err = repos.Orders.Transition(ctx, rest.ID, o.ID, next)
			assert.True(t, utils.IsKind(err, utils.KindIllegalTransition), string(next))
		}
	})

	t.Run("unknown order and status", func(t *testing.T) {
		_, _, err := repos.Orders.Transition(ctx, rest.ID, "order-ghost", models.OrderAccepted)
		assert.True(t, utils.IsKind(err, utils.KindNotFound))
		o := newOrder()
		_, _, err = repos.Orders.Transition(ctx, rest.ID, o.ID, models.OrderStatus("cooking"))
		assert.True(t, utils.IsKind(err, utils.KindValidation))
	})
}

func TestConcurrentTransitionsOnlyOneWins(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()
	owner := registerOwner(t, repos, "u@example.com")
	rest := createRestaurant(t, repos, owner.ID, "Spice Hut")
	item := addMenuItem(t, repos, rest.ID, "Biryani", 850)
	o, err := repos.Orders.Create(ctx, rest.ID, PlaceOrder{
		CustomerID: "c", CustomerName: "n", CustomerPhone: "p",
		Items: []OrderLine{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, next := range []models.OrderStatus{models.OrderAccepted, models.OrderDeclined} {
		wg.Add(1)
		go func(next models.OrderStatus) {
			defer wg.Done()
			_, _, err := repos.Orders.Transition(ctx, rest.ID, o.ID, next)
			results <- err
		}(next)
	}
	wg.Wait()
	close(results)

	var ok, illegal int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case utils.IsKind(err, utils.KindIllegalTransition):
			illegal++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, illegal)
}

func TestStorageFailureSurfacesAsKind(t *testing.T) {
	repos, s := setupRepos(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, store.RestaurantsKey, []byte(`{broken`)))

	_, err := repos.Restaurants.List(ctx, "user-1")
	assert.True(t, utils.IsKind(err, utils.KindStorage))
	assert.ErrorIs(t, err, store.ErrSerialization)
}

func TestQuotaExceededSurfacesAsStorageFailure(t *testing.T) {
	s := setupStore(t)
	s.MaxValueBytes = 700
	repos := New(s)
	ctx := context.Background()
	owner := registerOwner(t, repos, "u@example.com")
	rest := createRestaurant(t, repos, owner.ID, "Spice Hut")

	var err error
	for i := 0; i < 10 && err == nil; i++ {
		_, err = repos.MenuItems.Upsert(ctx, models.MenuItem{RestaurantID: rest.ID, Name: fmt.Sprintf("Dish %d", i), Price: 100})
	}
	assert.True(t, utils.IsKind(err, utils.KindStorage))
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)
}

// The walkthrough an owner does on day one, checked against the raw
// persisted layout.
func TestSpiceHutScenario(t *testing.T) {
	repos, s := setupRepos(t)
	ctx := context.Background()
	u1 := registerOwner(t, repos, "u1@example.com")

	rest, err := repos.Restaurants.Upsert(ctx, models.Restaurant{Name: "Spice Hut", OwnerID: u1.ID})
	require.NoError(t, err)

	biryani, err := repos.MenuItems.Upsert(ctx, models.MenuItem{
		RestaurantID: rest.ID, Name: "Biryani", Price: 850.00, IsAvailable: true,
	})
	require.NoError(t, err)

	order, err := repos.Orders.Create(ctx, rest.ID, PlaceOrder{
		CustomerID: "cust-1", CustomerName: "John Smith", CustomerPhone: "0771234567",
		Items: []OrderLine{{MenuItemID: biryani.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1700.00, order.Total)

	_, accepted, err := repos.Orders.Transition(ctx, rest.ID, order.ID, models.OrderAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, accepted.Status)

	raw, err := s.Get(ctx, "orders-"+rest.ID)
	require.NoError(t, err)
	var persisted []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, order.ID, persisted[0]["id"])
	assert.Equal(t, "accepted", persisted[0]["status"])
	assert.Equal(t, 1700.0, persisted[0]["total"])
}
