package services

import (
	"context"
	"fmt"
	"io"

	"github.com/jaswdr/faker"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/repositories"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

var cuisines = []string{"Sri Lankan", "Indian", "Chinese", "Thai", "Italian", "Seafood"}

// Colombo, where the demo restaurants are scattered around.
const (
	demoLat = 6.9271
	demoLon = 79.8612
)

type SeedOptions struct {
	OwnerName     string
	OwnerEmail    string
	OwnerPassword string
	Restaurants   int
}

type SeedResult struct {
	Owner       models.User
	Restaurants []models.Restaurant
	MenuItems   int
	Orders      int
}

// Seeder fills an empty store with a demo owner, restaurants, their menu and
// one order in every status.
type Seeder struct {
	Repos    *repositories.Repositories
	Fake     faker.Faker
	Progress io.Writer
}

func NewSeeder(repos *repositories.Repositories, progress io.Writer) *Seeder {
	return &Seeder{Repos: repos, Fake: faker.New(), Progress: progress}
}

func (s *Seeder) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	var result SeedResult
	if opts.Restaurants < 1 {
		opts.Restaurants = 1
	}

	owner, err := s.owner(ctx, opts)
	if err != nil {
		return result, err
	}
	result.Owner = owner

	progress := s.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(opts.Restaurants,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("seeding restaurants"),
		progressbar.OptionShowCount(),
	)
	for i := 0; i < opts.Restaurants; i++ {
		name := "Spice Hut"
		if i > 0 {
			name = s.Fake.Company().Name()
		}
		rest, err := s.Repos.Restaurants.Upsert(ctx, models.Restaurant{
			OwnerID:     owner.ID,
			Name:        name,
			Address:     s.Fake.Address().Address(),
			Phone:       s.Fake.Phone().Number(),
			CuisineType: s.Fake.RandomStringElement(cuisines),
			Description: s.Fake.Lorem().Sentence(10),
			OpenHours:   "10:00 - 22:00",
			Location: models.Location{
				Latitude:  demoLat + s.jitter(),
				Longitude: demoLon + s.jitter(),
			},
		})
		if err != nil {
			return result, err
		}
		result.Restaurants = append(result.Restaurants, rest)

		items, orders, err := s.seedRestaurant(ctx, rest)
		if err != nil {
			return result, err
		}
		result.MenuItems += items
		result.Orders += orders
		bar.Add(1)
	}
	bar.Finish()

	utils.InfoLogger.WithFields(logrus.Fields{
		"owner":       owner.Email,
		"restaurants": len(result.Restaurants),
		"menu_items":  result.MenuItems,
		"orders":      result.Orders,
	}).Info("demo data seeded")
	return result, nil
}

func (s *Seeder) owner(ctx context.Context, opts SeedOptions) (models.User, error) {
	existing, err := s.Repos.Users.GetByEmail(ctx, opts.OwnerEmail)
	if err == nil {
		return existing, nil
	}
	if !utils.IsKind(err, utils.KindNotFound) {
		return models.User{}, err
	}
	name := opts.OwnerName
	if name == "" {
		name = s.Fake.Person().Name()
	}
	return s.Repos.Users.Register(ctx, repositories.Registration{
		Name:     name,
		Email:    opts.OwnerEmail,
		Phone:    s.Fake.Phone().Number(),
		Password: opts.OwnerPassword,
	})
}

// jitter is up to about 3km in either direction.
func (s *Seeder) jitter() float64 {
	return float64(s.Fake.IntBetween(-300, 300)) / 10000
}

type demoOrder struct {
	customer string
	phone    string
	lines    []repositories.OrderLine
	path     []models.OrderStatus
}

func (s *Seeder) seedRestaurant(ctx context.Context, rest models.Restaurant) (int, int, error) {
	biryani, err := s.Repos.MenuItems.Upsert(ctx, models.MenuItem{
		RestaurantID: rest.ID,
		Name:         "Chicken Biryani",
		Description:  "Deliciously spiced basmati rice with tender chicken pieces.",
		Price:        850.00,
		ImageURL:     "https://example.com/images/chicken-biryani.jpg",
		IsAvailable:  true,
	})
	if err != nil {
		return 0, 0, err
	}
	kottu, err := s.Repos.MenuItems.Upsert(ctx, models.MenuItem{
		RestaurantID: rest.ID,
		Name:         "Vegetable Kottu",
		Description:  "Shredded roti mixed with vegetables and spices.",
		Price:        650.00,
		IsAvailable:  true,
	})
	if err != nil {
		return 1, 0, err
	}

	demo := []demoOrder{
		{"John Smith", "0771234567",
			[]repositories.OrderLine{{MenuItemID: biryani.ID, Quantity: 2}, {MenuItemID: kottu.ID, Quantity: 1}},
			nil},
		{"Jane Doe", "0761234567",
			[]repositories.OrderLine{{MenuItemID: biryani.ID, Quantity: 1}},
			[]models.OrderStatus{models.OrderAccepted}},
		{"Bob Johnson", "0751234567",
			[]repositories.OrderLine{{MenuItemID: kottu.ID, Quantity: 3}},
			[]models.OrderStatus{models.OrderAccepted, models.OrderCompleted}},
		{s.Fake.Person().Name(), s.Fake.Phone().Number(),
			[]repositories.OrderLine{{MenuItemID: kottu.ID, Quantity: 1}},
			[]models.OrderStatus{models.OrderDeclined}},
	}
	for i, d := range demo {
		order, err := s.Repos.Orders.Create(ctx, rest.ID, repositories.PlaceOrder{
			CustomerID:    fmt.Sprintf("cust-%d", i+1),
			CustomerName:  d.customer,
			CustomerPhone: d.phone,
			Items:         d.lines,
		})
		if err != nil {
			return 2, i, err
		}
		for _, next := range d.path {
			if _, _, err := s.Repos.Orders.Transition(ctx, rest.ID, order.ID, next); err != nil {
				return 2, i + 1, err
			}
		}
	}
	return 2, len(demo), nil
}
