package repositories

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/store"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

type UserRepository struct {
	store store.Store
	locks *partitionLocks
}

// Registration is the input of Register.
type Registration struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Register creates a restaurant owner. Emails are unique ignoring case.
func (r *UserRepository) Register(ctx context.Context, reg Registration) (models.User, error) {
	if len(reg.Password) < 6 {
		return models.User{}, utils.FieldError("password", "must be at least 6 characters")
	}

	unlock := r.locks.lock(store.UsersKey)
	defer unlock()

	users, err := loadCollection[models.User](ctx, r.store, store.UsersKey)
	if err != nil {
		return models.User{}, err
	}

	email := strings.ToLower(strings.TrimSpace(reg.Email))
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return models.User{}, utils.Conflict("email %s is already registered", email)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(reg.Name),
		Email:        email,
		Phone:        reg.Phone,
		PasswordHash: string(hashed),
		Role:         models.RoleRestaurant,
		CreatedAt:    nowFunc(),
	}
	if err := utils.ValidateStruct(user); err != nil {
		return models.User{}, err
	}
	user.ID = mintID("user", func(id string) bool {
		for _, u := range users {
			if u.ID == id {
				return true
			}
		}
		return false
	})

	if err := saveCollection(ctx, r.store, store.UsersKey, append(users, user)); err != nil {
		return models.User{}, err
	}
	utils.InfoLogger.Printf("New user registered: %s (id=%s)", user.Email, user.ID)
	return user, nil
}

// Authenticate checks credentials; any mismatch is reported the same way.
func (r *UserRepository) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := r.GetByEmail(ctx, email)
	if utils.IsKind(err, utils.KindNotFound) {
		return models.User{}, utils.Unauthorized("invalid credentials")
	}
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, utils.Unauthorized("invalid credentials")
	}
	return user, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (models.User, error) {
	users, err := loadCollection[models.User](ctx, r.store, store.UsersKey)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, utils.NotFound("user %s not found", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	users, err := loadCollection[models.User](ctx, r.store, store.UsersKey)
	if err != nil {
		return models.User{}, err
	}
	email = strings.TrimSpace(email)
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, utils.NotFound("user %s not found", email)
}
