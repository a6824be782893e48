package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/store"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

// SessionRepository keeps one document per login under session-{id}.
type SessionRepository struct {
	store store.Store
}

func (r *SessionRepository) Create(ctx context.Context, user models.User) (models.Session, error) {
	now := nowFunc()
	// The session id is the token's jti and must not be guessable.
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		User:      user.Public(),
		CreatedAt: now,
		ExpiresAt: now.Add(utils.TokenTTL),
	}
	if err := store.SetJSON(ctx, r.store, store.SessionKey(session.ID), session); err != nil {
		return models.Session{}, utils.Storage("write session", err)
	}
	return session, nil
}

// Get returns the live session; expired sessions are removed and reported
// as unauthorized.
func (r *SessionRepository) Get(ctx context.Context, id string) (models.Session, error) {
	var session models.Session
	err := store.GetJSON(ctx, r.store, store.SessionKey(id), &session)
	if errors.Is(err, store.ErrNotFound) {
		return models.Session{}, utils.Unauthorized("session ended")
	}
	if err != nil {
		return models.Session{}, utils.Storage("read session", err)
	}
	if session.Expired(nowFunc()) {
		if err := r.Delete(ctx, id); err != nil {
			utils.ErrorLogger.WithError(err).WithField("session_id", id).Error("Failed to remove expired session")
		}
		return models.Session{}, utils.Unauthorized("session expired")
	}
	return session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, store.SessionKey(id)); err != nil {
		return utils.Storage("delete session", err)
	}
	return nil
}
