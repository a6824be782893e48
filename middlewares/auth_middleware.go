package middlewares

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

const (
	ctxSession    = "session"
	ctxUserID     = "userID"
	ctxRole       = "role"
	ctxRestaurant = "restaurant"
)

// SessionLookup resolves the session a token was issued for.
type SessionLookup interface {
	Get(ctx context.Context, id string) (models.Session, error)
}

// AuthMiddleware accepts "Authorization: Bearer <jwt>". Browsers cannot set
// headers on websocket upgrades, so a token query parameter is accepted too.
// The token is only valid while its session exists.
func AuthMiddleware(sessions SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondAppError(c, utils.Unauthorized("authorization header must be \"Bearer <token>\""))
				return
			}
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			utils.RespondAppError(c, utils.Unauthorized("authorization header missing"))
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.RespondAppError(c, utils.Unauthorized("invalid or expired token"))
			return
		}

		session, err := sessions.Get(c.Request.Context(), claims.ID)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		if session.UserID != claims.UserID {
			utils.RespondAppError(c, utils.Unauthorized("token does not match its session"))
			return
		}

		c.Set(ctxSession, session)
		c.Set(ctxUserID, session.UserID)
		c.Set(ctxRole, session.User.Role)
		c.Next()
	}
}

// CurrentSession returns the session AuthMiddleware stored on c.
func CurrentSession(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}

func CurrentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
