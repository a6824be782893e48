package middlewares

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

// RoleCheck lets the request through only for the given roles.
func RoleCheck(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.RespondAppError(c, utils.Unauthorized(role+" access is not allowed here"))
	}
}

type RestaurantLookup interface {
	Get(ctx context.Context, id string) (models.Restaurant, error)
}

// RestaurantOwner loads :restaurant_id and stops the request unless the
// session user owns it. Someone else's restaurant answers 404, the same as
// a missing one, so ids cannot be enumerated.
func RestaurantOwner(restaurants RestaurantLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("restaurant_id")
		rest, err := restaurants.Get(c.Request.Context(), id)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		if rest.OwnerID != CurrentUserID(c) {
			utils.RespondAppError(c, utils.NotFound("restaurant %s not found", id))
			return
		}
		c.Set(ctxRestaurant, rest)
		c.Next()
	}
}

// CurrentRestaurant returns the restaurant RestaurantOwner loaded.
func CurrentRestaurant(c *gin.Context) models.Restaurant {
	v, _ := c.Get(ctxRestaurant)
	rest, _ := v.(models.Restaurant)
	return rest
}
