package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/middlewares"
	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/repositories"
	"github.com/yeremiapane/restaurant-dashboard/services"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

type RestaurantController struct {
	Restaurants *repositories.RestaurantRepository
	QR          services.QRGenerator
}

func NewRestaurantController(restaurants *repositories.RestaurantRepository, qr services.QRGenerator) *RestaurantController {
	return &RestaurantController{Restaurants: restaurants, QR: qr}
}

// ListRestaurants returns the restaurants of the logged-in owner.
func (rc *RestaurantController) ListRestaurants(c *gin.Context) {
	restaurants, err := rc.Restaurants.List(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var rest models.Restaurant
	if err := c.ShouldBindJSON(&rest); err != nil {
		utils.RespondAppError(c, utils.BindingError(err))
		return
	}
	rest.ID = ""
	rest.Version = 0
	rest.OwnerID = middlewares.CurrentUserID(c)

	saved, err := rc.Restaurants.Upsert(c.Request.Context(), rest)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", saved)
}

func (rc *RestaurantController) GetRestaurant(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Restaurant details", middlewares.CurrentRestaurant(c))
}

// UpdateRestaurant replaces the editable fields. Sending the version read
// earlier turns a concurrent edit into a 409 instead of a lost update.
func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	current := middlewares.CurrentRestaurant(c)
	var rest models.Restaurant
	if err := c.ShouldBindJSON(&rest); err != nil {
		utils.RespondAppError(c, utils.BindingError(err))
		return
	}
	rest.ID = current.ID
	rest.OwnerID = current.OwnerID

	saved, err := rc.Restaurants.Upsert(c.Request.Context(), rest)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", saved)
}

// DeleteRestaurant also drops the restaurant's menu and orders.
func (rc *RestaurantController) DeleteRestaurant(c *gin.Context) {
	if err := rc.Restaurants.Delete(c.Request.Context(), c.Param("restaurant_id")); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant deleted", nil)
}

// MenuQRCode serves a PNG linking to the public menu.
func (rc *RestaurantController) MenuQRCode(c *gin.Context) {
	png, err := rc.QR.Generate(c.Param("restaurant_id"))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="menu-qr.png"`)
	c.Data(http.StatusOK, "image/png", png)
}
