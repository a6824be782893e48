package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/repositories"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

// MenuBroadcaster tells open dashboards that a menu item changed or went away.
type MenuBroadcaster interface {
	BroadcastMenuUpdate(item models.MenuItem)
	BroadcastMenuDelete(restaurantID, itemID string)
}

type MenuItemController struct {
	MenuItems   *repositories.MenuItemRepository
	Restaurants *repositories.RestaurantRepository
	Feed        MenuBroadcaster
}

func NewMenuItemController(items *repositories.MenuItemRepository, restaurants *repositories.RestaurantRepository, feed MenuBroadcaster) *MenuItemController {
	return &MenuItemController{MenuItems: items, Restaurants: restaurants, Feed: feed}
}

func (mc *MenuItemController) ListMenuItems(c *gin.Context) {
	items, err := mc.MenuItems.List(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

func (mc *MenuItemController) GetMenuItem(c *gin.Context) {
	item, err := mc.MenuItems.Get(c.Request.Context(), c.Param("restaurant_id"), c.Param("item_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item details", item)
}

func (mc *MenuItemController) CreateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		utils.RespondAppError(c, utils.BindingError(err))
		return
	}
	item.ID = ""
	item.Version = 0
	item.RestaurantID = c.Param("restaurant_id")

	saved, err := mc.MenuItems.Upsert(c.Request.Context(), item)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	mc.broadcast(saved)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", saved)
}

func (mc *MenuItemController) UpdateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		utils.RespondAppError(c, utils.BindingError(err))
		return
	}
	item.ID = c.Param("item_id")
	item.RestaurantID = c.Param("restaurant_id")

	saved, err := mc.MenuItems.Upsert(c.Request.Context(), item)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	mc.broadcast(saved)
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", saved)
}

// SetAvailability handles {"isAvailable": bool}.
func (mc *MenuItemController) SetAvailability(c *gin.Context) {
	var req struct {
		IsAvailable *bool `json:"isAvailable" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.BindingError(err))
		return
	}

	item, err := mc.MenuItems.SetAvailability(c.Request.Context(), c.Param("restaurant_id"), c.Param("item_id"), *req.IsAvailable)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	mc.broadcast(item)
	utils.RespondJSON(c, http.StatusOK, "Menu item availability updated", item)
}

func (mc *MenuItemController) DeleteMenuItem(c *gin.Context) {
	restaurantID, itemID := c.Param("restaurant_id"), c.Param("item_id")
	if err := mc.MenuItems.Delete(c.Request.Context(), restaurantID, itemID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if mc.Feed != nil {
		mc.Feed.BroadcastMenuDelete(restaurantID, itemID)
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", nil)
}

// PublicMenu is what customers see after scanning the table QR code.
func (mc *MenuItemController) PublicMenu(c *gin.Context) {
	ctx := c.Request.Context()
	rest, err := mc.Restaurants.Get(ctx, c.Param("restaurant_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	items, err := mc.MenuItems.ListAvailable(ctx, rest.ID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu", gin.H{
		"restaurant": gin.H{
			"id":             rest.ID,
			"name":           rest.Name,
			"address":        rest.Address,
			"phone":          rest.Phone,
			"cuisineType":    rest.CuisineType,
			"openHours":      rest.OpenHours,
			"imageReference": rest.ImageReference,
		},
		"items": items,
	})
}

func (mc *MenuItemController) broadcast(item models.MenuItem) {
	if mc.Feed != nil {
		mc.Feed.BroadcastMenuUpdate(item)
	}
}
