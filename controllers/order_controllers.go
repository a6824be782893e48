package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/repositories"
	"github.com/yeremiapane/restaurant-dashboard/services"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

type OrderController struct {
	Orders    *repositories.OrderRepository
	Lifecycle *services.OrderLifecycle
}

func NewOrderController(orders *repositories.OrderRepository, lifecycle *services.OrderLifecycle) *OrderController {
	return &OrderController{Orders: orders, Lifecycle: lifecycle}
}

// GetOrderBoard returns the restaurant's orders split into pending,
// accepted and closed columns.
func (oc *OrderController) GetOrderBoard(c *gin.Context) {
	orders, err := oc.Orders.ListByRestaurant(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order board", models.PartitionOrders(orders))
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Orders.Get(c.Request.Context(), c.Param("restaurant_id"), c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", gin.H{
		"order":        order,
		"nextStatuses": models.NextStatuses(order.Status),
	})
}

// UpdateOrderStatus handles {"status": "..."}.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.BindingError(err))
		return
	}
	oc.respondTransition(c, func() (models.Order, error) {
		return oc.Lifecycle.Transition(c.Request.Context(), c.Param("restaurant_id"), c.Param("order_id"), models.OrderStatus(req.Status))
	})
}

func (oc *OrderController) AcceptOrder(c *gin.Context) {
	oc.respondTransition(c, func() (models.Order, error) {
		return oc.Lifecycle.Accept(c.Request.Context(), c.Param("restaurant_id"), c.Param("order_id"))
	})
}

func (oc *OrderController) DeclineOrder(c *gin.Context) {
	oc.respondTransition(c, func() (models.Order, error) {
		return oc.Lifecycle.Decline(c.Request.Context(), c.Param("restaurant_id"), c.Param("order_id"))
	})
}

func (oc *OrderController) CompleteOrder(c *gin.Context) {
	oc.respondTransition(c, func() (models.Order, error) {
		return oc.Lifecycle.Complete(c.Request.Context(), c.Param("restaurant_id"), c.Param("order_id"))
	})
}

func (oc *OrderController) respondTransition(c *gin.Context, apply func() (models.Order, error)) {
	order, err := apply()
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated to "+string(order.Status), order)
}

// PlaceOrder is the customer-facing endpoint behind the public menu.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req repositories.PlaceOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.BindingError(err))
		return
	}
	order, err := oc.Lifecycle.Place(c.Request.Context(), c.Param("restaurant_id"), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}
