package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/repositories"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

const reportDateLayout = "2006-01-02"

type DashboardController struct {
	Orders *repositories.OrderRepository
	Now    func() time.Time
}

func NewDashboardController(orders *repositories.OrderRepository) *DashboardController {
	return &DashboardController{Orders: orders, Now: time.Now}
}

// GetDashboardStats mengambil statistik order untuk satu restoran
func (dc *DashboardController) GetDashboardStats(c *gin.Context) {
	orders, err := dc.Orders.ListByRestaurant(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", models.SummarizeOrders(orders, dc.Now()))
}

// GetSalesReport reads optional ?from=YYYY-MM-DD&to=YYYY-MM-DD (to is
// inclusive) and ?limit for the top-selling list.
func (dc *DashboardController) GetSalesReport(c *gin.Context) {
	fields := map[string]string{}
	from := parseReportDate(c.Query("from"), "from", fields)
	// to is inclusive; the filter uses the following midnight.
	to := parseReportDate(c.Query("to"), "to", fields)
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1)
	}
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields["limit"] = "must be a non-negative number"
		}
		limit = n
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		fields["to"] = "must not be before from"
	}
	if len(fields) > 0 {
		utils.RespondAppError(c, utils.Validation(fields))
		return
	}

	orders, err := dc.Orders.ListByRestaurant(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	report := models.BuildSalesReport(orders, from, to, limit)
	report.From, report.To = c.Query("from"), c.Query("to")
	utils.RespondJSON(c, http.StatusOK, "Sales report", report)
}

func parseReportDate(raw, field string, fields map[string]string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(reportDateLayout, raw, time.Local)
	if err != nil {
		fields[field] = "must be a date like " + reportDateLayout
	}
	return t
}
