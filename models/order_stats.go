package models

import (
	"sort"
	"time"

	"github.com/yeremiapane/restaurant-dashboard/utils"
)

// StatusCounts is the number of orders in each lifecycle status.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Accepted  int `json:"accepted"`
	Declined  int `json:"declined"`
	Completed int `json:"completed"`
}

// DashboardStats summarises one restaurant's orders. Revenue only counts
// completed orders.
type DashboardStats struct {
	TotalOrders  int          `json:"totalOrders"`
	TodayOrders  int          `json:"todayOrders"`
	TotalRevenue float64      `json:"totalRevenue"`
	TodayRevenue float64      `json:"todayRevenue"`
	OrderStats   StatusCounts `json:"orderStats"`
}

// MenuItemSales is one row of the top-selling list.
type MenuItemSales struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Revenue    float64 `json:"revenue"`
}

// SalesReport echoes the requested From and To dates as sent (YYYY-MM-DD).
type SalesReport struct {
	From           string          `json:"from,omitempty"`
	To             string          `json:"to,omitempty"`
	TotalSales     float64         `json:"totalSales"`
	TotalOrders    int             `json:"totalOrders"`
	AverageOrder   float64         `json:"averageOrder"`
	TopSellingMenu []MenuItemSales `json:"topSellingMenu"`
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// SummarizeOrders builds the dashboard counters; "today" is the calendar day
// of now in now's location.
func SummarizeOrders(orders []Order, now time.Time) DashboardStats {
	var stats DashboardStats
	var totalCents, todayCents int64
	for _, o := range orders {
		stats.TotalOrders++
		today := sameDay(now, o.CreatedAt)
		if today {
			stats.TodayOrders++
		}
		switch o.Status {
		case OrderPending:
			stats.OrderStats.Pending++
		case OrderAccepted:
			stats.OrderStats.Accepted++
		case OrderDeclined:
			stats.OrderStats.Declined++
		case OrderCompleted:
			stats.OrderStats.Completed++
			cents := utils.ToCents(o.Total)
			totalCents += cents
			if today {
				todayCents += cents
			}
		}
	}
	stats.TotalRevenue = float64(totalCents) / 100
	stats.TodayRevenue = float64(todayCents) / 100
	return stats
}

// BuildSalesReport covers completed orders created in [from, to). A zero
// bound is open. The top-selling list is capped at limit rows when limit > 0.
func BuildSalesReport(orders []Order, from, to time.Time, limit int) SalesReport {
	report := SalesReport{TopSellingMenu: []MenuItemSales{}}
	byItem := map[string]*MenuItemSales{}
	var salesCents int64
	for _, o := range orders {
		if o.Status != OrderCompleted {
			continue
		}
		if !from.IsZero() && o.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !o.CreatedAt.Before(to) {
			continue
		}
		report.TotalOrders++
		salesCents += utils.ToCents(o.Total)
		for _, item := range o.Items {
			row, ok := byItem[item.MenuItemID]
			if !ok {
				row = &MenuItemSales{MenuItemID: item.MenuItemID, Name: item.Name}
				byItem[item.MenuItemID] = row
			}
			row.Quantity += item.Quantity
			row.Revenue = float64(utils.ToCents(row.Revenue)+utils.ToCents(item.Subtotal())) / 100
		}
	}
	report.TotalSales = float64(salesCents) / 100
	if report.TotalOrders > 0 {
		report.AverageOrder = float64(salesCents/int64(report.TotalOrders)) / 100
	}

	for _, row := range byItem {
		report.TopSellingMenu = append(report.TopSellingMenu, *row)
	}
	sort.Slice(report.TopSellingMenu, func(i, j int) bool {
		a, b := report.TopSellingMenu[i], report.TopSellingMenu[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	if limit > 0 && len(report.TopSellingMenu) > limit {
		report.TopSellingMenu = report.TopSellingMenu[:limit]
	}
	return report
}
