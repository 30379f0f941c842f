// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/distrohub/internal/app/system/auditlog"
	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"github.com/dalemusser/distrohub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type Handler struct {
	Provider identity.Provider
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(provider identity.Provider, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Provider: provider,
		Audit:    audit,
		Log:      logger,
	}
}

type overviewData struct {
	viewdata.BaseVM
	Overview
	Sales []SalesMonth
}

// ServeOverview renders GET /dashboard.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	data := overviewData{
		BaseVM:   viewdata.NewBaseVM(r, "Dashboard Overview", "/dashboard"),
		Overview: SummarizeOverview(),
		Sales:    Sales(),
	}
	templates.Render(w, r, "dashboard_overview", data)
}

type retailersData struct {
	viewdata.BaseVM
	Query     string
	Status    string
	Retailers []Retailer
}

// ServeRetailers renders GET /dashboard/retailers?q=&status=.
func (h *Handler) ServeRetailers(w http.ResponseWriter, r *http.Request) {
	q := query.Get(r, "q")
	status := query.Get(r, "status")
	switch status {
	case RetailerActive, RetailerInactive:
	default:
		status = "all"
	}

	data := retailersData{
		BaseVM:    viewdata.NewBaseVM(r, "Retailers", "/dashboard"),
		Query:     q,
		Status:    status,
		Retailers: FilterRetailers(q, status),
	}
	templates.Render(w, r, "dashboard_retailers", data)
}

type inventoryData struct {
	viewdata.BaseVM
	Tab        string
	Query      string
	Orders     []Order
	Products   []Product
	LowStock   []Product
	OutOfStock []Product
}

// ServeInventory renders GET /dashboard/inventory?tab=orders|inventory&q=.
func (h *Handler) ServeInventory(w http.ResponseWriter, r *http.Request) {
	tab := query.Get(r, "tab")
	if tab != "inventory" {
		tab = "orders"
	}
	q := query.Get(r, "q")
	low, out := StockAlerts()

	data := inventoryData{
		BaseVM:     viewdata.NewBaseVM(r, "Orders & Inventory", "/dashboard"),
		Tab:        tab,
		Query:      q,
		Orders:     Orders(),
		Products:   SearchInventory(q),
		LowStock:   low,
		OutOfStock: out,
	}
	templates.Render(w, r, "dashboard_inventory", data)
}

// ServeRetailerHome renders GET /retailers-dashboard.
func (h *Handler) ServeRetailerHome(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Retailers Dashboard", "/retailers-dashboard"),
	}
	templates.Render(w, r, "retailers_dashboard", data)
}
