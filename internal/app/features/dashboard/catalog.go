// internal/app/features/dashboard/catalog.go
package dashboard

import (
	"sort"
	"strings"
	"time"
)

// The dashboards render a fixed sample catalog; there is no order,
// inventory or retailer store behind them.

// Retailer statuses.
const (
	RetailerActive   = "active"
	RetailerInactive = "inactive"
)

// Stock statuses, derived from Stock and MinStock.
const (
	StockIn  = "in-stock"
	StockLow = "low-stock"
	StockOut = "out-of-stock"
)

// Order statuses.
const (
	OrderPending  = "pending"
	OrderApproved = "approved"
	OrderShipped  = "shipped"
)

type Retailer struct {
	ID       int
	Name     string
	Location string
	Contact  string
	Phone    string
	Status   string
	Revenue  int64 // whole dollars
}

func (r Retailer) Active() bool { return r.Status == RetailerActive }

type Product struct {
	ID       int
	Name     string
	SKU      string
	Category string
	Stock    int
	MinStock int
	Price    float64
}

// Status reports the stock level relative to MinStock.
func (p Product) Status() string {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock <= p.MinStock:
		return StockLow
	default:
		return StockIn
	}
}

type Order struct {
	ID       string
	Retailer string
	Date     time.Time
	Items    int
	Total    float64
	Status   string
}

type SalesMonth struct {
	Month   string
	Revenue int64
	Orders  int
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var retailers = []Retailer{
	{ID: 1, Name: "Acme Retail Store", Location: "New York, NY", Contact: "john@acmeretail.com", Phone: "+1 (555) 123-4567", Status: RetailerActive, Revenue: 45230},
	{ID: 2, Name: "Best Buy Corner", Location: "Los Angeles, CA", Contact: "sarah@bestbuycorner.com", Phone: "+1 (555) 234-5678", Status: RetailerActive, Revenue: 32100},
	{ID: 3, Name: "Quick Shop", Location: "Chicago, IL", Contact: "mike@quickshop.com", Phone: "+1 (555) 345-6789", Status: RetailerInactive, Revenue: 18900},
	{ID: 4, Name: "Super Mart", Location: "Houston, TX", Contact: "lisa@supermart.com", Phone: "+1 (555) 456-7890", Status: RetailerActive, Revenue: 67800},
}

var inventory = []Product{
	{ID: 1, Name: "SmartX Wireless Earbuds", SKU: "SKU-001", Category: "Electronics", Stock: 45, MinStock: 20, Price: 29.99},
	{ID: 2, Name: "VoltMax Portable Power Bank", SKU: "SKU-002", Category: "Accessories", Stock: 12, MinStock: 15, Price: 15.99},
	{ID: 3, Name: "LED Monitor", SKU: "SKU-003", Category: "Electronics", Stock: 0, MinStock: 10, Price: 49.99},
	{ID: 4, Name: "Smart Wi-Fi Plug", SKU: "SKU-004", Category: "Home & Garden", Stock: 78, MinStock: 25, Price: 34.99},
}

var orders = []Order{
	{ID: "ORD-001", Retailer: "Acme Retail Store", Date: day(2024, time.October, 10), Items: 15, Total: 1250.00, Status: OrderPending},
	{ID: "ORD-002", Retailer: "Best Buy Corner", Date: day(2024, time.October, 9), Items: 8, Total: 680.00, Status: OrderApproved},
	{ID: "ORD-003", Retailer: "Quick Shop", Date: day(2024, time.October, 8), Items: 22, Total: 1890.00, Status: OrderShipped},
	{ID: "ORD-004", Retailer: "Super Mart", Date: day(2024, time.October, 7), Items: 12, Total: 950.00, Status: OrderPending},
}

var sales = []SalesMonth{
	{Month: "Jan", Revenue: 4000, Orders: 24},
	{Month: "Feb", Revenue: 3000, Orders: 13},
	{Month: "Mar", Revenue: 5000, Orders: 18},
	{Month: "Apr", Revenue: 2780, Orders: 39},
	{Month: "May", Revenue: 1890, Orders: 28},
	{Month: "Jun", Revenue: 2390, Orders: 38},
}

// Callers get copies so the sample data cannot be changed through them.

func Retailers() []Retailer { return append([]Retailer(nil), retailers...) }
func Inventory() []Product  { return append([]Product(nil), inventory...) }
func Orders() []Order       { return append([]Order(nil), orders...) }
func Sales() []SalesMonth   { return append([]SalesMonth(nil), sales...) }

// FilterRetailers matches q against name and location (case-insensitive)
// and status against Status; "" or "all" matches every status.
func FilterRetailers(q, status string) []Retailer {
	q = strings.ToLower(strings.TrimSpace(q))
	var out []Retailer
	for _, r := range retailers {
		if status != "" && status != "all" && r.Status != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(r.Name), q) &&
			!strings.Contains(strings.ToLower(r.Location), q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SearchInventory matches q against name, SKU and category.
func SearchInventory(q string) []Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return Inventory()
	}
	var out []Product
	for _, p := range inventory {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.SKU), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

// StockAlerts splits the inventory into low-stock and out-of-stock items.
func StockAlerts() (low, out []Product) {
	for _, p := range inventory {
		switch p.Status() {
		case StockLow:
			low = append(low, p)
		case StockOut:
			out = append(out, p)
		}
	}
	return low, out
}

// Overview holds the counters on the distributor landing page.
type Overview struct {
	Retailers        int
	Orders           int
	Revenue          float64
	PendingShipments int
	RecentOrders     []Order
}

// SummarizeOverview computes the landing-page counters from the catalog.
// RecentOrders is newest first, at most five.
func SummarizeOverview() Overview {
	ov := Overview{
		Retailers: len(retailers),
		Orders:    len(orders),
	}
	for _, o := range orders {
		ov.Revenue += o.Total
		if o.Status != OrderShipped {
			ov.PendingShipments++
		}
	}
	recent := Orders()
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	ov.RecentOrders = recent
	return ov
}
