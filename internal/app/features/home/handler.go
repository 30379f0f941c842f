// internal/app/features/home/handler.go
package home

import (
	"net/http"

	"github.com/dalemusser/distrohub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the public landing page.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type feature struct {
	Title string
	Body  string
}

var features = []feature{
	{Title: "Retailer network", Body: "Keep every retailer, contact and status in one place."},
	{Title: "Orders & inventory", Body: "Track incoming orders and catch low stock before it runs out."},
	{Title: "Retailer portal", Body: "Retailers sign up and get their own dashboard."},
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
		Features []feature
	}{
		BaseVM:   viewdata.NewBaseVM(r, "Welcome", "/"),
		Features: features,
	}

	templates.Render(w, r, "home", data)
}
