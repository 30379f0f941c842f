package viewdata_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"github.com/dalemusser/distrohub/internal/app/system/viewdata"
	"github.com/dalemusser/distrohub/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseVM_Anonymous(t *testing.T) {
	vm := viewdata.NewBaseVM(httptest.NewRequest("GET", "/", nil), "Welcome", "/")

	assert.Equal(t, "DistroHub", vm.SiteName)
	assert.False(t, vm.IsLoggedIn)
	assert.Equal(t, "/auth", vm.HomeURL)
	assert.Equal(t, "light", vm.Theme)
	assert.Equal(t, "expanded", vm.Sidebar)
	assert.False(t, vm.DarkMode)
	assert.Equal(t, "Welcome", vm.Title)
}

func TestNewBaseVM_Retailer(t *testing.T) {
	s := &identity.Session{User: identity.User{
		ID:           uuid.New(),
		Email:        "shop@example.com",
		UserMetadata: map[string]any{"role": "retailer"},
	}}
	req := testutil.WithSession(httptest.NewRequest("GET", "/retailers-dashboard", nil), s)
	vm := viewdata.NewBaseVM(req, "Home", "/")

	assert.True(t, vm.IsLoggedIn)
	assert.True(t, vm.IsRetailer)
	assert.Equal(t, "Retailer", vm.RoleLabel)
	assert.Equal(t, "shop@example.com", vm.Email)
	assert.Equal(t, "/retailers-dashboard", vm.HomeURL)
}
