package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/cli/internal/addressbook"
	"github.com/storefront/cli/internal/api"
	"github.com/storefront/cli/internal/cart"
	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/storage"
	"github.com/storefront/cli/internal/utils"
)

type fakeSession bool

func (f fakeSession) AccessToken() string { return "T1" }
func (f fakeSession) IsLoggedIn() bool    { return bool(f) }

type shop struct {
	mu        sync.Mutex
	orderResp any
	status    int
	addressID int64
}

func (s *shop) lastAddressID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addressID
}

func (s *shop) respond(status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status, s.orderResp = status, body
}

func newService(t *testing.T, loggedIn bool) (*Service, *shop, *storage.MemoryStore) {
	t.Helper()
	s := &shop{status: http.StatusCreated, orderResp: map[string]any{"order_id": 501}}
	r := mux.NewRouter()
	r.HandleFunc("/api/users/addresses/", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]models.Address{
			{ID: 1, Name: "Office"},
			{ID: 2, Name: "Home", IsDefault: true},
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/cart/", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{
			{"id": 1, "quantity": 2, "size": "M", "product": map[string]any{"id": 9, "price": "500", "discount_price": "400"}},
		}})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/create/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AddressID int64 `json:"address_id"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		s.mu.Lock()
		defer s.mu.Unlock()
		s.addressID = req.AddressID
		w.WriteHeader(s.status)
		_ = json.NewEncoder(w).Encode(s.orderResp)
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL)
	sess := fakeSession(loggedIn)
	store := storage.NewMemoryStore()
	book := addressbook.New(client, sess, nil)
	bag := cart.New(client, sess, nil, cart.DefaultConvenienceFee, nil)
	return New(client, book, bag, sess, store, nil), s, store
}

func TestShippingSummary(t *testing.T) {
	svc, _, _ := newService(t, true)

	sum, err := svc.ShippingSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Addresses, 2)
	assert.Equal(t, int64(2), sum.Addresses[0].ID)
	assert.Equal(t, models.Amount(800), sum.Cart.BagTotal)
	assert.Equal(t, models.Amount(829), sum.Cart.OrderTotal)

	def, ok := DefaultAddress(sum.Addresses)
	require.True(t, ok)
	assert.Equal(t, "Home", def.Name)
}

func TestDefaultAddress(t *testing.T) {
	_, ok := DefaultAddress(nil)
	assert.False(t, ok)

	a, ok := DefaultAddress(models.Addresses{{ID: 4}, {ID: 5}})
	require.True(t, ok)
	assert.Equal(t, int64(4), a.ID)
}

func TestPlaceOrder_PersistsLastOrderID(t *testing.T) {
	svc, shop, store := newService(t, true)

	order, err := svc.PlaceOrder(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.FlexString("501"), order.OrderID)
	assert.Equal(t, int64(2), shop.lastAddressID())

	v, ok := store.Get(LastOrderKey)
	require.True(t, ok)
	assert.Equal(t, "501", v)

	id, ok := svc.LastOrderID()
	assert.True(t, ok)
	assert.Equal(t, "501", id)
}

func TestPlaceOrder_Failures(t *testing.T) {
	t.Run("no_address", func(t *testing.T) {
		svc, _, store := newService(t, true)
		_, err := svc.PlaceOrder(context.Background(), 0)
		assert.True(t, utils.IsValidationError(err))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("gateway_error_text", func(t *testing.T) {
		svc, shop, store := newService(t, true)
		shop.respond(http.StatusBadRequest, map[string]string{"error": "Cart is empty"})

		_, err := svc.PlaceOrder(context.Background(), 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cart is empty")
		_, ok := svc.LastOrderID()
		assert.False(t, ok)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("gateway_error_without_text", func(t *testing.T) {
		svc, shop, _ := newService(t, true)
		shop.respond(http.StatusInternalServerError, map[string]string{})

		_, err := svc.PlaceOrder(context.Background(), 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Order failed.")
	})

	t.Run("login_required", func(t *testing.T) {
		svc, _, _ := newService(t, false)
		_, err := svc.PlaceOrder(context.Background(), 2)
		assert.ErrorIs(t, err, utils.ErrLoginRequired)
		_, err = svc.ShippingSummary(context.Background())
		assert.ErrorIs(t, err, utils.ErrLoginRequired)
	})
}
