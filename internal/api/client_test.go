package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/utils"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestServer(t *testing.T, register func(r *mux.Router)) (*Client, *httptest.Server) {
	t.Helper()
	r := mux.NewRouter()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/"), srv
}

func TestCheckMobile(t *testing.T) {
	c, _ := newTestServer(t, func(r *mux.Router) {
		r.HandleFunc("/api/users/check-mobile/", func(w http.ResponseWriter, r *http.Request) {
			_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
			assert.NoError(t, err)
			writeJSON(w, http.StatusOK, map[string]bool{"exists": r.URL.Query().Get("mobile") == "9876543210"})
		}).Methods(http.MethodGet)
	})

	exists, err := c.CheckMobile(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.CheckMobile(context.Background(), "9000000000")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestVerifyOTP(t *testing.T) {
	c, _ := newTestServer(t, func(r *mux.Router) {
		r.HandleFunc("/api/users/verify-otp/", func(w http.ResponseWriter, r *http.Request) {
			var req models.VerifyOTPRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Empty(t, r.Header.Get("Authorization"))

			if req.OTP != "123456" {
				writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad code"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"success":  true,
				"access":   "T1",
				"refresh":  "T2",
				"username": "9876543210",
				"user_id":  1,
			})
		}).Methods(http.MethodPost)
	})

	resp, err := c.VerifyOTP(context.Background(), "9876543210", "123456")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "T1", resp.Access)
	assert.Equal(t, models.FlexString("1"), resp.UserID)

	resp, err = c.VerifyOTP(context.Background(), "9876543210", "000000")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "bad code", resp.Message)
	assert.False(t, utils.IsAuthError(err))
}

func TestAuthenticatedCall401TriggersHook(t *testing.T) {
	c, _ := newTestServer(t, func(r *mux.Router) {
		r.HandleFunc("/api/cart/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid"})
		})
		r.HandleFunc("/api/users/check-mobile/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "nope"})
		})
	})

	var cleared int32
	c.OnUnauthorized(func() { atomic.AddInt32(&cleared, 1) })

	_, err := c.Cart(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, utils.IsAuthError(err))
	assert.Contains(t, err.Error(), "Given token not valid")
	assert.Equal(t, int32(1), atomic.LoadInt32(&cleared))

	// unauthenticated calls never clear the session
	_, err = c.CheckMobile(context.Background(), "9876543210")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&cleared))
}

func TestBearerAndBodies(t *testing.T) {
	var gotProfile models.SignupProfile
	c, _ := newTestServer(t, func(r *mux.Router) {
		r.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
			if r.Method == http.MethodPut {
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotProfile))
				writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"first_name": "Asha", "phone": "9876543210"})
		}).Methods(http.MethodGet, http.MethodPut)
		r.HandleFunc("/api/cart/item/{id}/size/", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "42", mux.Vars(r)["id"])
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "L", body["size"])
			writeJSON(w, http.StatusOK, map[string]string{"message": "Size updated"})
		}).Methods(http.MethodPatch)
		r.HandleFunc("/api/orders/create/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"order_id": 991})
		}).Methods(http.MethodPost)
	})

	ctx := context.Background()
	require.NoError(t, c.UpdateProfile(ctx, "T1", models.SignupProfile{FirstName: "A", Email: "a@x.com", Gender: "F"}))
	assert.Equal(t, "a@x.com", gotProfile.Email)

	p, err := c.Profile(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.FirstName)

	require.NoError(t, c.UpdateCartSize(ctx, "T1", 42, "L"))

	order, err := c.CreateOrder(ctx, "T1", 3)
	require.NoError(t, err)
	assert.Equal(t, models.FlexString("991"), order.OrderID)
}

func TestGatewayErrorMessages(t *testing.T) {
	c, _ := newTestServer(t, func(r *mux.Router) {
		r.HandleFunc("/api/cart/add/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Not enough stock for selected size"})
		})
		r.HandleFunc("/api/products/{id}/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	})

	err := c.AddToCart(context.Background(), "T1", "5", "M", 1)
	var gwErr *utils.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Equal(t, "Not enough stock for selected size", gwErr.Message)

	_, err = c.Product(context.Background(), "404")
	assert.True(t, utils.IsNotFoundError(err))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url)
	_, err := c.CheckMobile(context.Background(), "9876543210")
	var gwErr *utils.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, 0, gwErr.StatusCode)

	resp, err := c.VerifyOTP(context.Background(), "9876543210", "123456")
	require.Error(t, err)
	assert.Nil(t, resp)
}

func TestCanceledContext(t *testing.T) {
	c, _ := newTestServer(t, func(r *mux.Router) {
		r.HandleFunc("/api/users/send-otp/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent"})
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.SendOTP(ctx, "9876543210")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
