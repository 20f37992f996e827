package session

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/cli/internal/api"
	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/storage"
	"github.com/storefront/cli/internal/utils"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

type fakeProfile struct {
	profile *models.Profile
	err     error
	calls   int
	token   string
}

func (f *fakeProfile) Profile(_ context.Context, token string) (*models.Profile, error) {
	f.calls++
	f.token = token
	return f.profile, f.err
}

func TestIsValid(t *testing.T) {
	future := mintToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	past := mintToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})
	noExp := mintToken(t, jwt.MapClaims{"user_id": 1})

	parts := strings.Split(future, ".")
	badJSON := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + "." + parts[2]

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	padded := parts[0] + "." + base64.URLEncoding.EncodeToString(payload) + "." + parts[2]

	withHeader := func(header string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(header)) + "." + parts[1] + "." + parts[2]
	}

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "future_exp", token: future, want: true},
		{name: "header_without_alg", token: withHeader(`{"typ":"JWT"}`), want: true},
		{name: "header_unknown_alg", token: withHeader(`{"alg":"XX999"}`), want: true},
		{name: "header_not_json", token: withHeader("not-json"), want: true},
		{name: "unsigned", token: parts[0] + "." + parts[1] + ".", want: true},
		{name: "padded_payload", token: padded, want: true},
		{name: "past_exp", token: past, want: false},
		{name: "missing_exp", token: noExp, want: false},
		{name: "empty", token: "", want: false},
		{name: "one_segment", token: "abc", want: false},
		{name: "two_segments", token: parts[0] + "." + parts[1], want: false},
		{name: "non_json_payload", token: badJSON, want: false},
		{name: "not_base64", token: parts[0] + ".!!!." + parts[2], want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.token))
		})
	}
}

func TestManager_SaveAndSession(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewManager(store, nil, nil)

	require.NoError(t, store.Set(KeyFirstName, "Old"))
	require.NoError(t, m.Save(&models.VerifyOTPResponse{
		Success:  true,
		Access:   "T1",
		Refresh:  "T2",
		Username: "a",
		UserID:   "1",
	}))

	s := m.Session()
	assert.Equal(t, "T1", s.AccessToken)
	assert.Equal(t, "T2", s.RefreshToken)
	assert.Equal(t, "1", s.UserID)
	assert.Empty(t, s.FirstName)
	assert.Equal(t, "a", m.DisplayName())
	assert.Equal(t, "T1", m.AccessToken())
}

func TestManager_IsLoggedIn(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewManager(store, nil, nil)
	assert.False(t, m.IsLoggedIn())

	require.NoError(t, store.Set(KeyAccess, mintToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})))
	assert.True(t, m.IsLoggedIn())

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.False(t, m.IsLoggedIn())
}

func TestManager_SyncProfileMerges(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.SetMany(map[string]string{
		KeyAccess:     "T1",
		KeyFirstName:  "Asha",
		KeyScreenName: "asha_k",
		KeyPhone:      "9876543210",
	}))

	fp := &fakeProfile{profile: &models.Profile{FirstName: "Asha K", ScreenName: " "}}
	m := NewManager(store, fp, nil)

	assert.True(t, m.SyncProfile(context.Background(), ""))
	assert.Equal(t, "T1", fp.token)

	s := m.Session()
	assert.Equal(t, "Asha K", s.FirstName)
	assert.Equal(t, "asha_k", s.ScreenName)
	assert.Equal(t, "9876543210", s.Phone)
}

func TestManager_SyncProfileFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.SetMany(map[string]string{KeyAccess: "T1", KeyFirstName: "Asha"}))

	fp := &fakeProfile{err: errors.New("boom")}
	m := NewManager(store, fp, nil)

	assert.False(t, m.SyncProfile(context.Background(), "T1"))
	assert.Equal(t, "Asha", m.Session().FirstName)

	empty := NewManager(storage.NewMemoryStore(), fp, nil)
	assert.False(t, empty.SyncProfile(context.Background(), ""))
	assert.Equal(t, 1, fp.calls)
}

func TestManager_SyncProfileUnauthorizedClears(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.SetMany(map[string]string{KeyAccess: "T1", KeyFirstName: "Asha", "wishlist_items": "[]"}))

	m := NewManager(store, &fakeProfile{err: utils.NewGatewayError(http.StatusUnauthorized, "")}, nil)

	assert.False(t, m.SyncProfile(context.Background(), "T1"))
	assert.Equal(t, models.Session{}, m.Session())
	assert.Equal(t, 1, store.Len())
}

func TestManager_Clear(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewManager(store, nil, nil)
	require.NoError(t, m.Save(&models.VerifyOTPResponse{Access: "T1", Refresh: "T2", Username: "a", UserID: "1", Phone: "9876543210"}))
	require.NoError(t, store.Set("wishlist_items", "[]"))

	require.NoError(t, m.Clear())
	assert.Equal(t, models.Session{}, m.Session())
	assert.Equal(t, 1, store.Len())
}

func TestManager_ClearsOnAnyUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL)
	store := storage.NewMemoryStore()
	m := NewManager(store, client, nil)
	m.ClearOnUnauthorized(client)

	for _, call := range []func() error{
		func() error { _, err := client.Cart(context.Background(), "T1"); return err },
		func() error { _, err := client.Addresses(context.Background(), "T1"); return err },
		func() error { return client.UpdateProfile(context.Background(), "T1", models.SignupProfile{}) },
	} {
		require.NoError(t, m.Save(&models.VerifyOTPResponse{Access: "T1", Username: "a"}))
		require.Error(t, call())
		assert.Empty(t, m.AccessToken())
	}

	require.NoError(t, m.Save(&models.VerifyOTPResponse{Access: "T1", Username: "a"}))
	assert.False(t, m.SyncProfile(context.Background(), ""))
	assert.Empty(t, m.Session().Username)
}
