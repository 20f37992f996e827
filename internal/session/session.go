// Package session owns the persisted authentication and profile record.
// Every other component reads it; only the Manager writes it.
package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/storage"
	"github.com/storefront/cli/internal/utils"
)

// Local storage keys.
const (
	KeyAccess     = "access"
	KeyRefresh    = "refresh"
	KeyUsername   = "username"
	KeyUserID     = "user_id"
	KeyFirstName  = "first_name"
	KeyScreenName = "screen_name"
	KeyPhone      = "phone"
)

var allKeys = []string{KeyAccess, KeyRefresh, KeyUsername, KeyUserID, KeyFirstName, KeyScreenName, KeyPhone}

// ProfileReader reads the signed-in user's profile.
type ProfileReader interface {
	Profile(ctx context.Context, token string) (*models.Profile, error)
}

// Manager reads and mutates the session held in local storage.
type Manager struct {
	store   storage.Store
	profile ProfileReader
	logger  *zap.Logger
	now     func() time.Time
}

// NewManager creates a session manager.
func NewManager(store storage.Store, profile ProfileReader, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:   store,
		profile: profile,
		logger:  logger,
		now:     time.Now,
	}
}

// ClearOnUnauthorized registers Clear as the client's 401 hook.
func (m *Manager) ClearOnUnauthorized(c interface{ OnUnauthorized(func()) }) {
	c.OnUnauthorized(func() {
		m.logger.Info("gateway rejected the session, clearing it")
		if err := m.Clear(); err != nil {
			m.logger.Warn("failed to clear session", zap.Error(err))
		}
	})
}

// Session returns the stored record. Missing keys come back empty.
func (m *Manager) Session() models.Session {
	get := func(k string) string {
		v, _ := m.store.Get(k)
		return v
	}
	return models.Session{
		AccessToken:  get(KeyAccess),
		RefreshToken: get(KeyRefresh),
		Username:     get(KeyUsername),
		UserID:       get(KeyUserID),
		FirstName:    get(KeyFirstName),
		ScreenName:   get(KeyScreenName),
		Phone:        get(KeyPhone),
	}
}

// AccessToken returns the stored bearer token or "".
func (m *Manager) AccessToken() string {
	v, _ := m.store.Get(KeyAccess)
	return v
}

// DisplayName returns the name shown for the signed-in user.
func (m *Manager) DisplayName() string {
	return m.Session().DisplayName()
}

// IsLoggedIn reports whether a stored access token is present and unexpired.
func (m *Manager) IsLoggedIn() bool {
	return isValidAt(m.AccessToken(), m.now())
}

// Save stores the tokens and profile fields of a verify-OTP response in a
// single write. Optional fields the response omits are blanked so nothing
// from a previous account survives.
func (m *Manager) Save(resp *models.VerifyOTPResponse) error {
	if resp == nil {
		return nil
	}
	err := m.store.SetMany(map[string]string{
		KeyAccess:     resp.Access,
		KeyRefresh:    resp.Refresh,
		KeyUsername:   resp.Username,
		KeyUserID:     string(resp.UserID),
		KeyFirstName:  resp.FirstName,
		KeyScreenName: resp.ScreenName,
		KeyPhone:      resp.Phone,
	})
	if err != nil {
		return err
	}
	m.logger.Debug("session saved",
		zap.String("username", resp.Username),
		zap.String("access", utils.RedactToken(resp.Access)),
	)
	return nil
}

// SyncProfile refreshes the cached display fields from the gateway. Only
// non-empty fields overwrite the cache. Any failure returns false and leaves
// the cache as it was, except a 401 which clears the session.
func (m *Manager) SyncProfile(ctx context.Context, token string) bool {
	if token == "" {
		token = m.AccessToken()
	}
	if token == "" || m.profile == nil {
		return false
	}

	p, err := m.profile.Profile(ctx, token)
	if err != nil {
		m.logger.Debug("profile sync failed", zap.Error(err))
		if utils.IsAuthError(err) {
			if cerr := m.Clear(); cerr != nil {
				m.logger.Warn("failed to clear session", zap.Error(cerr))
			}
		}
		return false
	}

	update := map[string]string{}
	if v := strings.TrimSpace(p.FirstName); v != "" {
		update[KeyFirstName] = v
	}
	if v := strings.TrimSpace(p.ScreenName); v != "" {
		update[KeyScreenName] = v
	}
	if v := strings.TrimSpace(p.Phone); v != "" {
		update[KeyPhone] = v
	}
	if len(update) == 0 {
		return true
	}
	if err := m.store.SetMany(update); err != nil {
		m.logger.Warn("failed to cache profile", zap.Error(err))
		return false
	}
	return true
}

// Clear removes every credential and profile key.
func (m *Manager) Clear() error {
	return m.store.Remove(allKeys...)
}

// IsValid reports whether the payload segment of token carries an exp claim
// in the future. The header and signature are not looked at.
func IsValid(token string) bool {
	return isValidAt(token, time.Now())
}

func isValidAt(token string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[1] == "" {
		return false
	}
	payload, err := jwt.NewParser(jwt.WithPaddingAllowed()).DecodeSegment(parts[1])
	if err != nil {
		return false
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(now)
}
