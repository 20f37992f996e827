package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/utils"
)

const (
	pathCheckMobile = "/api/users/check-mobile/"
	pathSendOTP     = "/api/users/send-otp/"
	pathVerifyOTP   = "/api/users/verify-otp/"
	pathProfile     = "/api/users/me/"
	pathAddresses   = "/api/users/addresses/"
	pathCart        = "/api/cart/"
	pathProducts    = "/api/products/"
	pathOrderCreate = "/api/orders/create/"

	// RequestIDHeader carries a fresh id on every request.
	RequestIDHeader = "X-Request-ID"
)

// Client represents the gateway client
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	logger         *zap.Logger
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new gateway client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthorized registers fn to run whenever an authenticated call
// comes back 401. The session manager hooks its Clear here.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// call describes one gateway request.
type call struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
	out    any

	// decodeErrorBody decodes non-2xx bodies into out as well.
	decodeErrorBody bool
}

// do executes a call and maps every failure onto the gateway error taxonomy.
func (c *Client) do(ctx context.Context, cl call) error {
	var reader io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.BaseURL + cl.path
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	log := c.logger.With(
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.String("request_id", requestID),
	)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Debug("gateway request failed", zap.Error(err))
		return utils.NewTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return utils.NewTransportError(fmt.Errorf("failed to read response: %w", err))
	}

	log.Debug("gateway response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized && cl.token != "" {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return utils.NewGatewayError(resp.StatusCode, errorText(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if cl.decodeErrorBody && cl.out != nil && len(body) > 0 {
			_ = json.Unmarshal(body, cl.out)
		}
		return utils.NewGatewayError(resp.StatusCode, errorText(body))
	}

	if cl.out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if raw, ok := cl.out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}

	if err := json.Unmarshal(body, cl.out); err != nil {
		return &utils.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    "failed to parse response",
			Err:        err,
		}
	}
	return nil
}

// errorText extracts {error|detail|message} from an error body.
func errorText(body []byte) string {
	var m models.MessageResponse
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	return m.Text()
}

// CheckMobile asks whether an account exists for mobile.
func (c *Client) CheckMobile(ctx context.Context, mobile string) (bool, error) {
	var out models.CheckMobileResponse
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   pathCheckMobile,
		query:  url.Values{"mobile": {mobile}},
		out:    &out,
	})
	if err != nil {
		return false, err
	}
	return out.Exists, nil
}

// SendOTP asks the gateway to deliver an OTP to mobile.
func (c *Client) SendOTP(ctx context.Context, mobile string) error {
	return c.do(ctx, call{
		method: http.MethodGet,
		path:   pathSendOTP,
		query:  url.Values{"mobile": {mobile}},
	})
}

// VerifyOTP checks the code. When the gateway rejects it the decoded body is
// returned alongside the error so its message can be shown.
func (c *Client) VerifyOTP(ctx context.Context, mobile, otp string) (*models.VerifyOTPResponse, error) {
	var out models.VerifyOTPResponse
	err := c.do(ctx, call{
		method:          http.MethodPost,
		path:            pathVerifyOTP,
		body:            models.VerifyOTPRequest{Mobile: mobile, OTP: otp},
		out:             &out,
		decodeErrorBody: true,
	})
	if err != nil {
		var gwErr *utils.GatewayError
		if errors.As(err, &gwErr) && gwErr.StatusCode != 0 {
			return &out, err
		}
		return nil, err
	}
	return &out, nil
}

// Profile reads /users/me/.
func (c *Client) Profile(ctx context.Context, token string) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   pathProfile,
		token:  token,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile writes the signup fields with the given bearer token.
func (c *Client) UpdateProfile(ctx context.Context, token string, profile models.SignupProfile) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		path:   pathProfile,
		token:  token,
		body:   profile,
	})
}

// Cart reads the bag and normalises whichever shape the gateway returned.
func (c *Client) Cart(ctx context.Context, token string) (*models.Cart, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   pathCart,
		token:  token,
		out:    &raw,
	}); err != nil {
		return nil, err
	}
	return NormalizeCart(raw, c.BaseURL)
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// AddToCart adds quantity units of a product size.
func (c *Client) AddToCart(ctx context.Context, token, productID, size string, quantity int) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   pathCart + "add/",
		token:  token,
		body:   addToCartRequest{ProductID: productID, Size: size, Quantity: quantity},
	})
}

// RemoveCartItem deletes a bag line.
func (c *Client) RemoveCartItem(ctx context.Context, token string, itemID int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   fmt.Sprintf("%sremove/%d/", pathCart, itemID),
		token:  token,
	})
}

// UpdateCartQuantity sets a bag line quantity.
func (c *Client) UpdateCartQuantity(ctx context.Context, token string, itemID int64, quantity int) error {
	return c.do(ctx, call{
		method: http.MethodPatch,
		path:   fmt.Sprintf("%sitem/%d/", pathCart, itemID),
		token:  token,
		body:   map[string]int{"quantity": quantity},
	})
}

// UpdateCartSize changes a bag line size.
func (c *Client) UpdateCartSize(ctx context.Context, token string, itemID int64, size string) error {
	return c.do(ctx, call{
		method: http.MethodPatch,
		path:   fmt.Sprintf("%sitem/%d/size/", pathCart, itemID),
		token:  token,
		body:   map[string]string{"size": size},
	})
}

// Products lists products, optionally filtered by a search term.
func (c *Client) Products(ctx context.Context, search string) (models.Products, error) {
	var q url.Values
	if search = strings.TrimSpace(search); search != "" {
		q = url.Values{"search": {search}}
	}
	var raw json.RawMessage
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   pathProducts,
		query:  q,
		out:    &raw,
	}); err != nil {
		return nil, err
	}
	return NormalizeProducts(raw, c.BaseURL)
}

// Product reads one product for the quick view.
func (c *Client) Product(ctx context.Context, id string) (*models.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   pathProducts + url.PathEscape(id) + "/",
		out:    &raw,
	}); err != nil {
		return nil, err
	}
	return NormalizeProduct(raw, c.BaseURL)
}

// Addresses lists the saved addresses.
func (c *Client) Addresses(ctx context.Context, token string) (models.Addresses, error) {
	var out models.Addresses
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   pathAddresses,
		token:  token,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// AddAddress saves a new address.
func (c *Client) AddAddress(ctx context.Context, token string, a models.Address) (*models.Address, error) {
	var out models.Address
	if err := c.do(ctx, call{
		method: http.MethodPost,
		path:   pathAddresses + "add/",
		token:  token,
		body:   a,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAddress replaces an address.
func (c *Client) UpdateAddress(ctx context.Context, token string, id int64, a models.Address) (*models.Address, error) {
	var out models.Address
	if err := c.do(ctx, call{
		method: http.MethodPut,
		path:   fmt.Sprintf("%supdate/%d/", pathAddresses, id),
		token:  token,
		body:   a,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAddress removes an address.
func (c *Client) DeleteAddress(ctx context.Context, token string, id int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   fmt.Sprintf("%sdelete/%d/", pathAddresses, id),
		token:  token,
	})
}

// CreateOrder places an order shipping to addressID.
func (c *Client) CreateOrder(ctx context.Context, token string, addressID int64) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, call{
		method: http.MethodPost,
		path:   pathOrderCreate,
		token:  token,
		body:   map[string]int64{"address_id": addressID},
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}
