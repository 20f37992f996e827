// Package checkout builds the shipping page summary and places orders.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/storage"
	"github.com/storefront/cli/internal/utils"
)

// LastOrderKey is where the id of the most recent order is kept.
const LastOrderKey = "last_order_id"

// Gateway creates orders.
type Gateway interface {
	CreateOrder(ctx context.Context, token string, addressID int64) (*models.Order, error)
}

// Addresses lists addresses, default first.
type Addresses interface {
	List(ctx context.Context) (models.Addresses, error)
}

// Cart lists the bag with totals.
type Cart interface {
	List(ctx context.Context) (*models.CartSummary, error)
}

// Session supplies the bearer token.
type Session interface {
	AccessToken() string
	IsLoggedIn() bool
}

// Service is the checkout step.
type Service struct {
	gateway   Gateway
	addresses Addresses
	cart      Cart
	session   Session
	store     storage.Store
	logger    *zap.Logger
}

// New creates a checkout service.
func New(gateway Gateway, addresses Addresses, cart Cart, session Session, store storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gateway:   gateway,
		addresses: addresses,
		cart:      cart,
		session:   session,
		store:     store,
		logger:    logger,
	}
}

// ShippingSummary returns the address choices and the bag totals.
func (s *Service) ShippingSummary(ctx context.Context) (*models.ShippingSummary, error) {
	if !s.session.IsLoggedIn() {
		return nil, utils.ErrLoginRequired
	}
	addresses, err := s.addresses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load addresses: %w", err)
	}
	cart, err := s.cart.List(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ShippingSummary{Addresses: addresses, Cart: *cart}, nil
}

// DefaultAddress is the address preselected on the shipping page: the default
// one, else the first. It returns false when there are none.
func DefaultAddress(addresses models.Addresses) (models.Address, bool) {
	if len(addresses) == 0 {
		return models.Address{}, false
	}
	for _, a := range addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return addresses[0], true
}

// PlaceOrder creates an order shipping to addressID and remembers its id.
func (s *Service) PlaceOrder(ctx context.Context, addressID int64) (*models.Order, error) {
	if !s.session.IsLoggedIn() {
		return nil, utils.ErrLoginRequired
	}
	if addressID <= 0 {
		return nil, utils.NewValidationError("address", "Please select an address.")
	}

	order, err := s.gateway.CreateOrder(ctx, s.session.AccessToken(), addressID)
	if err != nil {
		var gwErr *utils.GatewayError
		if errors.As(err, &gwErr) && gwErr.StatusCode != 0 && gwErr.Message == "" {
			gwErr.Message = "Order failed."
		}
		return nil, err
	}

	if id := string(order.OrderID); id != "" {
		if err := s.store.Set(LastOrderKey, id); err != nil {
			return order, fmt.Errorf("order %s placed but could not be saved locally: %w", id, err)
		}
	}
	s.logger.Info("order placed", zap.String("order_id", string(order.OrderID)), zap.Int64("address_id", addressID))
	return order, nil
}

// LastOrderID returns the id of the most recently placed order.
func (s *Service) LastOrderID() (string, bool) {
	id, ok := s.store.Get(LastOrderKey)
	return id, ok && id != ""
}
