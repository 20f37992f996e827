// Package cart is the bag view-model: it reads the normalised cart from the
// gateway, computes totals and applies line edits.
package cart

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/utils"
)

// DefaultConvenienceFee is added to every order total.
const DefaultConvenienceFee = 29

// Gateway is the cart part of the storefront API.
type Gateway interface {
	Cart(ctx context.Context, token string) (*models.Cart, error)
	AddToCart(ctx context.Context, token, productID, size string, quantity int) error
	RemoveCartItem(ctx context.Context, token string, itemID int64) error
	UpdateCartQuantity(ctx context.Context, token string, itemID int64, quantity int) error
	UpdateCartSize(ctx context.Context, token string, itemID int64, size string) error
}

// Session supplies the bearer token.
type Session interface {
	AccessToken() string
	IsLoggedIn() bool
}

// Wishlist exchanges items with the bag.
type Wishlist interface {
	Upsert(entry models.WishlistEntry) error
	Find(id string) (models.WishlistEntry, bool)
	Remove(id string) error
}

// Service is the cart view-model.
type Service struct {
	gateway  Gateway
	session  Session
	wishlist Wishlist
	fee      models.Amount
	logger   *zap.Logger
}

// New creates a cart service. A negative fee falls back to DefaultConvenienceFee.
func New(gateway Gateway, session Session, wishlist Wishlist, fee float64, logger *zap.Logger) *Service {
	if fee < 0 {
		fee = DefaultConvenienceFee
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gateway:  gateway,
		session:  session,
		wishlist: wishlist,
		fee:      models.Amount(fee),
		logger:   logger,
	}
}

// Summarize computes the totals of cart. An empty bag has no fee.
func Summarize(cart *models.Cart, fee models.Amount) models.CartSummary {
	s := models.CartSummary{Items: []models.CartItem{}}
	if cart == nil {
		return s
	}
	s.Items = cart.Items
	for _, it := range cart.Items {
		s.ItemCount += it.Quantity
		s.BagTotal += it.LineTotal()
	}
	if len(cart.Items) > 0 {
		s.ConvenienceFee = fee
	}
	s.OrderTotal = s.BagTotal + s.ConvenienceFee
	return s
}

// List returns the bag with its totals.
func (s *Service) List(ctx context.Context) (*models.CartSummary, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}
	cart, err := s.gateway.Cart(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	summary := Summarize(cart, s.fee)
	return &summary, nil
}

// Count returns the number of units in the bag.
func (s *Service) Count(ctx context.Context) (int, error) {
	summary, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return summary.ItemCount, nil
}

// Upsert adds quantity units of a product size. The gateway merges lines of
// the same product and size.
func (s *Service) Upsert(ctx context.Context, productID, size string, quantity int) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	productID, size = strings.TrimSpace(productID), strings.TrimSpace(size)
	if productID == "" {
		return utils.NewValidationError("product", "product id is required")
	}
	if size == "" {
		return utils.NewValidationError("size", "Please select a size")
	}
	if quantity <= 0 {
		quantity = 1
	}
	if err := s.gateway.AddToCart(ctx, token, productID, size, quantity); err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

// Remove deletes a bag line.
func (s *Service) Remove(ctx context.Context, itemID int64) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	if err := s.gateway.RemoveCartItem(ctx, token, itemID); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	return nil
}

// ChangeQuantity moves a line's quantity by delta. Reaching zero removes the
// line and going below zero does nothing. It returns the new quantity.
func (s *Service) ChangeQuantity(ctx context.Context, itemID int64, delta int) (int, error) {
	item, token, err := s.item(ctx, itemID)
	if err != nil {
		return 0, err
	}

	qty := item.Quantity + delta
	switch {
	case qty < 0:
		return item.Quantity, nil
	case qty == 0:
		if err := s.gateway.RemoveCartItem(ctx, token, itemID); err != nil {
			return item.Quantity, fmt.Errorf("failed to remove item: %w", err)
		}
		return 0, nil
	}

	if err := s.gateway.UpdateCartQuantity(ctx, token, itemID, qty); err != nil {
		return item.Quantity, fmt.Errorf("failed to update quantity: %w", err)
	}
	return qty, nil
}

// ChangeSize switches a line to another size.
func (s *Service) ChangeSize(ctx context.Context, itemID int64, size string) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	if size = strings.TrimSpace(size); size == "" {
		return utils.NewValidationError("size", "Please select a size")
	}
	if err := s.gateway.UpdateCartSize(ctx, token, itemID, size); err != nil {
		return fmt.Errorf("failed to update size: %w", err)
	}
	return nil
}

// MoveToWishlist saves the line (with its size) to the wishlist, then
// removes it from the bag.
func (s *Service) MoveToWishlist(ctx context.Context, itemID int64) (*models.WishlistEntry, error) {
	item, token, err := s.item(ctx, itemID)
	if err != nil {
		return nil, err
	}

	size := item.Size
	if size == "" {
		size = "-"
	}
	entry := models.WishlistEntry{
		ID:    item.ProductID,
		Name:  item.Name,
		Brand: item.Brand,
		Price: fmt.Sprintf("%.2f", float64(item.UnitPrice)),
		Image: item.Image,
		Size:  size,
	}
	if err := s.wishlist.Upsert(entry); err != nil {
		return nil, err
	}
	if err := s.gateway.RemoveCartItem(ctx, token, itemID); err != nil {
		return &entry, fmt.Errorf("saved to wishlist but failed to remove from bag: %w", err)
	}
	return &entry, nil
}

// MoveFromWishlist adds one unit of a wishlisted product to the bag, then
// drops it from the wishlist. The size saved with the entry wins over size.
func (s *Service) MoveFromWishlist(ctx context.Context, productID, size string) (*models.WishlistEntry, error) {
	if _, err := s.token(); err != nil {
		return nil, err
	}
	entry, ok := s.wishlist.Find(productID)
	if !ok {
		return nil, utils.NewValidationError("product", fmt.Sprintf("%s is not in your wishlist", strings.TrimSpace(productID)))
	}
	if saved := strings.TrimSpace(entry.Size); saved != "" && saved != "-" {
		size = saved
	}
	entry.Size = strings.TrimSpace(size)

	if err := s.Upsert(ctx, entry.ID, entry.Size, 1); err != nil {
		return nil, err
	}
	if err := s.wishlist.Remove(entry.ID); err != nil {
		return &entry, fmt.Errorf("added to bag but failed to remove from wishlist: %w", err)
	}
	return &entry, nil
}

func (s *Service) item(ctx context.Context, itemID int64) (*models.CartItem, string, error) {
	token, err := s.token()
	if err != nil {
		return nil, "", err
	}
	cart, err := s.gateway.Cart(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load cart: %w", err)
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return &cart.Items[i], token, nil
		}
	}
	return nil, "", utils.NewValidationError("item", fmt.Sprintf("no bag item with id %d", itemID))
}

func (s *Service) token() (string, error) {
	if !s.session.IsLoggedIn() {
		return "", utils.ErrLoginRequired
	}
	return s.session.AccessToken(), nil
}
