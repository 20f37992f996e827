// Package catalog serves product listings and the quick-view panel.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/utils"
)

// VisibleVariants is how many colour swatches the quick view shows before
// collapsing the rest into "more".
const VisibleVariants = 3

// sizeOrder is the storefront's display order. Sizes not listed sort last.
var sizeOrder = []string{
	"XS", "S", "M", "L", "XL", "XXL", "FZ",
	"28", "30", "32", "34", "36",
	"5", "6", "7", "8", "9", "10", "11", "12",
	"0-2", "3-5", "6-7", "8-10", "11-14",
}

var sizeRank = func() map[string]int {
	m := make(map[string]int, len(sizeOrder))
	for i, s := range sizeOrder {
		m[s] = i
	}
	return m
}()

// Gateway is the product part of the storefront API.
type Gateway interface {
	Products(ctx context.Context, search string) (models.Products, error)
	Product(ctx context.Context, id string) (*models.Product, error)
}

// Cart receives quick-view additions.
type Cart interface {
	Upsert(ctx context.Context, productID, size string, quantity int) error
}

// Session reports whether a valid login exists.
type Session interface {
	IsLoggedIn() bool
}

// Service is the catalog.
type Service struct {
	gateway Gateway
	cart    Cart
	session Session
}

// New creates a catalog service.
func New(gateway Gateway, cart Cart, session Session) *Service {
	return &Service{gateway: gateway, cart: cart, session: session}
}

// List returns products matching search (all when blank).
func (s *Service) List(ctx context.Context, search string) (models.Products, error) {
	products, err := s.gateway.Products(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

// QuickView loads a product and arranges it for the quick-view panel.
func (s *Service) QuickView(ctx context.Context, id string) (*models.QuickView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, utils.NewValidationError("id", "product id is required")
	}
	p, err := s.gateway.Product(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load quick view: %w", err)
	}
	qv := BuildQuickView(*p)
	return &qv, nil
}

// BuildQuickView sorts sizes and splits variants into visible and more.
func BuildQuickView(p models.Product) models.QuickView {
	p.Sizes = SortSizes(p.Sizes)
	qv := models.QuickView{Product: p, DetailsPath: DetailsPath(p.ID)}
	if len(p.Variants) > VisibleVariants {
		qv.VisibleVariants = p.Variants[:VisibleVariants]
		qv.MoreVariants = p.Variants[VisibleVariants:]
	} else {
		qv.VisibleVariants = p.Variants
	}
	return qv
}

// SortSizes orders sizes by the storefront size order; unknown sizes go last
// and ties are broken by name. The input is not modified.
func SortSizes(sizes []models.ProductSize) []models.ProductSize {
	out := append([]models.ProductSize(nil), sizes...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i].Size), rank(out[j].Size)
		if ri != rj {
			return ri < rj
		}
		return out[i].Size < out[j].Size
	})
	return out
}

func rank(size string) int {
	if r, ok := sizeRank[strings.ToUpper(strings.TrimSpace(size))]; ok {
		return r
	}
	return len(sizeOrder)
}

// DetailsPath is the product page path for id.
func DetailsPath(id string) string {
	return "/detail/" + id + "/"
}

// AddToCart adds one unit of an in-stock size from the quick view.
func (s *Service) AddToCart(ctx context.Context, id, size string) error {
	if s.session == nil || !s.session.IsLoggedIn() {
		return utils.ErrLoginRequired
	}
	size = strings.TrimSpace(size)
	if size == "" {
		return utils.NewValidationError("size", "Please select a size")
	}

	p, err := s.gateway.Product(ctx, id)
	if err != nil {
		return fmt.Errorf("unable to load product: %w", err)
	}
	found := false
	for _, ps := range p.Sizes {
		if !strings.EqualFold(ps.Size, size) {
			continue
		}
		if !ps.InStock() {
			return utils.NewValidationError("size", fmt.Sprintf("size %s is out of stock", ps.Size))
		}
		size, found = ps.Size, true
		break
	}
	if !found && len(p.Sizes) > 0 {
		return utils.NewValidationError("size", fmt.Sprintf("size %s is not available", size))
	}

	return s.cart.Upsert(ctx, p.ID, size, 1)
}
