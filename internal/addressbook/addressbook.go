// Package addressbook manages the saved shipping addresses.
package addressbook

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/utils"
)

// Address types accepted by the gateway.
const (
	TypeHome  = "HOME"
	TypeWork  = "WORK"
	TypeOther = "OTHER"
)

// Gateway is the address part of the storefront API.
type Gateway interface {
	Addresses(ctx context.Context, token string) (models.Addresses, error)
	AddAddress(ctx context.Context, token string, a models.Address) (*models.Address, error)
	UpdateAddress(ctx context.Context, token string, id int64, a models.Address) (*models.Address, error)
	DeleteAddress(ctx context.Context, token string, id int64) error
}

// Session supplies the bearer token.
type Session interface {
	AccessToken() string
	IsLoggedIn() bool
}

// Book is the address book.
type Book struct {
	gateway Gateway
	session Session
	logger  *zap.Logger
}

// New creates an address book.
func New(gateway Gateway, session Session, logger *zap.Logger) *Book {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Book{gateway: gateway, session: session, logger: logger}
}

// List returns the addresses with the default one first.
func (b *Book) List(ctx context.Context) (models.Addresses, error) {
	token, err := b.token()
	if err != nil {
		return nil, err
	}
	list, err := b.gateway.Addresses(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].IsDefault && !list[j].IsDefault
	})
	return list, nil
}

// Add validates and saves a new address.
func (b *Book) Add(ctx context.Context, a models.Address) (*models.Address, error) {
	token, err := b.token()
	if err != nil {
		return nil, err
	}
	a = Normalize(a)
	if err := Validate(a); err != nil {
		return nil, err
	}
	saved, err := b.gateway.AddAddress(ctx, token, a)
	if err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}
	b.logger.Debug("address added", zap.Int64("id", saved.ID))
	return saved, nil
}

// Update validates and replaces the address with id.
func (b *Book) Update(ctx context.Context, id int64, a models.Address) (*models.Address, error) {
	token, err := b.token()
	if err != nil {
		return nil, err
	}
	a = Normalize(a)
	a.ID = id
	if err := Validate(a); err != nil {
		return nil, err
	}
	saved, err := b.gateway.UpdateAddress(ctx, token, id, a)
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return saved, nil
}

// Delete removes the address with id.
func (b *Book) Delete(ctx context.Context, id int64) error {
	token, err := b.token()
	if err != nil {
		return err
	}
	if err := b.gateway.DeleteAddress(ctx, token, id); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}

// Find returns the address with id, or a ValidationError.
func (b *Book) Find(ctx context.Context, id int64) (*models.Address, error) {
	list, err := b.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, utils.NewValidationError("address", fmt.Sprintf("no address with id %d", id))
}

// Normalize trims every field and upper-cases the type (HOME when blank).
func Normalize(a models.Address) models.Address {
	a.Name = strings.TrimSpace(a.Name)
	a.Mobile = strings.TrimSpace(a.Mobile)
	a.Pincode = strings.TrimSpace(a.Pincode)
	a.Area = strings.TrimSpace(a.Area)
	a.AddressLine = strings.TrimSpace(a.AddressLine)
	a.Landmark = strings.TrimSpace(a.Landmark)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Type = strings.ToUpper(strings.TrimSpace(a.Type))
	if a.Type == "" {
		a.Type = TypeHome
	}
	return a
}

// Validate reports every invalid field at once.
func Validate(a models.Address) error {
	errs := utils.NewMultiError()
	errs.Add(utils.ValidateRequired(a.Name, "name"))
	errs.Add(utils.ValidateMobile(a.Mobile))
	errs.Add(utils.ValidatePincode(a.Pincode))
	errs.Add(utils.ValidateRequired(a.Area, "area"))
	errs.Add(utils.ValidateRequired(a.AddressLine, "address_line"))
	errs.Add(utils.ValidateRequired(a.City, "city"))
	errs.Add(utils.ValidateRequired(a.State, "state"))
	errs.Add(utils.ValidateOneOf(a.Type, "type", TypeHome, TypeWork, TypeOther))
	return errs.ErrOrNil()
}

func (b *Book) token() (string, error) {
	if !b.session.IsLoggedIn() {
		return "", utils.ErrLoginRequired
	}
	return b.session.AccessToken(), nil
}
