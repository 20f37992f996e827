// Package wishlist keeps the local-only wishlist in storage under a single
// JSON-encoded key.
package wishlist

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/storage"
	"github.com/storefront/cli/internal/utils"
)

// StorageKey holds the JSON array of entries.
const StorageKey = "wishlist_items"

// Store is the wishlist over a storage.Store.
type Store struct {
	store  storage.Store
	logger *zap.Logger
}

// New creates a wishlist store.
func New(store storage.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{store: store, logger: logger}
}

// List returns the entries, oldest first. A missing or unreadable value is an
// empty list.
func (s *Store) List() models.Wishlist {
	raw, ok := s.store.Get(StorageKey)
	if !ok || strings.TrimSpace(raw) == "" {
		return models.Wishlist{}
	}
	var list models.Wishlist
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn("ignoring unreadable wishlist", zap.Error(err))
		return models.Wishlist{}
	}
	if list == nil {
		return models.Wishlist{}
	}
	return list
}

// Upsert stores entry, replacing any entry with the same id. The entry
// always ends up last.
func (s *Store) Upsert(entry models.WishlistEntry) error {
	entry.ID = strings.TrimSpace(entry.ID)
	if entry.ID == "" {
		return utils.NewValidationError("id", "product id is required")
	}

	list := s.without(s.List(), entry.ID)
	list = append(list, entry)
	return s.save(list)
}

// Remove deletes the entry with id. Unknown ids are ignored.
func (s *Store) Remove(id string) error {
	list := s.List()
	kept := s.without(list, strings.TrimSpace(id))
	if len(kept) == len(list) {
		return nil
	}
	return s.save(kept)
}

// Count returns the number of entries.
func (s *Store) Count() int {
	return len(s.List())
}

// Find returns the entry with id.
func (s *Store) Find(id string) (models.WishlistEntry, bool) {
	id = strings.TrimSpace(id)
	for _, e := range s.List() {
		if e.ID == id {
			return e, true
		}
	}
	return models.WishlistEntry{}, false
}

// Contains reports whether id is wishlisted.
func (s *Store) Contains(id string) bool {
	_, ok := s.Find(id)
	return ok
}

func (s *Store) without(list models.Wishlist, id string) models.Wishlist {
	out := make(models.Wishlist, 0, len(list))
	for _, e := range list {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) save(list models.Wishlist) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode wishlist: %w", err)
	}
	if err := s.store.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to save wishlist: %w", err)
	}
	return nil
}
