package models

// WishlistEntry is a product saved locally, keyed by product id.
type WishlistEntry struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Brand string `json:"brand" yaml:"brand"`
	Price string `json:"price" yaml:"price"`
	Image string `json:"image" yaml:"image"`
	Size  string `json:"size,omitempty" yaml:"size,omitempty"`
}

// Wishlist is the stored list, oldest first.
type Wishlist []WishlistEntry

// Headers implements format.Tabular
func (w Wishlist) Headers() []string {
	return []string{"ID", "Brand", "Name", "Price", "Size"}
}

// Rows implements format.Tabular
func (w Wishlist) Rows() [][]string {
	rows := make([][]string, 0, len(w))
	for _, e := range w {
		size := e.Size
		if size == "" {
			size = "-"
		}
		rows = append(rows, []string{e.ID, e.Brand, e.Name, e.Price, size})
	}
	return rows
}
