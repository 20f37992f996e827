package models

import (
	"fmt"
	"strconv"
	"strings"
)

// CartItem is one normalised bag line.
type CartItem struct {
	ID             int64    `json:"id" yaml:"id"`
	ProductID      string   `json:"product_id" yaml:"product_id"`
	Name           string   `json:"name" yaml:"name"`
	Brand          string   `json:"brand" yaml:"brand"`
	Image          string   `json:"image" yaml:"image"`
	UnitPrice      Amount   `json:"unit_price" yaml:"unit_price"`
	Quantity       int      `json:"quantity" yaml:"quantity"`
	Size           string   `json:"size,omitempty" yaml:"size,omitempty"`
	AvailableSizes []string `json:"available_sizes,omitempty" yaml:"available_sizes,omitempty"`
}

// LineTotal is unit price times quantity.
func (i CartItem) LineTotal() Amount {
	return i.UnitPrice * Amount(i.Quantity)
}

// Cart is the normalised bag.
type Cart struct {
	Items []CartItem `json:"items" yaml:"items"`
}

// CartSummary is the bag plus its computed totals.
type CartSummary struct {
	Items          []CartItem `json:"items" yaml:"items"`
	ItemCount      int        `json:"item_count" yaml:"item_count"`
	BagTotal       Amount     `json:"bag_total" yaml:"bag_total"`
	ConvenienceFee Amount     `json:"convenience_fee" yaml:"convenience_fee"`
	OrderTotal     Amount     `json:"order_total" yaml:"order_total"`
}

// Headers implements format.Tabular
func (s CartSummary) Headers() []string {
	return []string{"Item", "Brand", "Name", "Size", "Qty", "Price", "Total"}
}

// Rows implements format.Tabular
func (s CartSummary) Rows() [][]string {
	rows := make([][]string, 0, len(s.Items)+3)
	for _, it := range s.Items {
		size := it.Size
		if size == "" {
			size = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(it.ID, 10),
			it.Brand,
			it.Name,
			size,
			strconv.Itoa(it.Quantity),
			it.UnitPrice.String(),
			it.LineTotal().String(),
		})
	}
	rows = append(rows,
		[]string{"", "", "Bag total", "", strconv.Itoa(s.ItemCount), "", s.BagTotal.String()},
		[]string{"", "", "Convenience fee", "", "", "", s.ConvenienceFee.String()},
		[]string{"", "", "Order total", "", "", "", s.OrderTotal.String()},
	)
	return rows
}

// Address is a saved shipping address.
type Address struct {
	ID          int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Mobile      string `json:"mobile" yaml:"mobile"`
	Pincode     string `json:"pincode" yaml:"pincode"`
	Area        string `json:"area" yaml:"area"`
	AddressLine string `json:"address_line" yaml:"address_line"`
	Landmark    string `json:"landmark,omitempty" yaml:"landmark,omitempty"`
	City        string `json:"city" yaml:"city"`
	State       string `json:"state" yaml:"state"`
	Type        string `json:"type" yaml:"type"`
	IsDefault   bool   `json:"is_default" yaml:"is_default"`
}

// OneLine renders the address the way the shipping page lists it.
func (a Address) OneLine() string {
	parts := []string{a.AddressLine, a.Area}
	if a.Landmark != "" {
		parts = append(parts, a.Landmark)
	}
	parts = append(parts, a.City, fmt.Sprintf("%s - %s", a.State, a.Pincode))
	return strings.Join(parts, ", ")
}

// Addresses is an address book listing.
type Addresses []Address

// Headers implements format.Tabular
func (as Addresses) Headers() []string {
	return []string{"ID", "Name", "Mobile", "Type", "Default", "Address"}
}

// Rows implements format.Tabular
func (as Addresses) Rows() [][]string {
	rows := make([][]string, 0, len(as))
	for _, a := range as {
		def := ""
		if a.IsDefault {
			def = "yes"
		}
		rows = append(rows, []string{strconv.FormatInt(a.ID, 10), a.Name, a.Mobile, a.Type, def, a.OneLine()})
	}
	return rows
}

// Order is the response of order creation.
type Order struct {
	OrderID FlexString `json:"order_id" yaml:"order_id"`
	Message string     `json:"message,omitempty" yaml:"message,omitempty"`
}

// ShippingSummary is what the shipping page shows before payment.
type ShippingSummary struct {
	Addresses Addresses   `json:"addresses" yaml:"addresses"`
	Cart      CartSummary `json:"cart" yaml:"cart"`
}
