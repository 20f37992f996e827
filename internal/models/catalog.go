package models

import (
	"fmt"
	"strconv"
)

// Product is the normalised product used by listings and the quick view.
type Product struct {
	ID              string         `json:"id" yaml:"id"`
	Name            string         `json:"name" yaml:"name"`
	Brand           string         `json:"brand" yaml:"brand"`
	Price           Amount         `json:"price" yaml:"price"`
	DiscountPrice   Amount         `json:"discount_price,omitempty" yaml:"discount_price,omitempty"`
	DiscountPercent float64        `json:"discount_percent,omitempty" yaml:"discount_percent,omitempty"`
	Images          []string       `json:"images" yaml:"images"`
	ColorName       string         `json:"color_name" yaml:"color_name"`
	ColorHex        string         `json:"color_hex" yaml:"color_hex"`
	Sizes           []ProductSize  `json:"sizes" yaml:"sizes"`
	Variants        []ColorVariant `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// HasDiscount reports whether a positive discount price is set.
func (p Product) HasDiscount() bool {
	return p.DiscountPrice > 0
}

// FinalPrice is the discount price when present, the list price otherwise.
func (p Product) FinalPrice() Amount {
	if p.HasDiscount() {
		return p.DiscountPrice
	}
	return p.Price
}

// PrimaryImage returns the first image or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductSize is one size option with its stock.
type ProductSize struct {
	Size  string `json:"size" yaml:"size"`
	Stock int    `json:"stock" yaml:"stock"`
}

// InStock reports whether the size can be selected.
func (s ProductSize) InStock() bool {
	return s.Stock > 0
}

// ColorVariant is a colour swatch with its own images.
type ColorVariant struct {
	Name   string   `json:"name" yaml:"name"`
	Hex    string   `json:"hex" yaml:"hex"`
	Images []string `json:"images,omitempty" yaml:"images,omitempty"`
}

// Products is a listing page.
type Products []Product

// Headers implements format.Tabular
func (ps Products) Headers() []string {
	return []string{"ID", "Brand", "Name", "Price", "MRP", "Off"}
}

// Rows implements format.Tabular
func (ps Products) Rows() [][]string {
	rows := make([][]string, 0, len(ps))
	for _, p := range ps {
		mrp, off := "", ""
		if p.HasDiscount() {
			mrp = p.Price.String()
		}
		if p.DiscountPercent > 0 {
			off = strconv.FormatFloat(p.DiscountPercent, 'f', 0, 64) + "%"
		}
		rows = append(rows, []string{p.ID, p.Brand, p.Name, p.FinalPrice().String(), mrp, off})
	}
	return rows
}

// QuickView is the product as the quick-view panel presents it.
type QuickView struct {
	Product
	VisibleVariants []ColorVariant `json:"visible_variants,omitempty" yaml:"visible_variants,omitempty"`
	MoreVariants    []ColorVariant `json:"more_variants,omitempty" yaml:"more_variants,omitempty"`
	DetailsPath     string         `json:"details_path" yaml:"details_path"`
}

// Headers implements format.Tabular
func (q QuickView) Headers() []string {
	return []string{"Property", "Value"}
}

// Rows implements format.Tabular
func (q QuickView) Rows() [][]string {
	rows := [][]string{
		{"Brand", q.Brand},
		{"Name", q.Name},
		{"Price", q.FinalPrice().String()},
	}
	if q.HasDiscount() {
		rows = append(rows, []string{"MRP", q.Price.String()})
	}
	rows = append(rows, []string{"Colour", fmt.Sprintf("%s (%s)", q.ColorName, q.ColorHex)})
	for _, v := range q.VisibleVariants {
		rows = append(rows, []string{"Variant", fmt.Sprintf("%s (%s)", v.Name, v.Hex)})
	}
	if n := len(q.MoreVariants); n > 0 {
		rows = append(rows, []string{"Variants", fmt.Sprintf("+ %d more", n)})
	}
	for _, s := range q.Sizes {
		state := "available"
		if !s.InStock() {
			state = "out of stock"
		}
		rows = append(rows, []string{"Size " + s.Size, state})
	}
	for i, img := range q.Images {
		rows = append(rows, []string{fmt.Sprintf("Image %d", i+1), img})
	}
	rows = append(rows, []string{"Details", q.DetailsPath})
	return rows
}
