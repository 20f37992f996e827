package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/storefront/cli/internal/models"
)

const (
	defaultColorName    = "-"
	defaultColorHex     = "#f0f0f0"
	defaultVariantName  = "-"
	defaultVariantColor = "#ccc"
)

// NormalizeCart maps every cart shape the gateway has been seen to return
// onto models.Cart: {"items": [...]}, {"cart_items": [...]}, {"results": [...]}
// or a bare array. Lines without a product are dropped.
func NormalizeCart(raw []byte, baseURL string) (*models.Cart, error) {
	cart := &models.Cart{Items: []models.CartItem{}}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return cart, nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse cart: %w", err)
	}

	var lines []any
	switch v := doc.(type) {
	case []any:
		lines = v
	case map[string]any:
		lines = firstList(v, "items", "cart_items", "results")
	}

	for _, l := range lines {
		m, ok := l.(map[string]any)
		if !ok {
			continue
		}
		item, ok := normalizeCartItem(m, baseURL)
		if !ok {
			continue
		}
		cart.Items = append(cart.Items, item)
	}
	return cart, nil
}

func normalizeCartItem(m map[string]any, baseURL string) (models.CartItem, bool) {
	p, ok := m["product"].(map[string]any)
	if !ok {
		return models.CartItem{}, false
	}

	qty := int(number(m["quantity"]))
	if qty <= 0 {
		qty = 1
	}

	price := number(p["discount_price"])
	if price <= 0 {
		price = number(p["price"])
	}

	image := str(p["image"])
	if image == "" {
		if imgs := extractImages(p, baseURL); len(imgs) > 0 {
			image = imgs[0]
		}
	}

	return models.CartItem{
		ID:             int64(number(m["id"])),
		ProductID:      str(p["id"]),
		Name:           str(p["name"]),
		Brand:          brandName(p["brand"]),
		Image:          NormalizeImageURL(image, baseURL),
		UnitPrice:      models.Amount(price),
		Quantity:       qty,
		Size:           sizeLabel(m["size"]),
		AvailableSizes: sizeLabels(p["sizes"]),
	}, true
}

// NormalizeProducts maps a listing (bare array or {"results": [...]}).
func NormalizeProducts(raw []byte, baseURL string) (models.Products, error) {
	out := models.Products{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return out, nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse products: %w", err)
	}

	var list []any
	switch v := doc.(type) {
	case []any:
		list = v
	case map[string]any:
		list = firstList(v, "results", "products", "items")
	}

	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			out = append(out, normalizeProduct(m, baseURL))
		}
	}
	return out, nil
}

// NormalizeProduct maps a single product document.
func NormalizeProduct(raw []byte, baseURL string) (*models.Product, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}
	p := normalizeProduct(m, baseURL)
	return &p, nil
}

func normalizeProduct(m map[string]any, baseURL string) models.Product {
	discountPercent := number(m["discount_percent"])
	if discountPercent == 0 {
		discountPercent = number(m["discount_percentage"])
	}

	return models.Product{
		ID:              str(m["id"]),
		Name:            str(m["name"]),
		Brand:           brandName(m["brand"]),
		Price:           models.Amount(number(m["price"])),
		DiscountPrice:   models.Amount(number(m["discount_price"])),
		DiscountPercent: discountPercent,
		Images:          extractImages(m, baseURL),
		ColorName:       baseColorName(m),
		ColorHex:        baseColorHex(m),
		Sizes:           productSizes(m["sizes"]),
		Variants:        variants(m, baseURL),
	}
}

// NormalizeImageURL leaves absolute and rooted URLs alone, roots bare
// media paths, and resolves rooted paths against baseURL when one is given.
func NormalizeImageURL(u, baseURL string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return strings.TrimRight(baseURL, "/") + u
}

// extractImages accepts ["..."] or [{"image"|"url"|"src": "..."}] with a
// fallback to the single "image" field.
func extractImages(m map[string]any, baseURL string) []string {
	var list []string
	for _, e := range asList(m["images"]) {
		switch v := e.(type) {
		case string:
			list = append(list, v)
		case map[string]any:
			list = append(list, firstString(v, "image", "url", "src"))
		}
	}
	if len(list) == 0 {
		if single := str(m["image"]); single != "" {
			list = append(list, single)
		}
	}

	out := make([]string, 0, len(list))
	for _, u := range list {
		if n := NormalizeImageURL(u, baseURL); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func baseColorName(m map[string]any) string {
	if v := firstString(m, "color_name"); v != "" {
		return v
	}
	if v := nestedString(m, "base_color", "name"); v != "" {
		return v
	}
	if v := nestedString(m, "color", "name"); v != "" {
		return v
	}
	if v := firstString(m, "colour_name"); v != "" {
		return v
	}
	if v, ok := m["color"].(string); ok && v != "" {
		return v
	}
	return defaultColorName
}

func baseColorHex(m map[string]any) string {
	if v := nestedString(m, "base_color", "hex_code"); v != "" {
		return v
	}
	if v := nestedString(m, "color", "hex_code"); v != "" {
		return v
	}
	if v := firstString(m, "base_color_hex", "hex_code", "color_hex"); v != "" {
		return v
	}
	return defaultColorHex
}

func variants(m map[string]any, baseURL string) []models.ColorVariant {
	list := firstList(m, "variants", "color_variants", "variant_colors", "variant_list")
	if len(list) == 0 {
		return nil
	}

	out := make([]models.ColorVariant, 0, len(list))
	for _, e := range list {
		v, ok := e.(map[string]any)
		if !ok {
			continue
		}
		name := nestedString(v, "color", "name")
		if name == "" {
			name = firstString(v, "name")
		}
		if name == "" {
			name = defaultVariantName
		}
		hex := nestedString(v, "color", "hex_code")
		if hex == "" {
			hex = firstString(v, "hex_code")
		}
		if hex == "" {
			hex = defaultVariantColor
		}

		imgs := map[string]any{"images": v["images"]}
		if len(asList(v["images"])) == 0 {
			imgs["images"] = v["variant_images"]
		}

		out = append(out, models.ColorVariant{
			Name:   name,
			Hex:    hex,
			Images: extractImages(imgs, baseURL),
		})
	}
	return out
}

func productSizes(v any) []models.ProductSize {
	var out []models.ProductSize
	for _, e := range asList(v) {
		switch s := e.(type) {
		case map[string]any:
			label := sizeLabel(s)
			if label == "" {
				continue
			}
			out = append(out, models.ProductSize{Size: label, Stock: int(number(s["stock"]))})
		case string, float64:
			out = append(out, models.ProductSize{Size: str(s), Stock: 1})
		}
	}
	return out
}

// sizeLabel reads a size given as a string, a number or {size|value|label}.
func sizeLabel(v any) string {
	switch s := v.(type) {
	case string, float64:
		return str(s)
	case map[string]any:
		for _, k := range []string{"size", "value", "label"} {
			if l := sizeLabel(s[k]); l != "" {
				return l
			}
		}
	}
	return ""
}

func sizeLabels(v any) []string {
	var out []string
	for _, e := range asList(v) {
		if l := sizeLabel(e); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// brandName reads "brand" as a string or {"name": ...}.
func brandName(v any) string {
	switch b := v.(type) {
	case string:
		return b
	case map[string]any:
		return str(b["name"])
	}
	return ""
}

func firstList(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if l := asList(m[k]); len(l) > 0 {
			return l
		}
	}
	return nil
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func nestedString(m map[string]any, outer, inner string) string {
	o, ok := m[outer].(map[string]any)
	if !ok {
		return ""
	}
	return str(o[inner])
}

// str renders strings and numbers; everything else is "".
func str(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == math.Trunc(s) {
			return strconv.FormatFloat(s, 'f', 0, 64)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	}
	return ""
}

// number reads JSON numbers and numeric strings; everything else is 0.
func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
