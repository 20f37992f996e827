package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/cli/internal/models"
)

func TestNormalizeCart_Shapes(t *testing.T) {
	t.Parallel()

	line := `{"id": 7, "quantity": 2, "size": "M",
		"product": {"id": 11, "name": "Tee", "brand": "DNMX", "image": "/media/tee.jpg",
		"price": "999.00", "discount_price": "499.00", "sizes": ["S", {"size": "M"}, {"value": "L"}, {"label": 32}, 40]}}`

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "items", raw: `{"id": 1, "items": [` + line + `]}`, want: 1},
		{name: "cart_items", raw: `{"cart_items": [` + line + `]}`, want: 1},
		{name: "results", raw: `{"results": [` + line + `]}`, want: 1},
		{name: "bare_array", raw: `[` + line + `]`, want: 1},
		{name: "empty_object", raw: `{}`, want: 0},
		{name: "empty_body", raw: ``, want: 0},
		{name: "null", raw: `null`, want: 0},
		{name: "line_without_product", raw: `{"items": [{"id": 3, "quantity": 1}, ` + line + `]}`, want: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cart, err := NormalizeCart([]byte(tt.raw), "http://shop.test")
			require.NoError(t, err)
			require.Len(t, cart.Items, tt.want)
			if tt.want == 0 {
				return
			}
			it := cart.Items[0]
			assert.Equal(t, int64(7), it.ID)
			assert.Equal(t, "11", it.ProductID)
			assert.Equal(t, "Tee", it.Name)
			assert.Equal(t, "DNMX", it.Brand)
			assert.Equal(t, "http://shop.test/media/tee.jpg", it.Image)
			assert.Equal(t, models.Amount(499), it.UnitPrice)
			assert.Equal(t, 2, it.Quantity)
			assert.Equal(t, "M", it.Size)
			assert.Equal(t, []string{"S", "M", "L", "32", "40"}, it.AvailableSizes)
		})
	}
}

func TestNormalizeCart_Defaults(t *testing.T) {
	cart, err := NormalizeCart([]byte(`{"items":[{"id":1,"product":{"id":"p","price":300,"brand":{"name":"Puma"},"images":[{"url":"media/a.png"}]}}]}`), "")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	it := cart.Items[0]
	assert.Equal(t, 1, it.Quantity)
	assert.Equal(t, models.Amount(300), it.UnitPrice)
	assert.Equal(t, "Puma", it.Brand)
	assert.Equal(t, "/media/a.png", it.Image)
	assert.Empty(t, it.Size)

	_, err = NormalizeCart([]byte(`{"items":`), "")
	require.Error(t, err)
}

func TestNormalizeProduct_QuickViewFields(t *testing.T) {
	raw := `{
		"id": 5, "name": "Kurta", "brand": "Avaasa", "price": "1299.00", "discount_price": "649.50",
		"image": "/media/k0.jpg",
		"images": ["/media/k1.jpg", {"image": "media/k2.jpg"}, {"src": "https://cdn.test/k3.jpg"}, {"nothing": true}],
		"base_color": {"name": "Indigo", "hex_code": "#3f51b5"},
		"sizes": [{"size": "M", "stock": 2}, {"size": "XS", "stock": 0}],
		"variants": [
			{"color": {"name": "Red", "hex_code": "#f00"}, "images": ["/media/r.jpg"]},
			{"name": "Green", "variant_images": [{"url": "/media/g.jpg"}]},
			{}
		]
	}`
	p, err := NormalizeProduct([]byte(raw), "http://shop.test")
	require.NoError(t, err)

	assert.Equal(t, "5", p.ID)
	assert.Equal(t, "Avaasa", p.Brand)
	assert.Equal(t, models.Amount(649.5), p.FinalPrice())
	assert.True(t, p.HasDiscount())
	assert.Equal(t, []string{
		"http://shop.test/media/k1.jpg",
		"http://shop.test/media/k2.jpg",
		"https://cdn.test/k3.jpg",
	}, p.Images)
	assert.Equal(t, "Indigo", p.ColorName)
	assert.Equal(t, "#3f51b5", p.ColorHex)
	require.Len(t, p.Sizes, 2)
	assert.False(t, p.Sizes[1].InStock())

	require.Len(t, p.Variants, 3)
	assert.Equal(t, models.ColorVariant{Name: "Red", Hex: "#f00", Images: []string{"http://shop.test/media/r.jpg"}}, p.Variants[0])
	assert.Equal(t, "Green", p.Variants[1].Name)
	assert.Equal(t, "#ccc", p.Variants[1].Hex)
	assert.Equal(t, []string{"http://shop.test/media/g.jpg"}, p.Variants[1].Images)
	assert.Equal(t, "-", p.Variants[2].Name)
}

func TestNormalizeProduct_ColorFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantName string
		wantHex  string
	}{
		{name: "color_name_field", raw: `{"color_name": "Black", "hex_code": "#000"}`, wantName: "Black", wantHex: "#000"},
		{name: "nested_color", raw: `{"color": {"name": "Teal", "hex_code": "#008080"}}`, wantName: "Teal", wantHex: "#008080"},
		{name: "colour_name", raw: `{"colour_name": "Mauve", "color_hex": "#e0b0ff"}`, wantName: "Mauve", wantHex: "#e0b0ff"},
		{name: "color_string", raw: `{"color": "Olive"}`, wantName: "Olive", wantHex: "#f0f0f0"},
		{name: "nothing", raw: `{}`, wantName: "-", wantHex: "#f0f0f0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NormalizeProduct([]byte(tt.raw), "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.ColorName)
			assert.Equal(t, tt.wantHex, p.ColorHex)
		})
	}
}

func TestNormalizeProducts(t *testing.T) {
	ps, err := NormalizeProducts([]byte(`[{"id":1,"name":"A","brand":{"name":"B"},"price":100,"discount_percentage":10,"images":[{"image":"/m/a.jpg"}]}]`), "")
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "B", ps[0].Brand)
	assert.Equal(t, 10.0, ps[0].DiscountPercent)
	assert.Equal(t, "/m/a.jpg", ps[0].PrimaryImage())

	ps, err = NormalizeProducts([]byte(`{"results":[{"id":"x"}]}`), "")
	require.NoError(t, err)
	require.Len(t, ps, 1)
}

func TestNormalizeImageURL(t *testing.T) {
	assert.Equal(t, "", NormalizeImageURL("  ", "http://a"))
	assert.Equal(t, "https://cdn/x.png", NormalizeImageURL("https://cdn/x.png", "http://a"))
	assert.Equal(t, "/media/x.png", NormalizeImageURL("media/x.png", ""))
	assert.Equal(t, "http://a/media/x.png", NormalizeImageURL("/media/x.png", "http://a/"))
}
