package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/cli/internal/models"
	"github.com/storefront/cli/internal/utils"
)

type fakeGateway struct {
	products models.Products
	err      error
	search   string
}

func (f *fakeGateway) Products(_ context.Context, search string) (models.Products, error) {
	f.search = search
	return f.products, f.err
}

func (f *fakeGateway) Product(_ context.Context, id string) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, utils.NewGatewayError(404, "Not found")
}

type addCall struct {
	id, size string
	qty      int
}

type fakeCart struct{ calls []addCall }

func (f *fakeCart) Upsert(_ context.Context, id, size string, qty int) error {
	f.calls = append(f.calls, addCall{id, size, qty})
	return nil
}

type loggedIn bool

func (l loggedIn) IsLoggedIn() bool { return bool(l) }

func sizes(names ...string) []models.ProductSize {
	out := make([]models.ProductSize, len(names))
	for i, n := range names {
		out[i] = models.ProductSize{Size: n, Stock: 1}
	}
	return out
}

func names(ss []models.ProductSize) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Size
	}
	return out
}

func TestSortSizes(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "apparel", in: []string{"XL", "S", "FZ", "M", "XS"}, want: []string{"XS", "S", "M", "XL", "FZ"}},
		{name: "waist", in: []string{"34", "28", "XXL"}, want: []string{"XXL", "28", "34"}},
		{name: "kids", in: []string{"11-14", "0-2", "6-7"}, want: []string{"0-2", "6-7", "11-14"}},
		{name: "unknown_last_by_name", in: []string{"ZZ", "M", "AA", "40"}, want: []string{"M", "40", "AA", "ZZ"}},
		{name: "lowercase_known", in: []string{"l", "s"}, want: []string{"s", "l"}},
		{name: "empty", in: nil, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sizes(tt.in...)
			got := SortSizes(in)
			assert.Equal(t, tt.want, names(got))
			if len(tt.in) > 0 {
				assert.Equal(t, tt.in, names(in), "input reordered")
			}
		})
	}
}

func TestBuildQuickView(t *testing.T) {
	variants := []models.ColorVariant{{Name: "Red"}, {Name: "Blue"}, {Name: "Green"}, {Name: "Black"}, {Name: "White"}}
	qv := BuildQuickView(models.Product{ID: "5", Sizes: sizes("L", "S"), Variants: variants})

	assert.Equal(t, "/detail/5/", qv.DetailsPath)
	assert.Equal(t, []string{"S", "L"}, names(qv.Sizes))
	assert.Len(t, qv.VisibleVariants, 3)
	assert.Equal(t, []models.ColorVariant{{Name: "Black"}, {Name: "White"}}, qv.MoreVariants)

	few := BuildQuickView(models.Product{ID: "6", Variants: variants[:2]})
	assert.Len(t, few.VisibleVariants, 2)
	assert.Empty(t, few.MoreVariants)
}

func TestQuickView(t *testing.T) {
	gw := &fakeGateway{products: models.Products{{ID: "5", Name: "Kurta", Sizes: sizes("M", "XS")}}}
	svc := New(gw, &fakeCart{}, loggedIn(false))

	qv, err := svc.QuickView(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, "Kurta", qv.Name)
	assert.Equal(t, []string{"XS", "M"}, names(qv.Sizes))

	_, err = svc.QuickView(context.Background(), "404")
	assert.True(t, utils.IsNotFoundError(err))

	_, err = svc.QuickView(context.Background(), " ")
	assert.True(t, utils.IsValidationError(err))
}

func TestList(t *testing.T) {
	gw := &fakeGateway{products: models.Products{{ID: "1"}, {ID: "2"}}}
	svc := New(gw, nil, nil)
	ps, err := svc.List(context.Background(), "kurta")
	require.NoError(t, err)
	assert.Len(t, ps, 2)
	assert.Equal(t, "kurta", gw.search)

	gw.err = errors.New("down")
	_, err = svc.List(context.Background(), "")
	assert.Error(t, err)
}

func TestAddToCart(t *testing.T) {
	product := models.Product{ID: "5", Sizes: []models.ProductSize{{Size: "M", Stock: 3}, {Size: "L", Stock: 0}}}
	gw := &fakeGateway{products: models.Products{product}}

	t.Run("login_required", func(t *testing.T) {
		cart := &fakeCart{}
		err := New(gw, cart, loggedIn(false)).AddToCart(context.Background(), "5", "M")
		assert.ErrorIs(t, err, utils.ErrLoginRequired)
		assert.Empty(t, cart.calls)
	})

	t.Run("size_required", func(t *testing.T) {
		err := New(gw, &fakeCart{}, loggedIn(true)).AddToCart(context.Background(), "5", "")
		assert.True(t, utils.IsValidationError(err))
	})

	t.Run("out_of_stock", func(t *testing.T) {
		err := New(gw, &fakeCart{}, loggedIn(true)).AddToCart(context.Background(), "5", "L")
		assert.True(t, utils.IsValidationError(err))
	})

	t.Run("unknown_size", func(t *testing.T) {
		err := New(gw, &fakeCart{}, loggedIn(true)).AddToCart(context.Background(), "5", "XXL")
		assert.True(t, utils.IsValidationError(err))
	})

	t.Run("adds_one_unit", func(t *testing.T) {
		cart := &fakeCart{}
		require.NoError(t, New(gw, cart, loggedIn(true)).AddToCart(context.Background(), "5", "m"))
		assert.Equal(t, []addCall{{id: "5", size: "M", qty: 1}}, cart.calls)
	})
}
