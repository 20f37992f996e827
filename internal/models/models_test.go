package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session Session
		want    string
	}{
		{name: "first_name_wins", session: Session{FirstName: " Asha ", ScreenName: "ash", Username: "9876543210"}, want: "Asha"},
		{name: "screen_name_when_first_blank", session: Session{FirstName: "  ", ScreenName: "ash", Username: "u"}, want: "ash"},
		{name: "username_next", session: Session{Username: "9876543210", Phone: "111"}, want: "9876543210"},
		{name: "phone_last", session: Session{Phone: "9876543210"}, want: "9876543210"},
		{name: "literal_user", session: Session{}, want: "User"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.session.DisplayName())
		})
	}
}

func TestAmountUnmarshal(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
		D Amount `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"999.50","b":120,"c":null,"d":""}`), &v))
	assert.Equal(t, Amount(999.5), v.A)
	assert.Equal(t, Amount(120), v.B)
	assert.Zero(t, v.C)
	assert.Zero(t, v.D)

	var bad struct {
		A Amount `json:"a"`
	}
	require.Error(t, json.Unmarshal([]byte(`{"a":"nine"}`), &bad))

	assert.Equal(t, "Rs.1029.00", Amount(1029).String())
}

func TestFlexStringUnmarshal(t *testing.T) {
	var v struct {
		N FlexString `json:"n"`
		S FlexString `json:"s"`
		Z FlexString `json:"z"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"n":42,"s":"abc","z":null}`), &v))
	assert.Equal(t, FlexString("42"), v.N)
	assert.Equal(t, FlexString("abc"), v.S)
	assert.Equal(t, FlexString(""), v.Z)
}

func TestCartSummaryRows(t *testing.T) {
	s := CartSummary{
		Items: []CartItem{
			{ID: 7, Name: "Tee", Brand: "DNMX", UnitPrice: 499, Quantity: 2, Size: "M"},
			{ID: 8, Name: "Cap", Brand: "Puma", UnitPrice: 300, Quantity: 1},
		},
		ItemCount:      3,
		BagTotal:       1298,
		ConvenienceFee: 29,
		OrderTotal:     1327,
	}
	rows := s.Rows()
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"7", "DNMX", "Tee", "M", "2", "Rs.499.00", "Rs.998.00"}, rows[0])
	assert.Equal(t, "-", rows[1][3])
	assert.Equal(t, "Rs.1327.00", rows[4][6])
	assert.Len(t, s.Headers(), len(rows[0]))
}

func TestAddressOneLine(t *testing.T) {
	a := Address{AddressLine: "12 MG Road", Area: "Indiranagar", City: "Bengaluru", State: "KA", Pincode: "560038"}
	assert.Equal(t, "12 MG Road, Indiranagar, Bengaluru, KA - 560038", a.OneLine())

	a.Landmark = "Near Metro"
	assert.Equal(t, "12 MG Road, Indiranagar, Near Metro, Bengaluru, KA - 560038", a.OneLine())
}
