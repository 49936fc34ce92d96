package address

import (
	"testing"

	"bestea-be/internal/apperr"
	"bestea-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAddress() Address {
	return Address{
		Name:         "Asha Rao",
		Phone:        "9876543210",
		AddressLine1: "12 Tea Garden Road",
		City:         "Siliguri",
		State:        "West Bengal",
		Pincode:      "734001",
	}
}

func TestNormalize(t *testing.T) {
	a := Address{
		Name:         "  Asha Rao ",
		Phone:        "+91 98765-43210",
		AddressLine1: " 12 Tea Garden Road ",
		AddressLine2: utils.StrPtr("   "),
		City:         "Siliguri ",
		State:        " West Bengal",
		Pincode:      " 734001 ",
		Landmark:     utils.StrPtr(" near the station "),
	}.Normalize()

	assert.Equal(t, "Asha Rao", a.Name)
	assert.Equal(t, "9876543210", a.Phone)
	assert.Nil(t, a.AddressLine2)
	require.NotNil(t, a.Landmark)
	assert.Equal(t, "near the station", *a.Landmark)
	assert.NoError(t, a.Validate())
}

func TestNormalize_PhoneVariants(t *testing.T) {
	tests := map[string]string{
		"09876543210":     "9876543210",
		"(987) 654 3210":  "9876543210",
		"+91-98765-43210": "9876543210",
		"+1 415 555 0100": "+14155550100",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Address{Phone: in}.Normalize().Phone)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validAddress().Validate())

	tests := []struct {
		name   string
		mutate func(a *Address)
		field  string
	}{
		{"missing name", func(a *Address) { a.Name = "" }, "name"},
		{"missing line 1", func(a *Address) { a.AddressLine1 = "" }, "addressLine1"},
		{"missing city", func(a *Address) { a.City = "" }, "city"},
		{"missing state", func(a *Address) { a.State = "" }, "state"},
		{"missing phone", func(a *Address) { a.Phone = "" }, "phone"},
		{"short phone", func(a *Address) { a.Phone = "98765" }, "phone"},
		{"landline prefix", func(a *Address) { a.Phone = "1234567890" }, "phone"},
		{"short pincode", func(a *Address) { a.Pincode = "7340" }, "pincode"},
		{"alpha pincode", func(a *Address) { a.Pincode = "73400A" }, "pincode"},
		{"leading zero pincode", func(a *Address) { a.Pincode = "034001" }, "pincode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAddress()
			tt.mutate(&a)

			err := a.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAddress)

			e, ok := apperr.From(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			fields := e.Details["fields"].(map[string]string)
			assert.Contains(t, fields, tt.field)
			assert.Len(t, fields, 1)
		})
	}
}
