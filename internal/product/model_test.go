package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teaWithVariants() *Product {
	return &Product{
		Name:  "Darjeeling First Flush",
		Price: 450,
		Stock: 0,
		Variants: []Variant{
			{Name: "100g", Price: 450, Stock: 10},
			{Name: "250g", Price: 990, Stock: 4, IsDefault: true},
		},
	}
}

func TestProduct_ResolveVariant(t *testing.T) {
	t.Run("Default when unnamed", func(t *testing.T) {
		v, err := teaWithVariants().ResolveVariant("")
		require.NoError(t, err)
		assert.Equal(t, "250g", v.Name)
	})

	t.Run("Named case insensitive", func(t *testing.T) {
		v, err := teaWithVariants().ResolveVariant(" 100G ")
		require.NoError(t, err)
		assert.Equal(t, int64(450), v.Price)
	})

	t.Run("Unknown name", func(t *testing.T) {
		_, err := teaWithVariants().ResolveVariant("1kg")
		assert.ErrorIs(t, err, ErrVariantNotFound)
	})

	t.Run("No variants", func(t *testing.T) {
		p := &Product{Price: 300, Stock: 7}

		v, err := p.ResolveVariant("")
		require.NoError(t, err)
		assert.Nil(t, v)
		assert.Equal(t, int64(300), p.UnitPrice(v))
		assert.Equal(t, 7, p.Available(v))

		_, err = p.ResolveVariant("50g")
		assert.ErrorIs(t, err, ErrVariantNotFound)
	})
}

func TestProduct_DefaultVariant(t *testing.T) {
	p := teaWithVariants()
	p.Variants[1].IsDefault = false

	v := p.DefaultVariant()
	require.NotNil(t, v)
	assert.Equal(t, "100g", v.Name)

	assert.Nil(t, (&Product{}).DefaultVariant())
}

func TestProduct_PriceAndStockFollowVariant(t *testing.T) {
	p := teaWithVariants()
	v, err := p.ResolveVariant("250g")
	require.NoError(t, err)

	assert.Equal(t, int64(990), p.UnitPrice(v))
	assert.Equal(t, 4, p.Available(v))
}
