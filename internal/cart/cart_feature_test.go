package cart

import (
	"context"
	"fmt"
	"testing"

	"bestea-be/internal/apperr"
	"bestea-be/internal/pricing"
	"bestea-be/internal/product"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

type cartTestContext struct {
	store    *Store
	products map[string]*product.Product
	err      error
}

func (c *cartTestContext) reset() {
	c.store = newTestStore()
	c.products = map[string]*product.Product{}
	c.err = nil
}

func (c *cartTestContext) aProductPriced(name string, price int) error {
	c.products[name] = &product.Product{ID: uuid.New(), Name: name, Price: int64(price), Stock: 100, Active: true}
	return nil
}

func (c *cartTestContext) theCustomerAdds(qty int, name string) error {
	p, ok := c.products[name]
	if !ok {
		return fmt.Errorf("unknown product %q", name)
	}
	return c.store.Add(context.Background(), p, nil, qty)
}

func (c *cartTestContext) theCustomerSetsTheQuantityOf(name string, qty int) error {
	p, ok := c.products[name]
	if !ok {
		return fmt.Errorf("unknown product %q", name)
	}
	if !c.store.UpdateQuantity(ItemKey(p.ID, nil), qty) {
		return fmt.Errorf("%q is not in the cart", name)
	}
	return nil
}

func (c *cartTestContext) theCustomerAppliesCoupon(code string) error {
	c.err = c.store.ApplyCoupon(context.Background(), code)
	return nil
}

func (c *cartTestContext) totals() pricing.Totals {
	return c.store.State().Totals
}

func expectAmount(label string, got int64, want int) error {
	if got != int64(want) {
		return fmt.Errorf("expected %s %d, got %d", label, want, got)
	}
	return nil
}

func (c *cartTestContext) theSubtotalIs(want int) error {
	return expectAmount("subtotal", c.totals().Subtotal, want)
}

func (c *cartTestContext) theShippingIs(want int) error {
	return expectAmount("shipping", c.totals().Shipping, want)
}

func (c *cartTestContext) theTaxIs(want int) error {
	return expectAmount("tax", c.totals().Tax, want)
}

func (c *cartTestContext) theDiscountIs(want int) error {
	return expectAmount("discount", c.totals().Discount, want)
}

func (c *cartTestContext) theTotalIs(want int) error {
	return expectAmount("total", c.totals().Total, want)
}

func (c *cartTestContext) theCouponResultIs(want string) error {
	if want == "applied" {
		if c.err != nil {
			return fmt.Errorf("expected coupon to apply, got %v", c.err)
		}
		if c.store.State().Coupon == nil {
			return fmt.Errorf("coupon not stored on the cart")
		}
		return nil
	}

	e, ok := apperr.From(c.err)
	if !ok {
		return fmt.Errorf("expected %s, got %v", want, c.err)
	}
	if e.Code != want {
		return fmt.Errorf("expected %s, got %s", want, e.Code)
	}
	if c.store.State().Coupon != nil {
		return fmt.Errorf("rejected coupon was stored")
	}
	return nil
}

func (c *cartTestContext) theCartIsEmpty() error {
	if !c.store.State().IsEmpty() {
		return fmt.Errorf("expected empty cart")
	}
	return nil
}

func InitializeCartScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a product "([^"]*)" priced (\d+)$`, tc.aProductPriced)

	// When steps
	ctx.Step(`^the customer adds (\d+) of "([^"]*)"$`, tc.theCustomerAdds)
	ctx.Step(`^the customer sets the quantity of "([^"]*)" to (\d+)$`, tc.theCustomerSetsTheQuantityOf)
	ctx.Step(`^the customer applies coupon "([^"]*)"$`, tc.theCustomerAppliesCoupon)

	// Then steps
	ctx.Step(`^the subtotal is (\d+)$`, tc.theSubtotalIs)
	ctx.Step(`^the shipping is (\d+)$`, tc.theShippingIs)
	ctx.Step(`^the tax is (\d+)$`, tc.theTaxIs)
	ctx.Step(`^the discount is (\d+)$`, tc.theDiscountIs)
	ctx.Step(`^the total is (\d+)$`, tc.theTotalIs)
	ctx.Step(`^the coupon result is "([^"]*)"$`, tc.theCouponResultIs)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
}

func TestCartFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeCartScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
