package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/voucher-flow/internal/domain/catalog"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/domain/form"
)

func newCart(t *testing.T) CartService {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return NewCartService(cat, nopLogger{})
}

func TestCartService(t *testing.T) {
	cart := newCart(t)
	rahim := WithCurrentUser(context.Background(), &entity.User{PIN: "1001"})
	fatema := WithCurrentUser(context.Background(), &entity.User{PIN: "1002"})

	first, err := cart.Add(rahim, entity.CartItem{VoucherTypeID: "conveyance", Data: map[string]any{"amount": 80}})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "যাতায়াত ভাতা", first.VoucherHeading)
	assert.Len(t, first.VoucherNumber, 6)
	assert.False(t, first.CreatedAt.IsZero())

	demand, err := cart.Add(rahim, entity.CartItem{VoucherTypeID: entity.VoucherTypePettyCashDemand})
	require.NoError(t, err)
	assert.Len(t, demand.VoucherNumber, 4)

	_, err = cart.Add(fatema, entity.CartItem{VoucherTypeID: "training-allowance"})
	require.NoError(t, err)

	t.Run("carts are per user", func(t *testing.T) {
		n, err := cart.Count(rahim)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		n, err = cart.Count(fatema)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		assert.ErrorIs(t, cart.Remove(fatema, first.ID), ErrCartItemNotFound)
	})

	t.Run("update merges and deletes keys", func(t *testing.T) {
		updated, err := cart.Update(rahim, first.ID, map[string]any{"amount": 95, "from": "মিরপুর"})
		require.NoError(t, err)
		assert.Equal(t, 95, updated.Data["amount"])

		updated, err = cart.Update(rahim, first.ID, map[string]any{"from": nil})
		require.NoError(t, err)
		assert.NotContains(t, updated.Data, "from")
		assert.Equal(t, 95, updated.Data["amount"])
	})

	t.Run("returned items are copies", func(t *testing.T) {
		items, err := cart.List(rahim)
		require.NoError(t, err)
		items[0].Data["amount"] = 1

		items, err = cart.List(rahim)
		require.NoError(t, err)
		assert.Equal(t, 95, items[0].Data["amount"])
	})

	t.Run("unknown and group types are refused", func(t *testing.T) {
		_, err := cart.Add(rahim, entity.CartItem{VoucherTypeID: "nope"})
		assert.ErrorIs(t, err, ErrUnknownVoucherType)
		_, err = cart.Add(rahim, entity.CartItem{VoucherTypeID: "office-expense"})
		assert.ErrorIs(t, err, ErrUnknownVoucherType)
	})

	t.Run("remove and clear", func(t *testing.T) {
		require.NoError(t, cart.Remove(rahim, demand.ID))
		n, _ := cart.Count(rahim)
		assert.Equal(t, 1, n)

		require.NoError(t, cart.Clear(rahim))
		n, _ = cart.Count(rahim)
		assert.Zero(t, n)
		n, _ = cart.Count(fatema)
		assert.Equal(t, 1, n)
	})

	t.Run("anonymous callers", func(t *testing.T) {
		_, err := cart.List(context.Background())
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestFormService(t *testing.T) {
	cart := newCart(t)
	cat, err := catalog.Default()
	require.NoError(t, err)
	forms := NewFormService(cat, cart, nopLogger{})
	ctx := WithCurrentUser(context.Background(), &entity.User{PIN: "1001"})

	t.Run("describe reveals conditional fields", func(t *testing.T) {
		view, err := forms.Describe("conveyance", form.Values{"transport": "অন্যান্য", "meal": "সকাল"})
		require.NoError(t, err)

		names := make([]string, 0, len(view.Active))
		for _, f := range view.Active {
			names = append(names, f.Name)
		}
		assert.Contains(t, names, "transportDetail")
		assert.Contains(t, names, "mealAmount")
		assert.NotContains(t, names, "busName")

		rule, ok := form.Schema{Rules: view.Rules}.Rule("mealAmount")
		require.True(t, ok)
		require.NotNil(t, rule.Max)
		assert.Equal(t, 220.0, *rule.Max)
		assert.Contains(t, view.Widgets, "transport")
	})

	t.Run("group types have no form", func(t *testing.T) {
		_, err := forms.Describe("office-expense", nil)
		assert.ErrorIs(t, err, ErrUnknownVoucherType)
		_, err = forms.VoucherType("missing")
		assert.ErrorIs(t, err, ErrUnknownVoucherType)
	})

	valid := form.Values{
		"travelDate": "2025-02-10",
		"from":       "মিরপুর",
		"to":         "মতিঝিল",
		"transport":  "বাস",
		"busName":    "বিকাশ পরিবহন",
		"amount":     "৬০",
	}

	t.Run("submit prunes and resets", func(t *testing.T) {
		item, reset, err := forms.SubmitToCart(ctx, "conveyance", valid)
		require.NoError(t, err)
		assert.Equal(t, "বিকাশ পরিবহন", item.Data["busName"])
		assert.Empty(t, reset["from"])

		edited, err := forms.EditCartItem(ctx, item.ID, form.Values{"transport": "রিকশা"})
		require.NoError(t, err)
		assert.Equal(t, "রিকশা", edited.Data["transport"])
		assert.NotContains(t, edited.Data, "busName", "fields that became inactive are dropped")
	})

	t.Run("meal ceiling", func(t *testing.T) {
		over := valid.Merge(form.Values{"meal": "সকাল", "mealAmount": "221"})
		errs, err := forms.Validate("conveyance", over)
		require.NoError(t, err)
		assert.Contains(t, errs.ByField(), "mealAmount")

		_, _, err = forms.SubmitToCart(ctx, "conveyance", over)
		var submitErr *form.SubmitError
		require.ErrorAs(t, err, &submitErr)
		assert.Contains(t, submitErr.Message, "mealAmount")

		errs, err = forms.Validate("conveyance", valid.Merge(form.Values{"meal": "সকাল", "mealAmount": "২২০"}))
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("edit of a missing item", func(t *testing.T) {
		_, err := forms.EditCartItem(ctx, "missing", valid)
		assert.ErrorIs(t, err, ErrCartItemNotFound)
	})
}
