package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/domain/form"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	t.Run("finds top level and sub types", func(t *testing.T) {
		d, ok := c.FindByID(entity.VoucherTypePettyCashDemand)
		require.True(t, ok)
		assert.Equal(t, KindSingle, d.Kind)
		assert.Equal(t, "amount", d.AmountKey())

		sub, ok := c.FindByID("stationery")
		require.True(t, ok)
		assert.Equal(t, "স্টেশনারি ক্রয়", sub.Heading)

		multi, ok := c.FindByID("office-expense")
		require.True(t, ok)
		assert.True(t, multi.IsMulti())
		assert.Len(t, multi.SubTypes, 2)
	})

	t.Run("ids are unique across the flattened list", func(t *testing.T) {
		seen := make(map[string]bool)
		for _, d := range c.Flatten() {
			assert.False(t, seen[d.ID], d.ID)
			seen[d.ID] = true
		}
		assert.Greater(t, len(c.Flatten()), len(c.All()))
	})

	t.Run("decodes field extras", func(t *testing.T) {
		d, ok := c.FindByID("conveyance")
		require.True(t, ok)

		var meal form.Field
		form.Walk(d.FormFields, func(f form.Field) {
			if f.Name == "mealAmount" {
				meal = f
			}
		})
		assert.Equal(t, form.TypeNumber, meal.Type)
		assert.Equal(t, "meal", meal.MaxAmountTrigger)
		assert.Equal(t, float64(220), meal.MaxAmountRules["সকাল"])
		require.NotNil(t, meal.Dependency)
		assert.Equal(t, form.Wildcard, meal.Dependency.Value)
	})

	t.Run("lookup misses degrade", func(t *testing.T) {
		_, ok := c.FindByID("missing")
		assert.False(t, ok)
		assert.Equal(t, "N/A", c.HeadingOf("missing"))
		assert.Equal(t, "br-999", c.BranchName("br-999"))
		assert.Equal(t, "মিরপুর শাখা", c.BranchName("br-001"))
	})
}

func TestFindByIDDepth(t *testing.T) {
	deep := Definition{ID: "deep"}
	c := New([]Definition{{
		ID:   "group",
		Kind: KindMulti,
		SubTypes: []Definition{{
			ID:       "child",
			SubTypes: []Definition{deep},
		}},
	}}, nil)

	_, ok := c.FindByID("child")
	assert.True(t, ok)
	_, ok = c.FindByID("deep")
	assert.False(t, ok, "lookups never go past one level of sub-types")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
branches:
  - id: "x"
    name: "এক্স শাখা"
voucher_types:
  - id: "taxi"
    heading: "ট্যাক্সি"
    amount_field: "fare"
    form_fields:
      - name: "fare"
        label: "ভাড়া"
        type: "number"
        mandatory: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadOrDefault(path)
	require.NoError(t, err)

	d, ok := c.FindByID("taxi")
	require.True(t, ok)
	assert.Equal(t, KindSingle, d.Kind)
	assert.Equal(t, "fare", d.AmountKey())
	assert.Equal(t, "এক্স শাখা", c.BranchName("x"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
