package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_Ordered(t *testing.T) {
	names, err := Files()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_init.sql", names[0])
}

func TestInitSchema_CoversTables(t *testing.T) {
	raw, err := files.ReadFile("0001_init.sql")
	require.NoError(t, err)
	schema := string(raw)

	for _, table := range []string{
		"shops", "shop_settings", "shop_resources", "availability_periods",
		"product_orders", "current_availabilities", "plans", "notifications",
	} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.True(t, strings.Contains(schema, "UNIQUE (shop_resource_id, order_id, chosen_date)"))
	assert.True(t, strings.Contains(schema, "UNIQUE (shop_id, type, period_start)"))
}
