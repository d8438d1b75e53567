package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findTool(t *testing.T, toolName string, cat *MemoryCatalog, orgID string) func(context.Context, string) (string, error) {
	t.Helper()
	for _, tool := range OrderManager(cat, orgID) {
		if tool.Def.Name == toolName {
			return tool.Execute
		}
	}
	t.Fatalf("tool %q not found", toolName)
	return nil
}

func TestOrderManager_UpdateStatusRejectsForeignOrg(t *testing.T) {
	cat := NewMemoryCatalog()
	cat.PutOrder(Order{ID: "42", OrganizationID: "org-a", CustomerName: "Ada", Status: "pending", Total: 10})

	update := findTool(t, "update_order_status", cat, "org-b")
	result, err := update(context.Background(), `{"orderId":"42","newStatus":"shipped"}`)
	require.NoError(t, err)
	assert.Equal(t, "Error: Order #42 not found", result)

	stored, ownErr := cat.GetOrder(context.Background(), "org-a", "42")
	require.NoError(t, ownErr)
	assert.Equal(t, "pending", stored.Status)
}

func TestOrderManager_UpdateStatusSucceedsForOwnOrg(t *testing.T) {
	cat := NewMemoryCatalog()
	cat.PutOrder(Order{ID: "42", OrganizationID: "org-a", CustomerName: "Ada", Status: "pending", Total: 10})

	update := findTool(t, "update_order_status", cat, "org-a")
	result, err := update(context.Background(), `{"orderId":"42","newStatus":"shipped"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "shipped")

	stored, ownErr := cat.GetOrder(context.Background(), "org-a", "42")
	require.NoError(t, ownErr)
	assert.Equal(t, "shipped", stored.Status)
}

func TestOrderManager_SearchOrdersReportsNoneFound(t *testing.T) {
	cat := NewMemoryCatalog()
	search := findTool(t, "search_orders", cat, "org-a")
	result, err := search(context.Background(), `{"query":"nobody"}`)
	require.NoError(t, err)
	assert.Equal(t, "No orders found.", result)
}

func TestOrderManager_GetOrderStatsAggregatesRevenue(t *testing.T) {
	cat := NewMemoryCatalog()
	cat.PutOrder(Order{ID: "1", OrganizationID: "org-a", Status: "shipped", Total: 20})
	cat.PutOrder(Order{ID: "2", OrganizationID: "org-a", Status: "pending", Total: 5})

	stats := findTool(t, "get_order_stats", cat, "org-a")
	result, err := stats(context.Background(), `{}`)
	require.NoError(t, err)
	assert.Contains(t, result, "2 orders")
}
