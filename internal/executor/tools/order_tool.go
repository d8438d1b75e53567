package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smilemakc/workflow-engine/internal/executor"
)

// OrderManager builds the ORDER_MANAGER sub-node's three tools:
// search_orders, update_order_status and get_order_stats, all scoped to
// orgID. update_order_status MUST reject a write against an order owned by
// a different organization (spec §4.5, scenario 5); MemoryCatalog.GetOrder/
// UpdateOrderStatus already enforce that at the repository layer.
func OrderManager(repo OrderRepository, orgID string) []executor.AgentTool {
	return []executor.AgentTool{
		{
			Def: executor.ToolDef{
				Name:        "search_orders",
				Description: "Searches the organization's orders by customer name, id, or status.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query":  map[string]any{"type": "string"},
						"status": map[string]any{"type": "string"},
						"limit":  map[string]any{"type": "integer"},
					},
				},
			},
			Execute: func(ctx context.Context, argumentsJSON string) (string, error) {
				var args struct {
					Query  string `json:"query"`
					Status string `json:"status"`
					Limit  int    `json:"limit"`
				}
				_ = json.Unmarshal([]byte(argumentsJSON), &args)
				limit := args.Limit
				if limit <= 0 {
					limit = 20
				}
				orders, err := repo.SearchOrders(ctx, orgID, args.Query, args.Status, limit)
				if err != nil {
					return fmt.Sprintf("Error: %v", err), nil
				}
				if len(orders) == 0 {
					return "No orders found.", nil
				}
				lines := make([]string, 0, len(orders))
				for _, o := range orders {
					lines = append(lines, fmt.Sprintf("#%s %s: %s ($%.2f)", o.ID, o.CustomerName, o.Status, o.Total))
				}
				return strings.Join(lines, "\n"), nil
			},
		},
		{
			Def: executor.ToolDef{
				Name:        "update_order_status",
				Description: "Updates the status of an existing order owned by this organization.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"orderId":   map[string]any{"type": "string"},
						"newStatus": map[string]any{"type": "string"},
					},
					"required": []string{"orderId", "newStatus"},
				},
			},
			Execute: func(ctx context.Context, argumentsJSON string) (string, error) {
				var args struct {
					OrderID   string `json:"orderId"`
					NewStatus string `json:"newStatus"`
				}
				if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
					return "Error: invalid tool arguments", nil
				}
				order, err := repo.UpdateOrderStatus(ctx, orgID, args.OrderID, args.NewStatus)
				if err != nil {
					return fmt.Sprintf("Error: Order #%s not found", args.OrderID), nil
				}
				return fmt.Sprintf("Order #%s updated to status %q", order.ID, order.Status), nil
			},
		},
		{
			Def: executor.ToolDef{
				Name:        "get_order_stats",
				Description: "Returns aggregate order counts, revenue, and status breakdown for this organization.",
				Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
			},
			Execute: func(ctx context.Context, _ string) (string, error) {
				stats, err := repo.OrderStats(ctx, orgID)
				if err != nil {
					return fmt.Sprintf("Error: %v", err), nil
				}
				return fmt.Sprintf("%d orders, $%.2f revenue, by status: %v", stats.TotalOrders, stats.Revenue, stats.ByStatus), nil
			},
		},
	}
}
