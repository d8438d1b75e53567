package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smilemakc/workflow-engine/internal/executor"
)

// InventoryLookup builds the INVENTORY_LOOKUP sub-node's two read-only
// tools, search_products and list_warehouses, both scoped to orgID (spec
// §4.5). Grounded on go/pkg/credentials/service.go's org-scoped read idiom.
func InventoryLookup(repo ProductRepository, orgID string) []executor.AgentTool {
	return []executor.AgentTool{
		{
			Def: executor.ToolDef{
				Name:        "search_products",
				Description: "Searches the organization's product catalogue by name or SKU.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{"type": "string"},
						"limit": map[string]any{"type": "integer"},
					},
				},
			},
			Execute: func(ctx context.Context, argumentsJSON string) (string, error) {
				var args struct {
					Query string `json:"query"`
					Limit int    `json:"limit"`
				}
				_ = json.Unmarshal([]byte(argumentsJSON), &args)
				limit := args.Limit
				if limit <= 0 {
					limit = 20
				}
				products, err := repo.SearchProducts(ctx, orgID, args.Query, limit)
				if err != nil {
					return fmt.Sprintf("Error: %v", err), nil
				}
				if len(products) == 0 {
					return "No products found.", nil
				}
				lines := make([]string, 0, len(products))
				for _, p := range products {
					lines = append(lines, fmt.Sprintf("%s (%s): $%.2f", p.Name, p.SKU, p.Price))
				}
				return strings.Join(lines, "\n"), nil
			},
		},
		{
			Def: executor.ToolDef{
				Name:        "list_warehouses",
				Description: "Lists the organization's warehouses.",
				Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
			},
			Execute: func(ctx context.Context, _ string) (string, error) {
				warehouses, err := repo.ListWarehouses(ctx, orgID)
				if err != nil {
					return fmt.Sprintf("Error: %v", err), nil
				}
				if len(warehouses) == 0 {
					return "No warehouses found.", nil
				}
				lines := make([]string, 0, len(warehouses))
				for _, w := range warehouses {
					lines = append(lines, fmt.Sprintf("%s (%s)", w.Name, w.Location))
				}
				return strings.Join(lines, "\n"), nil
			},
		},
	}
}
