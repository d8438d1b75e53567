package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Product, Warehouse, Order and OrderItem mirror the persisted table layout
// spec.md §6 names (product, productPrice, productStock, warehouse, order,
// orderItem), collapsed into plain Go structs since the relational store
// itself is an external collaborator out of scope for this engine.
type Product struct {
	ID             string
	OrganizationID string
	SKU            string
	Name           string
	Price          float64
	StockByWarehouse map[string]int
}

type Warehouse struct {
	ID             string
	OrganizationID string
	Name           string
	Location       string
}

type OrderItem struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

type Order struct {
	ID             string
	OrganizationID string
	CustomerName   string
	Status         string
	Items          []OrderItem
	Total          float64
}

// OrderStats summarises an organization's orders for get_order_stats.
type OrderStats struct {
	TotalOrders int
	ByStatus    map[string]int
	Revenue     float64
}

// ProductRepository is the read surface the INVENTORY_LOOKUP tool needs,
// every method scoped to one organization (spec §4.5: "read-only and scoped
// to the agent's owning organization"). Grounded on go/pkg/credentials/
// service.go's org-scoped-lookup idiom, generalized to a product catalogue.
type ProductRepository interface {
	SearchProducts(ctx context.Context, orgID, query string, limit int) ([]Product, error)
	ListWarehouses(ctx context.Context, orgID string) ([]Warehouse, error)
}

// OrderRepository is the read/write surface the ORDER_MANAGER tool needs.
// Every method is org-scoped; a write against an order belonging to another
// organization MUST fail (spec §4.5, scenario 5).
type OrderRepository interface {
	SearchOrders(ctx context.Context, orgID, query, status string, limit int) ([]Order, error)
	GetOrder(ctx context.Context, orgID, orderID string) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orgID, orderID, newStatus string) (*Order, error)
	OrderStats(ctx context.Context, orgID string) (OrderStats, error)
}

// MemoryCatalog is an in-memory ProductRepository/OrderRepository, used by
// tests and by the cmd/engine wiring example. It is not a substitute for
// the relational store the spec places out of scope.
type MemoryCatalog struct {
	mu         sync.RWMutex
	products   map[string]Product
	warehouses map[string]Warehouse
	orders     map[string]Order
}

// NewMemoryCatalog builds an empty MemoryCatalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		products:   make(map[string]Product),
		warehouses: make(map[string]Warehouse),
		orders:     make(map[string]Order),
	}
}

func (c *MemoryCatalog) PutProduct(p Product)     { c.mu.Lock(); defer c.mu.Unlock(); c.products[p.ID] = p }
func (c *MemoryCatalog) PutWarehouse(w Warehouse) { c.mu.Lock(); defer c.mu.Unlock(); c.warehouses[w.ID] = w }
func (c *MemoryCatalog) PutOrder(o Order)         { c.mu.Lock(); defer c.mu.Unlock(); c.orders[o.ID] = o }

func (c *MemoryCatalog) SearchProducts(_ context.Context, orgID, query string, limit int) ([]Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Product, 0)
	for _, p := range c.products {
		if p.OrganizationID != orgID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) && !strings.Contains(strings.ToLower(p.SKU), query) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (c *MemoryCatalog) ListWarehouses(_ context.Context, orgID string) ([]Warehouse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Warehouse, 0)
	for _, w := range c.warehouses {
		if w.OrganizationID == orgID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (c *MemoryCatalog) SearchOrders(_ context.Context, orgID, query, status string, limit int) ([]Order, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Order, 0)
	for _, o := range c.orders {
		if o.OrganizationID != orgID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(o.CustomerName), query) && !strings.Contains(strings.ToLower(o.ID), query) {
			continue
		}
		out = append(out, o)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// GetOrder returns the order only if it belongs to orgID; an order that
// exists under a different organization is reported identically to one
// that does not exist at all, so a cross-tenant probe learns nothing
// (spec §7: tenancy errors are treated as configuration errors, never
// leaked as "found but forbidden").
func (c *MemoryCatalog) GetOrder(_ context.Context, orgID, orderID string) (*Order, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.orders[orderID]
	if !ok || o.OrganizationID != orgID {
		return nil, fmt.Errorf("order %s not found", orderID)
	}
	return &o, nil
}

func (c *MemoryCatalog) UpdateOrderStatus(_ context.Context, orgID, orderID, newStatus string) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.orders[orderID]
	if !ok || o.OrganizationID != orgID {
		return nil, fmt.Errorf("order %s not found", orderID)
	}
	o.Status = newStatus
	c.orders[orderID] = o
	return &o, nil
}

func (c *MemoryCatalog) OrderStats(_ context.Context, orgID string) (OrderStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := OrderStats{ByStatus: make(map[string]int)}
	for _, o := range c.orders {
		if o.OrganizationID != orgID {
			continue
		}
		stats.TotalOrders++
		stats.ByStatus[o.Status]++
		stats.Revenue += o.Total
	}
	return stats, nil
}
