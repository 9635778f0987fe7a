package replenishment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/forgedesk/inventory-service/internal/model"
)

// needsOrderEpsilon filters float dust out of the needs-order count.
const needsOrderEpsilon = 1e-4

// ItemPlan is one item's replenishment picture: ledger state, engine inputs,
// open purchase order coverage and the computed recommendation.
type ItemPlan struct {
	ItemID       int64            `json:"item_id"`
	SKU          string           `json:"sku"`
	Item         string           `json:"item"`
	Location     string           `json:"location"`
	Status       model.ItemStatus `json:"status"`
	Stock        int64            `json:"stock"`
	CommittedQty int64            `json:"committed_qty"`
	AvailableQty int64            `json:"available_qty"`
	ReorderPoint int64            `json:"reorder_point"`

	SupplierID   *int64  `json:"supplier_id"`
	SupplierName *string `json:"supplier_name"`
	SupplierSKU  *string `json:"supplier_sku"`

	AverageDailyUse *float64 `json:"average_daily_use"`
	LeadTimeDays    int      `json:"lead_time_days"`
	SafetyStockQty  float64  `json:"safety_stock_qty"`
	MinimumOrderQty float64  `json:"minimum_order_qty"`
	OrderMultiple   float64  `json:"order_multiple"`
	PackSize        float64  `json:"pack_size"`

	// OnOrderQty is outstanding open purchase order quantity in eaches.
	OnOrderQty float64 `json:"on_order_qty"`

	RecommendedQty float64 `json:"recommended_qty"`
	// RecommendedUnits is RecommendedQty expressed in purchase units.
	RecommendedUnits   float64  `json:"recommended_units"`
	ProjectedAvailable float64  `json:"projected_available"`
	DaysOfSupply       *float64 `json:"days_of_supply"`
}

type GroupTotals struct {
	ItemCount        int     `json:"item_count"`
	NeedsOrder       int     `json:"needs_order"`
	TotalStock       int64   `json:"total_stock"`
	TotalCommitted   int64   `json:"total_committed"`
	TotalOnOrder     float64 `json:"total_on_order"`
	TotalRecommended float64 `json:"total_recommended"`
}

// SupplierGroup collects every item bought from one supplier, with the totals
// a buyer reviews before cutting an order.
type SupplierGroup struct {
	Key        string      `json:"key"`
	SupplierID *int64      `json:"supplier_id"`
	Name       string      `json:"name"`
	Items      []ItemPlan  `json:"items"`
	Totals     GroupTotals `json:"totals"`
}

// GroupBySupplier buckets item plans by supplier. Items carrying only a
// free-text supplier contact fall into legacy groups keyed by that text;
// items with no supplier at all land in an Unassigned group. Groups come
// back sorted by name with Unassigned last.
func GroupBySupplier(plans []ItemPlan) []SupplierGroup {
	byKey := map[string]*SupplierGroup{}

	for _, plan := range plans {
		key, name := groupIdentity(&plan)
		group, ok := byKey[key]
		if !ok {
			group = &SupplierGroup{Key: key, SupplierID: plan.SupplierID, Name: name}
			byKey[key] = group
		}
		group.Items = append(group.Items, plan)

		group.Totals.ItemCount++
		if plan.RecommendedQty > needsOrderEpsilon {
			group.Totals.NeedsOrder++
		}
		group.Totals.TotalStock += plan.Stock
		group.Totals.TotalCommitted += plan.CommittedQty
		group.Totals.TotalOnOrder += plan.OnOrderQty
		group.Totals.TotalRecommended += plan.RecommendedQty
	}

	groups := make([]SupplierGroup, 0, len(byKey))
	for _, g := range byKey {
		sort.Slice(g.Items, func(i, j int) bool { return g.Items[i].SKU < g.Items[j].SKU })
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if (groups[i].Key == "unassigned") != (groups[j].Key == "unassigned") {
			return groups[j].Key == "unassigned"
		}
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

func groupIdentity(plan *ItemPlan) (key, name string) {
	if plan.SupplierID != nil {
		name = fmt.Sprintf("Supplier %d", *plan.SupplierID)
		if plan.SupplierName != nil && *plan.SupplierName != "" {
			name = *plan.SupplierName
		}
		return fmt.Sprintf("supplier-%d", *plan.SupplierID), name
	}
	if plan.SupplierName != nil && strings.TrimSpace(*plan.SupplierName) != "" {
		name = strings.TrimSpace(*plan.SupplierName)
		return "legacy-" + slugify(name), name
	}
	return "unassigned", "Unassigned"
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
