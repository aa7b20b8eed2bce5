package wipquery

import (
	"github.com/shopspring/decimal"
	"github.com/texfocus/wiptrack_backend/models"
	"github.com/texfocus/wiptrack_backend/utils"
)

// ComputeSummary aggregates the merged record list: distinct order
// count per company, total pieces and per-stage totals.
func ComputeSummary(records []models.CanonicalWIPRecord) models.WIPSummary {
	summary := models.WIPSummary{
		OrderCountByCompany: map[string]int{},
		TotalAreaSqft:       decimal.Zero,
	}

	ordersSeen := map[string]map[string]struct{}{}
	for _, r := range records {
		orders, ok := ordersSeen[r.Company]
		if !ok {
			orders = map[string]struct{}{}
			ordersSeen[r.Company] = orders
		}
		orders[utils.NormalizeOrderNo(r.OrderNo)] = struct{}{}

		qty := r.OrderedQty
		summary.TotalPcs += qty
		summary.TotalAreaSqft = summary.TotalAreaSqft.Add(r.AreaSqft.Mul(decimal.NewFromInt(int64(qty))))
		summary.OnLoom += r.OnLoom
		summary.Bazar += r.Bazar
		summary.Finishing += r.Finishing
		summary.FGStore += r.FGStore
		summary.Packed += r.Packed
		summary.Dispatched += r.Dispatched
		summary.Untracked += r.Untracked
	}

	for company, orders := range ordersSeen {
		summary.OrderCountByCompany[company] = len(orders)
	}
	return summary
}
