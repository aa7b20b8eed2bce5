package wipquery

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/texfocus/wiptrack_backend/models"
)

func TestComputeSummary(t *testing.T) {
	records := []models.CanonicalWIPRecord{
		{
			Company: models.CompanyA, OrderNo: "A-25-001", OrderedQty: 10,
			AreaSqft: decimal.NewFromInt(80),
			OnLoom:   4, Bazar: 2, Finishing: 1, FGStore: 1, Packed: 1, Dispatched: 0, Untracked: 1,
		},
		{
			Company: models.CompanyA, OrderNo: "A-25-001", OrderedQty: 5, // second line, same order
			AreaSqft: decimal.NewFromInt(24),
			OnLoom:   5,
		},
		{
			Company: models.CompanyB, OrderNo: "B-25-009", OrderedQty: 3,
			Packed: 2, Untracked: 1,
		},
	}

	summary := ComputeSummary(records)

	if got := summary.OrderCountByCompany[models.CompanyA]; got != 1 {
		t.Fatalf("company A order count = %d, want 1 (two lines of one order)", got)
	}
	if got := summary.OrderCountByCompany[models.CompanyB]; got != 1 {
		t.Fatalf("company B order count = %d, want 1", got)
	}
	if summary.TotalPcs != 18 {
		t.Fatalf("TotalPcs = %d, want 18", summary.TotalPcs)
	}
	// 80*10 + 24*5 + 0*3
	if want := decimal.NewFromInt(920); !summary.TotalAreaSqft.Equal(want) {
		t.Fatalf("TotalAreaSqft = %s, want %s", summary.TotalAreaSqft, want)
	}

	stageTotal := summary.OnLoom + summary.Bazar + summary.Finishing +
		summary.FGStore + summary.Packed + summary.Dispatched + summary.Untracked
	if stageTotal != summary.TotalPcs {
		t.Fatalf("stage totals + untracked = %d, want TotalPcs %d", stageTotal, summary.TotalPcs)
	}
}

func TestComputeSummary_Empty(t *testing.T) {
	summary := ComputeSummary(nil)
	if summary.TotalPcs != 0 || len(summary.OrderCountByCompany) != 0 {
		t.Fatalf("empty input should yield zero summary, got %+v", summary)
	}
}
