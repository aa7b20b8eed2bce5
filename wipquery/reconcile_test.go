package wipquery

import (
	"testing"

	"github.com/texfocus/wiptrack_backend/models"
)

func opsSet(maxSequence int, numbers ...string) models.OpenOpsSet {
	set := models.OpenOpsSet{
		Numbers:     map[string]struct{}{},
		MaxSequence: maxSequence,
	}
	for _, n := range numbers {
		set.Numbers[n] = struct{}{}
	}
	return set
}

func TestIsOpenOrder_SequenceHeuristic(t *testing.T) {
	set := opsSet(100, "X-25-010")

	cases := []struct {
		name    string
		orderNo string
		open    bool
	}{
		{"verbatim match", "X-25-010", true},
		{"verbatim match after normalization", "  x-25-010 ", true},
		{"sequence below max and not listed", "X-25-050", false},
		{"sequence above max", "X-25-150", true},
		{"sequence equal to max and not listed", "X-25-100", false},
		{"no trailing sequence and not listed", "SAMPLE-ORDER", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOpenOrder(tc.orderNo, set); got != tc.open {
				t.Fatalf("IsOpenOrder(%q) = %v, want %v", tc.orderNo, got, tc.open)
			}
		})
	}
}

func TestFilterOpen_DropsClosedGroups(t *testing.T) {
	set := opsSet(100, "X-25-010")
	records := []models.CanonicalWIPRecord{
		{Company: models.CompanyA, OrderNo: "X-25-010", OrderedQty: 5},
		{Company: models.CompanyA, OrderNo: "X-25-010", OrderedQty: 3}, // second line item, same order
		{Company: models.CompanyA, OrderNo: "X-25-050", OrderedQty: 4},
		{Company: models.CompanyB, OrderNo: "X-25-150", OrderedQty: 2},
	}

	visible := FilterOpen(records, set)
	if len(visible) != 3 {
		t.Fatalf("expected 3 visible records, got %d", len(visible))
	}
	for _, r := range visible {
		if r.OrderNo == "X-25-050" {
			t.Fatalf("closed order X-25-050 should have been dropped")
		}
	}
}

// Duplicate identifiers must resolve to one decision regardless of the
// record ordering they arrive in.
func TestClassifyGroups_FirstMatchWinsIsDeterministic(t *testing.T) {
	set := opsSet(100)
	records := []models.CanonicalWIPRecord{
		{Company: models.CompanyB, OrderNo: "x-25-150"},
		{Company: models.CompanyA, OrderNo: "X-25-150"},
	}
	reversed := []models.CanonicalWIPRecord{records[1], records[0]}

	forward := ClassifyGroups(records, set)
	backward := ClassifyGroups(reversed, set)

	for key, open := range forward {
		if backward[key] != open {
			t.Fatalf("decision for %+v differs with input order: %v vs %v", key, open, backward[key])
		}
		if !open {
			t.Fatalf("sequence 150 > max 100 should classify %+v open", key)
		}
	}
}

func TestFilterOpen_EmptySetHidesNothingWithHighSequences(t *testing.T) {
	// MaxSequence 0 means every numbered order post-dates the export.
	set := opsSet(0)
	records := []models.CanonicalWIPRecord{
		{Company: models.CompanyA, OrderNo: "X-26-001"},
	}
	if got := FilterOpen(records, set); len(got) != 1 {
		t.Fatalf("expected the numbered order to stay visible, got %d records", len(got))
	}
}
