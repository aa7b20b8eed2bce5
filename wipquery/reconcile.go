package wipquery

import (
	"sort"

	"github.com/texfocus/wiptrack_backend/models"
	"github.com/texfocus/wiptrack_backend/utils"
)

// The reconciler decides order visibility against the manually exported
// open-ops list. No single system is authoritative for open/closed
// state across the three sources, so the policy deliberately biases
// toward showing a closed order over hiding an open one.

type groupKey struct {
	Company string
	OrderNo string
}

// IsOpenOrder reports whether one order identifier counts as open:
// either it matches the open-ops set verbatim (normalized), or its
// trailing sequence number is strictly greater than the set's maximum,
// meaning it post-dates the last export and cannot have been closed by
// it.
func IsOpenOrder(orderNo string, set models.OpenOpsSet) bool {
	normalized := utils.NormalizeOrderNo(orderNo)
	if set.Contains(normalized) {
		return true
	}
	if seq, ok := utils.ExtractOrderSequence(normalized); ok {
		return seq > set.MaxSequence
	}
	return false
}

// ClassifyGroups classifies every (company, order) group as open or
// closed. Groups are visited in sorted (company, order) sequence and
// the first decision for a normalized identifier wins, so duplicate
// identifiers with diverging sequence-extraction outcomes resolve
// deterministically.
func ClassifyGroups(records []models.CanonicalWIPRecord, set models.OpenOpsSet) map[groupKey]bool {
	keys := make([]groupKey, 0)
	seen := map[groupKey]struct{}{}
	for _, r := range records {
		key := groupKey{Company: r.Company, OrderNo: r.OrderNo}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Company != keys[j].Company {
			return keys[i].Company < keys[j].Company
		}
		return keys[i].OrderNo < keys[j].OrderNo
	})

	decisions := map[groupKey]bool{}
	byIdentifier := map[string]bool{}
	for _, key := range keys {
		normalized := utils.NormalizeOrderNo(key.OrderNo)
		if decided, ok := byIdentifier[normalized]; ok {
			decisions[key] = decided
			continue
		}
		open := IsOpenOrder(key.OrderNo, set)
		byIdentifier[normalized] = open
		decisions[key] = open
	}
	return decisions
}

// FilterOpen drops the records of closed groups. Callers pass the full
// merged list when the explicit show-all mode is requested instead.
func FilterOpen(records []models.CanonicalWIPRecord, set models.OpenOpsSet) []models.CanonicalWIPRecord {
	decisions := ClassifyGroups(records, set)
	visible := make([]models.CanonicalWIPRecord, 0, len(records))
	for _, r := range records {
		if decisions[groupKey{Company: r.Company, OrderNo: r.OrderNo}] {
			visible = append(visible, r)
		}
	}
	return visible
}
