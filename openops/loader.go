package openops

import (
	"context"
	"time"

	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/models"
)

const (
	openOpsCacheKey = "OpenOps:latest"
	openOpsCacheTTL = 5 * time.Minute
)

type cachedDocument struct {
	OpsNumbers  []string `json:"opsNumbers"`
	MaxSequence int      `json:"maxSequence"`
}

// Load returns the open-ops set for one reconciliation pass. The set is
// immutable once returned; a new upload only affects later passes.
// exists is false when no document has ever been uploaded, in which
// case callers skip reconciliation entirely.
func Load(ctx context.Context) (set models.OpenOpsSet, exists bool, err error) {
	var cached cachedDocument
	hit, cerr := config.GetRedisObject(openOpsCacheKey, &cached)
	if cerr == nil && hit {
		return toSet(cached), true, nil
	}

	doc, err := models.LatestOpenOpsDocument(ctx)
	if err != nil {
		return models.OpenOpsSet{}, false, err
	}
	if doc == nil {
		return models.OpenOpsSet{}, false, nil
	}
	set, err = doc.ToSet()
	if err != nil {
		return models.OpenOpsSet{}, false, err
	}

	numbers := make([]string, 0, len(set.Numbers))
	for n := range set.Numbers {
		numbers = append(numbers, n)
	}
	_ = config.SetRedisObject(openOpsCacheKey, cachedDocument{
		OpsNumbers:  numbers,
		MaxSequence: set.MaxSequence,
	}, openOpsCacheTTL)

	return set, true, nil
}

func toSet(cached cachedDocument) models.OpenOpsSet {
	set := models.OpenOpsSet{
		Numbers:     make(map[string]struct{}, len(cached.OpsNumbers)),
		MaxSequence: cached.MaxSequence,
	}
	for _, n := range cached.OpsNumbers {
		set.Numbers[n] = struct{}{}
	}
	return set
}

func invalidateCache() {
	_ = config.RemoveRedisKey(openOpsCacheKey)
}
