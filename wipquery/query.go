// Package wipquery merges the live ERP and the mirror schema into one
// work-in-progress view at request time.
package wipquery

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/models"
	"github.com/texfocus/wiptrack_backend/utils"
)

type Filters struct {
	Company string // all | A | B
	Buyer   string
	Search  string
	ShowAll bool
}

type Result struct {
	Records    []models.CanonicalWIPRecord `json:"records"`
	Summary    models.WIPSummary           `json:"summary"`
	SyncStatus models.SyncStatus           `json:"syncStatus"`
}

// QueryWIP queries both sources concurrently, each on its own
// connection with its own timeout. A source that is unconfigured or
// failing contributes an empty result set; a request only ever fails on
// its own parameters, never on one source's outage.
func QueryWIP(ctx context.Context, filters Filters) (Result, error) {
	logger := config.GetLogger()
	timeout := sourceQueryTimeout()

	var (
		wg          sync.WaitGroup
		liveRecords []models.CanonicalWIPRecord
		mirRecords  []models.CanonicalWIPRecord
	)

	if filters.Company == models.CompanyAll || filters.Company == models.CompanyA {
		wg.Add(1)
		go func() {
			defer wg.Done()
			qctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			records, err := fetchLiveRecords(qctx, filters)
			if err != nil {
				config.LogError(logger, "wipquery", "QueryWIP", "live source degraded to empty", nil, err)
				return
			}
			liveRecords = records
		}()
	}

	if filters.Company == models.CompanyAll || filters.Company == models.CompanyB {
		wg.Add(1)
		go func() {
			defer wg.Done()
			qctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			records, err := fetchMirrorRecords(qctx, filters)
			if err != nil {
				config.LogError(logger, "wipquery", "QueryWIP", "mirrored source degraded to empty", nil, err)
				return
			}
			mirRecords = records
		}()
	}

	wg.Wait()

	records := MergeRecords(logger, liveRecords, mirRecords)
	summary := ComputeSummary(records)
	status := mirroredSourceStatus(ctx)

	return Result{
		Records: records,
		Summary: summary,
		SyncStatus: models.SyncStatus{
			LiveSource:     liveSourceStatus(),
			MirroredSource: status,
		},
	}, nil
}

func liveSourceStatus() string {
	if config.GetLiveDB() == nil {
		return "unconfigured"
	}
	return "live"
}

// MergeRecords concatenates both sources. Identifiers are namespaced
// per company by assumption; the assumption is asserted here with a
// warning rather than enforced, hiding rows would be the costlier
// mistake.
func MergeRecords(logger *logrus.Logger, liveRecords, mirRecords []models.CanonicalWIPRecord) []models.CanonicalWIPRecord {
	seenLive := make(map[string]struct{}, len(liveRecords))
	for _, r := range liveRecords {
		seenLive[utils.NormalizeOrderNo(r.OrderNo)] = struct{}{}
	}
	for _, r := range mirRecords {
		if _, clash := seenLive[utils.NormalizeOrderNo(r.OrderNo)]; clash && logger != nil {
			logger.WithFields(logrus.Fields{"orderNo": r.OrderNo}).
				Warn("order identifier present in both companies; namespacing assumption violated")
		}
	}

	merged := make([]models.CanonicalWIPRecord, 0, len(liveRecords)+len(mirRecords))
	merged = append(merged, liveRecords...)
	merged = append(merged, mirRecords...)
	return merged
}

// finishRecord derives the untracked remainder. Sources occasionally
// report more tracked pieces than ordered; the remainder is floored at
// zero so the invariant holds in the response.
func finishRecord(r *models.CanonicalWIPRecord) {
	untracked := r.OrderedQty - r.StageTotal()
	if untracked < 0 {
		untracked = 0
	}
	r.Untracked = untracked
}

func sourceQueryTimeout() time.Duration {
	if v := strings.TrimSpace(os.Getenv("SOURCE_QUERY_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 30 * time.Second
}
