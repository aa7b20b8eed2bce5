package wipquery

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/models"
)

const defaultFreshnessHours = 2

// MirroredStatus derives the mirrored source's freshness from the last
// successful sync timestamp: synced within the threshold, stale beyond
// it, error when no successful run exists.
func MirroredStatus(lastSuccess *time.Time, now time.Time, threshold time.Duration) models.MirroredSourceStatus {
	if lastSuccess == nil {
		return models.MirroredSourceStatus{Status: models.SourceStatusError}
	}
	formatted := lastSuccess.UTC().Format(time.RFC3339)
	status := models.SourceStatusSynced
	if now.Sub(*lastSuccess) > threshold {
		status = models.SourceStatusStale
	}
	return models.MirroredSourceStatus{Status: status, LastSyncedAt: &formatted}
}

func mirroredSourceStatus(ctx context.Context) models.MirroredSourceStatus {
	if config.GetDB() == nil {
		return models.MirroredSourceStatus{Status: models.SourceStatusError}
	}
	run, err := models.LastSuccessfulSyncRun(ctx)
	if err != nil {
		config.LogError(config.GetLogger(), "wipquery", "mirroredSourceStatus", "read sync log", nil, err)
		return models.MirroredSourceStatus{Status: models.SourceStatusError}
	}
	if run == nil {
		return models.MirroredSourceStatus{Status: models.SourceStatusError}
	}
	syncedAt := run.StartedAt
	if run.FinishedAt != nil {
		syncedAt = *run.FinishedAt
	}
	return MirroredStatus(&syncedAt, time.Now(), freshnessThreshold())
}

func freshnessThreshold() time.Duration {
	if v := strings.TrimSpace(os.Getenv("SYNC_FRESHNESS_HOURS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Hour
		}
	}
	return defaultFreshnessHours * time.Hour
}
