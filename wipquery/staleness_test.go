package wipquery

import (
	"testing"
	"time"

	"github.com/texfocus/wiptrack_backend/models"
)

func TestMirroredStatus(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	threshold := 2 * time.Hour

	cases := []struct {
		name        string
		lastSuccess *time.Time
		want        string
	}{
		{"no successful run", nil, models.SourceStatusError},
		{"just synced", timePtr(now.Add(-time.Minute)), models.SourceStatusSynced},
		{"exactly at threshold", timePtr(now.Add(-threshold)), models.SourceStatusSynced},
		{"past threshold", timePtr(now.Add(-threshold - time.Second)), models.SourceStatusStale},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MirroredStatus(tc.lastSuccess, now, threshold)
			if got.Status != tc.want {
				t.Fatalf("status = %q, want %q", got.Status, tc.want)
			}
			if tc.lastSuccess == nil && got.LastSyncedAt != nil {
				t.Fatalf("expected nil LastSyncedAt with no successful run")
			}
			if tc.lastSuccess != nil && got.LastSyncedAt == nil {
				t.Fatalf("expected LastSyncedAt to be set")
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
