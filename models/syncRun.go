package models

import (
	"context"
	"errors"
	"time"

	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/utils"
	"gorm.io/gorm"
)

// SyncRun is one entry in the append-only sync log. It is created and
// finalized on sessions independent of the main refresh transaction, so
// the outcome of a run is recorded even when the refresh rolls back.
type SyncRun struct {
	ID           uint       `gorm:"primary_key" json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at"`
	OrdersSynced int        `json:"orders_synced"`
	ItemsSynced  int        `json:"items_synced"`
	UnitsSynced  int        `json:"units_synced"`
	Status       string     `gorm:"size:20;index;not null" json:"status"`
	Errors       string     `gorm:"type:text" json:"errors"`
	TriggeredBy  string     `gorm:"size:20" json:"triggered_by"`
}

func (SyncRun) TableName() string { return "sync_run" }

func CreateSyncRun(ctx context.Context, triggeredBy string) (*SyncRun, error) {
	run := SyncRun{
		StartedAt:   time.Now(),
		Status:      SyncRunStatusRunning,
		TriggeredBy: triggeredBy,
	}
	if err := config.GetDB().WithContext(ctx).Create(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// FinalizeSyncRun writes the run outcome on its own session. Called
// after commit on success and after rollback on failure.
func FinalizeSyncRun(ctx context.Context, run *SyncRun, status string, errText string, orders, items, units int) error {
	now := time.Now()
	run.Status = status
	run.Errors = errText
	run.FinishedAt = &now
	run.OrdersSynced = orders
	run.ItemsSynced = items
	run.UnitsSynced = units
	return config.GetDB().WithContext(ctx).Model(run).Updates(map[string]interface{}{
		"status":        status,
		"errors":        errText,
		"finished_at":   now,
		"orders_synced": orders,
		"items_synced":  items,
		"units_synced":  units,
	}).Error
}

// LastSuccessfulSyncRun returns the most recent run with status
// success, or nil when none exists.
func LastSuccessfulSyncRun(ctx context.Context) (*SyncRun, error) {
	var run SyncRun
	err := config.GetDB().WithContext(ctx).
		Where("status = ?", SyncRunStatusSuccess).
		Order("id desc").
		Take(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func ListSyncRuns(ctx context.Context, limit int) ([]SyncRun, error) {
	var runs []SyncRun
	err := config.GetDB().WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

func GetSyncRun(ctx context.Context, id int) (*SyncRun, error) {
	var run SyncRun
	err := config.GetDB().WithContext(ctx).Where("id = ?", id).Take(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &run, nil
}
