package models

// Company tags. Order numbers are namespaced per company; the two
// affiliates never share an identifier (asserted, not enforced).
const (
	CompanyAll = "all"
	CompanyA   = "A"
	CompanyB   = "B"
)

// WIPStage is the canonical production-pipeline bucket a unit occupies.
type WIPStage string

const (
	StageOnLoom     WIPStage = "on_loom"
	StageBazar      WIPStage = "bazar_received"
	StageFinishing  WIPStage = "finishing"
	StageFGStore    WIPStage = "finished_goods_store"
	StagePacked     WIPStage = "packed"
	StageDispatched WIPStage = "dispatched"
)

const (
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusError   = "error"
)

const (
	SyncTriggeredManual    = "manual"
	SyncTriggeredScheduler = "scheduler"
)

// Mirrored-source freshness as reported to the query API.
const (
	SourceStatusSynced = "synced"
	SourceStatusStale  = "stale"
	SourceStatusError  = "error"
)
