package models

import (
	"github.com/shopspring/decimal"
)

// CanonicalWIPRecord is one order line item normalized from either
// source. Computed fresh on every query; never persisted.
//
// Invariant: OnLoom+Bazar+Finishing+FGStore+Packed+Dispatched never
// exceeds OrderedQty; the remainder is reported as Untracked.
type CanonicalWIPRecord struct {
	Company    string          `json:"company"`
	OrderNo    string          `json:"orderNo"`
	BuyerCode  string          `json:"buyerCode"`
	BuyerName  string          `json:"buyerName"`
	Design     string          `json:"design"`
	Size       string          `json:"size"`
	Color      string          `json:"color"`
	Quality    string          `json:"quality"`
	OrderedQty int             `json:"orderedQty"`
	AreaSqft   decimal.Decimal `json:"areaSqft"`

	OnLoom     int `json:"onLoom"`
	Bazar      int `json:"bazarReceived"`
	Finishing  int `json:"finishing"`
	FGStore    int `json:"finishedGoodsStore"`
	Packed     int `json:"packed"`
	Dispatched int `json:"dispatched"`
	Untracked  int `json:"untracked"`
}

// StageTotal is the sum of the six tracked stage counts.
func (r CanonicalWIPRecord) StageTotal() int {
	return r.OnLoom + r.Bazar + r.Finishing + r.FGStore + r.Packed + r.Dispatched
}

type WIPSummary struct {
	OrderCountByCompany map[string]int  `json:"orderCountByCompany"`
	TotalPcs            int             `json:"totalPcs"`
	TotalAreaSqft       decimal.Decimal `json:"totalAreaSqft"`
	OnLoom              int             `json:"onLoom"`
	Bazar               int             `json:"bazarReceived"`
	Finishing           int             `json:"finishing"`
	FGStore             int             `json:"finishedGoodsStore"`
	Packed              int             `json:"packed"`
	Dispatched          int             `json:"dispatched"`
	Untracked           int             `json:"untracked"`
}

type MirroredSourceStatus struct {
	Status       string  `json:"status"`
	LastSyncedAt *string `json:"lastSyncedAt"`
}

type SyncStatus struct {
	LiveSource     string               `json:"liveSource"`
	MirroredSource MirroredSourceStatus `json:"mirroredSource"`
}
