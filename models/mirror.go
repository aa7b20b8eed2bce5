package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MirrorOrder is the local replica of one open order from the remote
// ERP. The whole set is deleted and re-inserted inside one transaction
// on every sync run; readers only ever see a complete snapshot.
type MirrorOrder struct {
	ID            uint       `gorm:"primary_key" json:"id"`
	SourceOrderId int        `gorm:"index;not null" json:"source_order_id"`
	OrderNo       string     `gorm:"size:64;index;not null" json:"order_no"`
	BuyerCode     string     `gorm:"size:32;index" json:"buyer_code"`
	BuyerName     string     `gorm:"size:255" json:"buyer_name"`
	OrderDate     *time.Time `json:"order_date"`
	DispatchDate  *time.Time `json:"dispatch_date"`
	Status        string     `gorm:"size:20" json:"status"`
	TotalPcs      int        `json:"total_pcs"`
	TotalItems    int        `json:"total_items"`
	SyncedAt      time.Time  `json:"synced_at"`

	Items []MirrorOrderItem `gorm:"foreignKey:OrderId;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (MirrorOrder) TableName() string { return "mirror_order" }

type MirrorOrderItem struct {
	ID            uint            `gorm:"primary_key" json:"id"`
	OrderId       uint            `gorm:"index;not null" json:"order_id"`
	SourceOrderId int             `gorm:"index:idx_mirror_item_natural,priority:1;not null" json:"source_order_id"`
	SourceItemId  int             `gorm:"index:idx_mirror_item_natural,priority:2;not null" json:"source_item_id"`
	Design        string          `gorm:"size:64" json:"design"`
	Size          string          `gorm:"size:32" json:"size"`
	Color         string          `gorm:"size:64" json:"color"`
	Quality       string          `gorm:"size:64" json:"quality"`
	OrderedQty    int             `json:"ordered_qty"`
	AreaSqft      decimal.Decimal `gorm:"type:decimal(12,2)" json:"area_sqft"`
}

func (MirrorOrderItem) TableName() string { return "mirror_order_item" }

// MirrorUnit is one physical production unit. It is owned by its item
// through the natural key (source_order_id, source_item_id) resolved at
// sync time; the remote schema exposes no direct foreign key, so none is
// enforced here either.
type MirrorUnit struct {
	ID             uint      `gorm:"primary_key" json:"id"`
	StockNo        string    `gorm:"size:64;index" json:"stock_no"`
	OrderItemId    uint      `gorm:"index;not null" json:"order_item_id"`
	RawProcessCode int       `gorm:"not null" json:"raw_process_code"`
	ProcessName    string    `gorm:"size:64" json:"process_name"`
	WipStage       WIPStage  `gorm:"size:32;index;not null" json:"wip_stage"`
	IsPacked       bool      `gorm:"default:false" json:"is_packed"`
	SyncedAt       time.Time `json:"synced_at"`
}

func (MirrorUnit) TableName() string { return "mirror_unit" }

// ProcessCode is the small process-code-to-name reference table,
// refreshed unconditionally at the start of every sync run.
type ProcessCode struct {
	Code      int       `gorm:"primary_key;autoIncrement:false" json:"code"`
	Name      string    `gorm:"size:64" json:"name"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ProcessCode) TableName() string { return "process_code" }
