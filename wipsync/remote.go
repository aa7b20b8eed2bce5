package wipsync

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Row shapes read from the remote ERP. Column names follow its schema
// (order_master / order_detail / stock_master / process_master); the
// remote exposes no foreign keys, units reference their item only
// through (order_id, item_id).

type remoteOrder struct {
	OrderId   int        `gorm:"column:order_id"`
	OrderNo   string     `gorm:"column:order_no"`
	BuyerCode string     `gorm:"column:buyer_code"`
	BuyerName string     `gorm:"column:buyer_name"`
	OrderDate *time.Time `gorm:"column:order_date"`
	DispDate  *time.Time `gorm:"column:disp_date"`
	OrdStatus string     `gorm:"column:ord_status"`
	TotPcs    int        `gorm:"column:tot_pcs"`
}

type remoteOrderItem struct {
	OrderId  int    `gorm:"column:order_id"`
	ItemId   int    `gorm:"column:item_id"`
	DesignNo string `gorm:"column:design_no"`
	Size     string `gorm:"column:size"`
	Color    string `gorm:"column:color"`
	Quality  string `gorm:"column:quality"`
	Qty      int    `gorm:"column:qty"`
}

type remoteUnit struct {
	StockNo     string `gorm:"column:stock_no"`
	OrderId     int    `gorm:"column:order_id"`
	ItemId      int    `gorm:"column:item_id"`
	ProcessCode int    `gorm:"column:process_code"`
}

type remoteProcess struct {
	ProcessCode int    `gorm:"column:process_code"`
	ProcessName string `gorm:"column:process_name"`
}

// fetchOpenOrders pulls every order matching the "open" predicate.
// The order set is small (hundreds), one query suffices.
func fetchOpenOrders(ctx context.Context, remote *gorm.DB) ([]remoteOrder, error) {
	var orders []remoteOrder
	err := remote.WithContext(ctx).Raw(`
SELECT order_id, order_no, buyer_code, buyer_name, order_date, disp_date, ord_status, tot_pcs
FROM order_master
WHERE disp_date IS NULL AND ord_status <> ?
ORDER BY order_id`, remoteStatusClosed).Scan(&orders).Error
	return orders, err
}

// fetchOrderItems pulls order_detail rows for one bounded batch of
// order ids. The remote server rejects unbounded IN lists, so callers
// chunk the id set.
func fetchOrderItems(ctx context.Context, remote *gorm.DB, orderIds []int) ([]remoteOrderItem, error) {
	var items []remoteOrderItem
	err := remote.WithContext(ctx).Raw(`
SELECT order_id, item_id, design_no, size, color, quality, qty
FROM order_detail
WHERE order_id IN ?
ORDER BY order_id, item_id`, orderIds).Scan(&items).Error
	return items, err
}

// fetchUnits pulls stock_master rows for one sub-batch of order ids.
// This is the multi-million-row table; sub-batches stay small.
func fetchUnits(ctx context.Context, remote *gorm.DB, orderIds []int) ([]remoteUnit, error) {
	var units []remoteUnit
	err := remote.WithContext(ctx).Raw(`
SELECT stock_no, order_id, item_id, process_code
FROM stock_master
WHERE order_id IN ?`, orderIds).Scan(&units).Error
	return units, err
}

func fetchProcessMaster(ctx context.Context, remote *gorm.DB) ([]remoteProcess, error) {
	var procs []remoteProcess
	err := remote.WithContext(ctx).Raw(`
SELECT process_code, process_name
FROM process_master
ORDER BY process_code`).Scan(&procs).Error
	return procs, err
}

const remoteStatusClosed = "CLS"
