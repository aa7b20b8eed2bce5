package wipquery

import (
	"context"
	"strings"

	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/models"
	"github.com/texfocus/wiptrack_backend/utils"
	"github.com/texfocus/wiptrack_backend/wipsync"
)

// Both source queries compute the six stage counts per order line item
// with grouped conditional counting, each in its own schema's column
// names. Filter clauses are toggled via SQL templates; values are
// always bound parameters, never interpolated.

const liveWIPSQL = `
SELECT
    'A' AS company,
    oh.order_no,
    oh.buyer_code,
    oh.buyer_name,
    oi.design_no AS design,
    oi.size,
    oi.colour AS color,
    oi.quality,
    oi.order_pcs AS ordered_qty,
    SUM(CASE WHEN pt.bazar_date IS NULL THEN 1 ELSE 0 END) AS on_loom,
    SUM(CASE WHEN pt.bazar_date IS NOT NULL AND pt.finish_date IS NULL THEN 1 ELSE 0 END) AS bazar,
    SUM(CASE WHEN pt.finish_date IS NOT NULL AND pt.fgs_date IS NULL THEN 1 ELSE 0 END) AS finishing,
    SUM(CASE WHEN pt.fgs_date IS NOT NULL AND pt.pack_date IS NULL THEN 1 ELSE 0 END) AS fg_store,
    SUM(CASE WHEN pt.pack_date IS NOT NULL AND pt.disp_date IS NULL THEN 1 ELSE 0 END) AS packed,
    SUM(CASE WHEN pt.disp_date IS NOT NULL THEN 1 ELSE 0 END) AS dispatched
FROM
    order_hdr oh
        JOIN
    order_item oi ON oi.order_no = oh.order_no
        LEFT JOIN
    piece_tracking pt ON pt.order_no = oi.order_no AND pt.item_no = oi.item_no
WHERE
    oh.status IN ('OPEN' , 'INV')
    {{- if .buyer }} AND oh.buyer_code = @buyer {{- end }}
    {{- if .search }} AND (LOWER(oh.order_no) LIKE @search
        OR LOWER(oh.buyer_name) LIKE @search
        OR LOWER(oi.design_no) LIKE @search) {{- end }}
GROUP BY oh.order_no , oi.item_no`

const mirrorWIPSQL = `
SELECT
    'B' AS company,
    mo.order_no,
    mo.buyer_code,
    mo.buyer_name,
    mi.design,
    mi.size,
    mi.color,
    mi.quality,
    mi.ordered_qty,
    mi.area_sqft,
    SUM(CASE WHEN mu.wip_stage = 'on_loom' THEN 1 ELSE 0 END) AS on_loom,
    0 AS bazar,
    SUM(CASE WHEN mu.wip_stage = 'finishing' THEN 1 ELSE 0 END) AS finishing,
    SUM(CASE WHEN mu.wip_stage = 'finished_goods_store' THEN 1 ELSE 0 END) AS fg_store,
    SUM(CASE WHEN mu.wip_stage = 'packed' THEN 1 ELSE 0 END) AS packed,
    SUM(CASE WHEN mu.wip_stage = 'dispatched' THEN 1 ELSE 0 END) AS dispatched
FROM
    mirror_order_item mi
        JOIN
    mirror_order mo ON mo.id = mi.order_id
        LEFT JOIN
    mirror_unit mu ON mu.order_item_id = mi.id
WHERE 1 = 1
    {{- if .buyer }} AND mo.buyer_code = @buyer {{- end }}
    {{- if .search }} AND (LOWER(mo.order_no) LIKE @search
        OR LOWER(mo.buyer_name) LIKE @search
        OR LOWER(mi.design) LIKE @search) {{- end }}
GROUP BY mi.id , mo.order_no , mo.buyer_code , mo.buyer_name`

// fetchLiveRecords queries the continuously reachable ERP. Absent
// configuration contributes an empty set.
func fetchLiveRecords(ctx context.Context, filters Filters) ([]models.CanonicalWIPRecord, error) {
	db := config.GetLiveDB()
	if db == nil {
		return nil, nil
	}

	sql, err := utils.ExecTemplate(liveWIPSQL, templateFlags(filters))
	if err != nil {
		return nil, err
	}

	var records []models.CanonicalWIPRecord
	if err := db.WithContext(ctx).Raw(sql, namedParams(filters)).Scan(&records).Error; err != nil {
		return nil, err
	}
	for i := range records {
		// The live schema carries no area column; derive it from the
		// size descriptor the same way the sync engine does.
		records[i].AreaSqft = wipsync.ParseAreaSqft(records[i].Size)
		finishRecord(&records[i])
	}
	return records, nil
}

// fetchMirrorRecords queries the local replica of the remote ERP.
func fetchMirrorRecords(ctx context.Context, filters Filters) ([]models.CanonicalWIPRecord, error) {
	db := config.GetDB()
	if db == nil {
		return nil, nil
	}

	sql, err := utils.ExecTemplate(mirrorWIPSQL, templateFlags(filters))
	if err != nil {
		return nil, err
	}

	var records []models.CanonicalWIPRecord
	if err := db.WithContext(ctx).Raw(sql, namedParams(filters)).Scan(&records).Error; err != nil {
		return nil, err
	}
	for i := range records {
		finishRecord(&records[i])
	}
	return records, nil
}

func templateFlags(filters Filters) map[string]interface{} {
	return map[string]interface{}{
		"buyer":  strings.TrimSpace(filters.Buyer),
		"search": strings.TrimSpace(filters.Search),
	}
}

func namedParams(filters Filters) map[string]interface{} {
	return map[string]interface{}{
		"buyer":  strings.TrimSpace(filters.Buyer),
		"search": "%" + strings.ToLower(strings.TrimSpace(filters.Search)) + "%",
	}
}
