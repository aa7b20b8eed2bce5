package wipquery

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/openops"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"Company", "Order No", "Buyer Code", "Buyer Name", "Design", "Size",
	"Color", "Quality", "Ordered", "On Loom", "Bazar Received",
	"Finishing", "FG Store", "Packed", "Dispatched", "Untracked", "Area Sqft",
}

// ExportHandler streams the current reconciled view as an xlsx
// download, same filters as the JSON endpoint.
func ExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filters, err := parseFilters(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()

		result, err := QueryWIP(ctx, filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !filters.ShowAll {
			set, exists, err := openops.Load(ctx)
			if err == nil && exists {
				result.Records = FilterOpen(result.Records, set)
			}
		}

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		for col, h := range exportHeaders {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, h)
		}
		for i, r := range result.Records {
			values := []interface{}{
				r.Company, r.OrderNo, r.BuyerCode, r.BuyerName, r.Design,
				r.Size, r.Color, r.Quality, r.OrderedQty, r.OnLoom, r.Bazar,
				r.Finishing, r.FGStore, r.Packed, r.Dispatched, r.Untracked,
				r.AreaSqft.InexactFloat64(),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=wip-%s.xlsx", filters.Company))
		if err := f.Write(c.Writer); err != nil {
			config.LogError(config.GetLogger(), "wipquery", "ExportHandler", "write workbook", nil, err)
		}
	}
}
