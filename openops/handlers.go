package openops

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/models"
	"github.com/texfocus/wiptrack_backend/utils"
)

type UploadResponse struct {
	OpsCount    int      `json:"opsCount"`
	MaxSequence int      `json:"maxSequence"`
	NewOrders   []string `json:"newOrders"`
}

// UploadHandler ingests the spreadsheet export of currently open order
// numbers. The stored document is replaced wholesale; the response also
// reports uploaded numbers that match no order currently known to
// either source, which is how newly placed orders are spotted.
func UploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		defer file.Close()

		opsNumbers, maxSequence, err := ParseOpsSheet(file)
		if err != nil {
			if errors.Is(err, ErrEmptyDocument) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read spreadsheet: " + err.Error()})
			return
		}

		ctx := c.Request.Context()
		if _, err := models.SaveOpenOpsDocument(ctx, header.Filename, opsNumbers, maxSequence); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		invalidateCache()

		newOrders, err := detectNewOrders(ctx, opsNumbers)
		if err != nil {
			// New-order detection is informational; the upload itself
			// already succeeded.
			config.LogError(config.GetLogger(), "openops", "UploadHandler", "new order detection", nil, err)
		}

		c.JSON(http.StatusOK, UploadResponse{
			OpsCount:    len(opsNumbers),
			MaxSequence: maxSequence,
			NewOrders:   newOrders,
		})
	}
}

// detectNewOrders returns uploaded numbers matching no order identifier
// known to the mirror or the live source.
func detectNewOrders(ctx context.Context, opsNumbers []string) ([]string, error) {
	known := map[string]struct{}{}

	var mirrorNos []string
	if err := config.GetDB().WithContext(ctx).
		Model(&models.MirrorOrder{}).
		Distinct().
		Pluck("order_no", &mirrorNos).Error; err != nil {
		return nil, err
	}
	for _, no := range mirrorNos {
		known[utils.NormalizeOrderNo(no)] = struct{}{}
	}

	if live := config.GetLiveDB(); live != nil {
		var liveNos []string
		if err := live.WithContext(ctx).
			Raw(`SELECT DISTINCT order_no FROM order_hdr WHERE status IN ('OPEN' , 'INV')`).
			Scan(&liveNos).Error; err != nil {
			return nil, err
		}
		for _, no := range liveNos {
			known[utils.NormalizeOrderNo(no)] = struct{}{}
		}
	}

	newOrders := make([]string, 0)
	for _, no := range opsNumbers {
		if _, ok := known[strings.ToUpper(no)]; !ok {
			newOrders = append(newOrders, no)
		}
	}
	return newOrders, nil
}
