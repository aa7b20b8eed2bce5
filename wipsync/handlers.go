package wipsync

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/models"
	"github.com/texfocus/wiptrack_backend/utils"
)

type SyncRunResponse struct {
	ID           uint    `json:"id"`
	Status       string  `json:"status"`
	StartedAt    string  `json:"startedAt"`
	FinishedAt   *string `json:"finishedAt"`
	OrdersSynced int     `json:"ordersSynced"`
	ItemsSynced  int     `json:"itemsSynced"`
	UnitsSynced  int     `json:"unitsSynced"`
	TriggeredBy  string  `json:"triggeredBy"`
	Errors       string  `json:"errors,omitempty"`
}

type SyncHistoryResponse struct {
	Items []SyncRunResponse `json:"items"`
}

// TriggerSyncHandler starts a manual run in the background. The
// single-flight lease inside the engine guards against overlap with a
// scheduler-invoked run.
func TriggerSyncHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		engine := NewEngine(config.GetDB(), config.GetRemoteDB(), config.GetLogger(), config.GetRedisLock())
		if config.GetRemoteDB() == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "remote source is not configured"})
			return
		}

		// Probe the lease up front so the caller gets a 409 instead of
		// a fire-and-forget into a lost run.
		release, err := engine.acquireLease(c.Request.Context())
		if err != nil {
			if errors.Is(err, ErrSyncInFlight) {
				c.JSON(http.StatusConflict, gin.H{"error": "a sync run is already in flight"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		release()

		runCtx := context.WithoutCancel(c.Request.Context())
		go func() {
			logger := config.GetLogger()
			if _, err := engine.Run(runCtx, models.SyncTriggeredManual); err != nil && !errors.Is(err, ErrSyncInFlight) {
				config.LogError(logger, "wipsync", "TriggerSyncHandler", "background run", nil, err)
			}
		}()

		c.JSON(http.StatusAccepted, gin.H{"started": true})
	}
}

func SyncHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if v := strings.TrimSpace(c.Query("limit")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		runs, err := models.ListSyncRuns(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]SyncRunResponse, 0, len(runs))
		for _, run := range runs {
			items = append(items, mapRunToResponse(run))
		}
		c.JSON(http.StatusOK, SyncHistoryResponse{Items: items})
	}
}

func SyncRunDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		run, err := models.GetSyncRun(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, mapRunToResponse(*run))
	}
}

func mapRunToResponse(run models.SyncRun) SyncRunResponse {
	resp := SyncRunResponse{
		ID:           run.ID,
		Status:       run.Status,
		StartedAt:    run.StartedAt.UTC().Format(time.RFC3339),
		OrdersSynced: run.OrdersSynced,
		ItemsSynced:  run.ItemsSynced,
		UnitsSynced:  run.UnitsSynced,
		TriggeredBy:  run.TriggeredBy,
		Errors:       run.Errors,
	}
	if run.FinishedAt != nil {
		s := run.FinishedAt.UTC().Format(time.RFC3339)
		resp.FinishedAt = &s
	}
	return resp
}
