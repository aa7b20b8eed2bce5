package wipquery

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/models"
	"github.com/texfocus/wiptrack_backend/openops"
	"github.com/texfocus/wiptrack_backend/utils"
)

// WIPHandler serves the merged work-in-progress view. Closed orders
// are hidden unless showAll is requested; with no open-ops document
// uploaded yet there is no ground truth to reconcile against and
// everything stays visible.
func WIPHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filters, err := parseFilters(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := utils.SetCompanyScopeInContext(c.Request.Context(), filters.Company)

		result, err := QueryWIP(ctx, filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if !filters.ShowAll {
			set, exists, err := openops.Load(ctx)
			if err != nil {
				config.LogError(config.GetLogger(), "wipquery", "WIPHandler", "load open ops set", nil, err)
			} else if exists {
				result.Records = FilterOpen(result.Records, set)
			}
		}

		c.JSON(http.StatusOK, result)
	}
}

// SyncStatusHandler reports per-source freshness without running the
// full merged query.
func SyncStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SyncStatus{
			LiveSource:     liveSourceStatus(),
			MirroredSource: mirroredSourceStatus(c.Request.Context()),
		})
	}
}

func parseFilters(c *gin.Context) (Filters, error) {
	company := strings.TrimSpace(c.Query("company"))
	switch company {
	case "", models.CompanyAll:
		company = models.CompanyAll
	case models.CompanyA, models.CompanyB:
	default:
		return Filters{}, errInvalidCompany
	}
	return Filters{
		Company: company,
		Buyer:   strings.TrimSpace(c.Query("buyer")),
		Search:  strings.TrimSpace(c.Query("search")),
		ShowAll: strings.EqualFold(strings.TrimSpace(c.Query("showAll")), "true"),
	}, nil
}

var errInvalidCompany = errors.New("company must be one of all, A, B")
