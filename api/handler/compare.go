package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sanjaypinna/price-fetcher/compare"
	"github.com/sanjaypinna/price-fetcher/models"
)

// Compare returns a handler for POST /api/v1/compare.
//
// Orchestration flow:
//  1. Parse & validate request.
//  2. Comparer.Compare → discovered sites + ordered records.
//  3. Fill Timing, return 200 — an empty result list is still a success.
func Compare(cmp *compare.Comparer) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.CompareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.CompareResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidRequest,
					Message: err.Error(),
				},
			})
			return
		}

		result, err := cmp.Compare(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}

		c.JSON(http.StatusOK, models.CompareResponse{
			Success: true,
			Sites:   result.Sites,
			Results: result.Records,
			Timing: models.TimingInfo{
				TotalMs:     time.Since(totalStart).Milliseconds(),
				DiscoveryMs: result.DiscoveryDuration.Milliseconds(),
			},
		})
	}
}

// respondError maps a CompareError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var cmpErr *models.CompareError
	if !errors.As(err, &cmpErr) {
		cmpErr = models.NewCompareError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(cmpErr), models.CompareResponse{
		Success: false,
		Error:   cmpErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.CompareError) int {
	switch e.Code {
	case models.ErrCodeInvalidRequest:
		return http.StatusBadRequest // 400
	case models.ErrCodeDiscoveryRejected:
		return http.StatusBadGateway // 502
	case models.ErrCodeDiscoveryExhausted:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
