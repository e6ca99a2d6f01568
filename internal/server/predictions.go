package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/ledgerscope/internal/canonical"
	snapshotdomain "github.com/smallbiznis/ledgerscope/internal/snapshot/domain"
)

func predictionKind(raw string) (canonical.VoucherType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "sale":
		return canonical.VoucherTypeSale, nil
	case "purchase":
		return canonical.VoucherTypePurchase, nil
	default:
		return "", snapshotdomain.ErrInvalidKind
	}
}

func (s *Server) ListPredictions(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		AbortWithError(c, ErrNoDataset)
		return
	}

	kind, err := predictionKind(c.Query("kind"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	asOf, err := queryAsOf(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	patterns := s.predictSvc.Predict(c.Request.Context(), ds, kind, asOf)

	c.JSON(http.StatusOK, gin.H{
		"kind":     kind,
		"as_of":    asOf.Format(asOfLayout),
		"patterns": patterns,
	})
}

func (s *Server) ListPredictionAccuracy(c *gin.Context) {
	limit := 100
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		limit = parsed
	}

	records, err := s.snapshotSvc.AccuracyHistory(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accuracy": records})
}
