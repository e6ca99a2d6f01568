package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	agingdomain "github.com/smallbiznis/ledgerscope/internal/aging/domain"
)

func (s *Server) ListOutstanding(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		AbortWithError(c, ErrNoDataset)
		return
	}

	asOf, err := queryAsOf(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	records := s.agingSvc.Outstandings(c.Request.Context(), ds, asOf)

	if raw := strings.TrimSpace(c.Query("kind")); raw != "" {
		kind := agingdomain.Kind(raw)
		if kind != agingdomain.KindReceivable && kind != agingdomain.KindPayable {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filtered := make([]agingdomain.Outstanding, 0, len(records))
		for _, record := range records {
			if record.Kind == kind {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"as_of":       asOf.Format(asOfLayout),
		"outstanding": records,
	})
}

func (s *Server) GetCashBalances(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		AbortWithError(c, ErrNoDataset)
		return
	}

	c.JSON(http.StatusOK, s.agingSvc.CashAndBank(c.Request.Context(), ds))
}
