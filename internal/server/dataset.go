package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/ledgerscope/internal/canonical"
)

type datasetSummaryResponse struct {
	Company    canonical.Company   `json:"company"`
	Items      int                 `json:"items"`
	Accounts   int                 `json:"accounts"`
	Vouchers   int                 `json:"vouchers"`
	ImportedAt time.Time           `json:"imported_at"`
	Sources    []string            `json:"sources,omitempty"`
	Warnings   []canonical.Warning `json:"warnings,omitempty"`
}

func (s *Server) GetDatasetSummary(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		AbortWithError(c, ErrNoDataset)
		return
	}

	c.JSON(http.StatusOK, datasetSummaryResponse{
		Company:    ds.Company,
		Items:      len(ds.Items),
		Accounts:   len(ds.Accounts),
		Vouchers:   len(ds.Vouchers),
		ImportedAt: ds.ImportedAt,
		Sources:    ds.Sources,
		Warnings:   ds.Warnings,
	})
}
