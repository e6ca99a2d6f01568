package server

import (
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/ledgerscope/internal/canonical"
	stockdomain "github.com/smallbiznis/ledgerscope/internal/stock/domain"
)

type itemStockResponse struct {
	ItemKey  string  `json:"item_key"`
	ItemName string  `json:"item_name"`
	Qty      float64 `json:"qty"`
	BaseUnit string  `json:"base_unit"`
	PackUnit string  `json:"pack_unit,omitempty"`
	Packs    float64 `json:"packs,omitempty"`
}

type turnoverResponse struct {
	stockdomain.Turnover
	// Nil when turnover is zero and days of inventory is unbounded.
	DaysOfInventory *float64 `json:"days_of_inventory"`
}

func (s *Server) GetItemStock(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		AbortWithError(c, ErrNoDataset)
		return
	}

	itemKey := canonical.MasterKey(c.Param("key"))
	qty, err := s.stockSvc.CurrentStock(c.Request.Context(), ds, itemKey)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item := ds.Items[itemKey]
	resp := itemStockResponse{
		ItemKey:  itemKey,
		ItemName: item.Name,
		Qty:      qty,
		BaseUnit: item.BaseUnit,
		PackUnit: item.PackUnit,
	}
	if item.PackUnit != "" && item.UnitsPerPack > 0 {
		resp.Packs = canonical.ToPacks(qty, item.UnitsPerPack)
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetItemMonths(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		AbortWithError(c, ErrNoDataset)
		return
	}

	months, err := queryMonths(c, 6)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	asOf, err := queryAsOf(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	itemKey := canonical.MasterKey(c.Param("key"))
	buckets, err := s.stockSvc.MonthBuckets(c.Request.Context(), ds, itemKey, months, asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item_key": itemKey,
		"months":   buckets,
	})
}

func (s *Server) GetItemTurnover(c *gin.Context) {
	ds, ok := s.store.Get()
	if !ok {
		AbortWithError(c, ErrNoDataset)
		return
	}

	months, err := queryMonths(c, 12)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	switch months {
	case 3, 6, 12:
	default:
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	asOf, err := queryAsOf(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	itemKey := canonical.MasterKey(strings.TrimSpace(c.Param("key")))
	turnover, err := s.stockSvc.Turnover(c.Request.Context(), ds, itemKey, months, asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := turnoverResponse{Turnover: turnover}
	if !math.IsInf(turnover.DaysOfInventory, 1) {
		days := turnover.DaysOfInventory
		resp.DaysOfInventory = &days
	}

	c.JSON(http.StatusOK, resp)
}
