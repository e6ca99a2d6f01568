package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/ledgerscope/internal/canonical"
	ingestdomain "github.com/smallbiznis/ledgerscope/internal/ingest/domain"
	"go.uber.org/zap"
)

type importResponse struct {
	Kind       ingestdomain.Kind       `json:"kind"`
	Shape      ingestdomain.Shape      `json:"shape"`
	Source     string                  `json:"source"`
	Stats      ingestdomain.MergeStats `json:"stats"`
	Items      int                     `json:"items"`
	Accounts   int                     `json:"accounts"`
	Vouchers   int                     `json:"vouchers"`
	Warnings   []canonical.Warning     `json:"warnings,omitempty"`
	Mismatches []ingestdomain.Mismatch `json:"mismatches,omitempty"`
}

// ImportDocument accepts one raw export document and folds it into the
// current dataset. Data-quality findings come back as warnings in the
// response body, not as request failures.
func (s *Server) ImportDocument(c *gin.Context) {
	kind, err := ingestdomain.ParseKind(c.Param("kind"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := c.GetRawData()
	if err != nil || len(doc) == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	result, err := s.ingestSvc.Ingest(ctx, doc, kind)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	source := strings.TrimSpace(c.GetHeader("X-Source-Name"))
	if source == "" {
		source = "api:" + string(kind)
	}

	now := time.Now().UTC()
	existing, _ := s.store.Get()
	merged, stats := s.ingestSvc.Merge(existing, result, source, now)
	s.store.Replace(merged)

	mismatches := s.ingestSvc.Reconcile(merged)

	if kind == ingestdomain.KindTransactions {
		s.runFeedback(c, merged, now)
	}

	s.log.Info("document imported",
		zap.String("kind", string(kind)),
		zap.String("shape", string(result.Shape)),
		zap.String("source", source),
		zap.Int("vouchers_added", stats.VouchersAdded),
		zap.Int("duplicates_dropped", stats.DuplicatesDropped),
	)

	c.JSON(http.StatusOK, importResponse{
		Kind:       kind,
		Shape:      result.Shape,
		Source:     source,
		Stats:      stats,
		Items:      len(merged.Items),
		Accounts:   len(merged.Accounts),
		Vouchers:   len(merged.Vouchers),
		Warnings:   result.Warnings,
		Mismatches: mismatches,
	})
}

// runFeedback scores and refreshes prediction snapshots after a transactions
// import. Runs inline; each kind's loop logs its own failures and never blocks
// the import response with an error.
func (s *Server) runFeedback(c *gin.Context, ds canonical.Dataset, asOf time.Time) {
	ctx := c.Request.Context()
	s.snapshotSvc.RunFeedback(ctx, ds, canonical.VoucherTypeSale, asOf)
	s.snapshotSvc.RunFeedback(ctx, ds, canonical.VoucherTypePurchase, asOf)
}
