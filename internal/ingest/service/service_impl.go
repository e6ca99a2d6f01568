package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/ingest/domain"
	"github.com/smallbiznis/ledgerscope/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Metrics *metrics.ImportMetrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	metrics *metrics.ImportMetrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:     p.Log.Named("ingest.service"),
		metrics: p.Metrics,
	}
}

func (s *Service) Ingest(ctx context.Context, doc []byte, kind domain.Kind) (domain.Result, error) {
	start := time.Now()
	decoded, err := DecodeDocument(doc)
	if err != nil {
		return domain.Result{}, fmt.Errorf("decode document: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(decoded, &parsed); err != nil {
		return domain.Result{}, fmt.Errorf("%w: %v", domain.ErrNotJSON, err)
	}

	shape := DetectShape(parsed)
	var res domain.Result
	switch shape {
	case domain.ShapeTagged:
		res = normalizeTagged(taggedRecords(parsed), kind)
	case domain.ShapeEnvelope:
		res = normalizeEnvelope(parsed.(map[string]any), kind)
	case domain.ShapeSimple:
		res = normalizeSimple(parsed.(map[string]any), kind)
	default:
		res = domain.EmptyResult(domain.ShapeUnknown)
		warnf(&res, canonical.SeverityWarn, "document", "no records found")
	}

	s.log.Info("document normalized",
		zap.String("kind", string(kind)),
		zap.String("shape", string(res.Shape)),
		zap.Int("items", len(res.Items)),
		zap.Int("accounts", len(res.Accounts)),
		zap.Int("vouchers", len(res.Vouchers)),
		zap.Int("warnings", len(res.Warnings)),
	)
	if s.metrics != nil {
		s.metrics.RecordNormalized(string(kind), string(res.Shape),
			len(res.Items)+len(res.Accounts)+len(res.Vouchers))
		for _, w := range res.Warnings {
			s.metrics.RecordWarning(string(w.Severity))
		}
		s.metrics.ObserveImportDuration(string(kind), time.Since(start))
	}
	return res, nil
}

// taggedRecords extracts the record list whether the document is a bare array
// or wraps one under a records key.
func taggedRecords(parsed any) []any {
	switch d := parsed.(type) {
	case []any:
		return d
	case map[string]any:
		return fieldList(d, "records", "data")
	default:
		return nil
	}
}
