package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	agingdomain "github.com/smallbiznis/ledgerscope/internal/aging/domain"
	"github.com/smallbiznis/ledgerscope/internal/config"
	"github.com/smallbiznis/ledgerscope/internal/datasetstore"
	ingestdomain "github.com/smallbiznis/ledgerscope/internal/ingest/domain"
	"github.com/smallbiznis/ledgerscope/internal/observability"
	obsmiddleware "github.com/smallbiznis/ledgerscope/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/ledgerscope/internal/observability/metrics"
	predictdomain "github.com/smallbiznis/ledgerscope/internal/predict/domain"
	snapshotdomain "github.com/smallbiznis/ledgerscope/internal/snapshot/domain"
	stockdomain "github.com/smallbiznis/ledgerscope/internal/stock/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.registerAPIRoutes() }),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	store       *datasetstore.Store
	ingestSvc   ingestdomain.Service
	stockSvc    stockdomain.Service
	agingSvc    agingdomain.Service
	predictSvc  predictdomain.Service
	snapshotSvc snapshotdomain.Service
	log         *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Store       *datasetstore.Store
	IngestSvc   ingestdomain.Service
	StockSvc    stockdomain.Service
	AgingSvc    agingdomain.Service
	PredictSvc  predictdomain.Service
	SnapshotSvc snapshotdomain.Service
	Log         *zap.Logger
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		store:       p.Store,
		ingestSvc:   p.IngestSvc,
		stockSvc:    p.StockSvc,
		agingSvc:    p.AgingSvc,
		predictSvc:  p.PredictSvc,
		snapshotSvc: p.SnapshotSvc,
		log:         p.Log.Named("http.server"),
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/imports/:kind", s.ImportDocument)

	api.GET("/dataset/summary", s.GetDatasetSummary)

	// -------- Stock --------
	api.GET("/items/:key/stock", s.GetItemStock)
	api.GET("/items/:key/months", s.GetItemMonths)
	api.GET("/items/:key/turnover", s.GetItemTurnover)

	// -------- Aging / balances --------
	api.GET("/outstanding", s.ListOutstanding)
	api.GET("/balances/cash", s.GetCashBalances)

	// -------- Predictions --------
	api.GET("/predictions", s.ListPredictions)
	api.GET("/predictions/accuracy", s.ListPredictionAccuracy)
}
