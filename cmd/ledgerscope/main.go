package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerscope/internal/aging"
	"github.com/smallbiznis/ledgerscope/internal/config"
	"github.com/smallbiznis/ledgerscope/internal/datasetstore"
	"github.com/smallbiznis/ledgerscope/internal/ingest"
	"github.com/smallbiznis/ledgerscope/internal/observability"
	"github.com/smallbiznis/ledgerscope/internal/predict"
	"github.com/smallbiznis/ledgerscope/internal/server"
	"github.com/smallbiznis/ledgerscope/internal/snapshot"
	"github.com/smallbiznis/ledgerscope/internal/stock"
	"github.com/smallbiznis/ledgerscope/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		datasetstore.Module,

		// Functional domains
		ingest.Module,
		stock.Module,
		aging.Module,
		predict.Module,
		snapshot.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
