package stock

import (
	"github.com/smallbiznis/ledgerscope/internal/stock/service"
	"go.uber.org/fx"
)

var Module = fx.Module("stock.service",
	fx.Provide(service.NewService),
)
