package predict

import (
	"github.com/smallbiznis/ledgerscope/internal/predict/service"
	"go.uber.org/fx"
)

var Module = fx.Module("predict.service",
	fx.Provide(service.NewService),
)
