package snapshot

import (
	"github.com/smallbiznis/ledgerscope/internal/snapshot/repository"
	"github.com/smallbiznis/ledgerscope/internal/snapshot/service"
	"go.uber.org/fx"
)

var Module = fx.Module("snapshot.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
