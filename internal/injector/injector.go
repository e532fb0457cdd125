//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"

	"github.com/zeusync/lightengine/internal/config"
	"github.com/zeusync/lightengine/internal/core/gpu"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/engine"
)

// InitializeEngine wires an engine drawing to the surfaces opened by open.
func InitializeEngine(ctx context.Context, cfg *config.Config, open gpu.Opener, logger log.Log) (*engine.Engine, error) {
	wire.Build(engine.ProviderSet)
	return nil, nil
}
