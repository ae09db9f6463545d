//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/validatorops/rpcnode/internal/biz"
	"github.com/validatorops/rpcnode/internal/conf"
	"github.com/validatorops/rpcnode/utils"
)

// wireApp init the provisioning runner.
func wireApp(*conf.Bootstrap, log.Logger) (*biz.Runner, error) {
	panic(wire.Build(utils.ProviderSet, biz.ProviderSet))
}
