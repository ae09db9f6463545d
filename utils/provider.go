package utils

import "github.com/google/wire"

// ProviderSet is executor providers.
var ProviderSet = wire.NewSet(NewSystem)
