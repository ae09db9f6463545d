package biz

import "github.com/google/wire"

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewPackagesUsecase,
	NewKernelUsecase,
	NewAccountUsecase,
	NewDirsUsecase,
	NewInstallerUsecase,
	NewIdentityUsecase,
	NewLauncherUsecase,
	NewServiceUsecase,
	ProvisionSteps,
	NewRunner,
)
