package biz

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
	"github.com/validatorops/rpcnode/internal/conf"
	"github.com/validatorops/rpcnode/utils"
)

// toolPackages is the fixed tool set the validator host needs on top of a
// stock Ubuntu install. chrony doubles as the time-sync daemon enabled below.
var toolPackages = []string{
	"curl",
	"jq",
	"git",
	"tmux",
	"htop",
	"iotop",
	"build-essential",
	"pkg-config",
	"libssl-dev",
	"chrony",
}

type PackagesUsecase struct {
	c   *conf.Bootstrap
	sys utils.System
	log *log.Helper
}

func NewPackagesUsecase(c *conf.Bootstrap, sys utils.System, logger log.Logger) *PackagesUsecase {
	return &PackagesUsecase{c: c, sys: sys, log: log.NewHelper(logger)}
}

func (u *PackagesUsecase) Name() string {
	return "system-packages"
}

// IsSatisfied always reports false; apt itself is idempotent and re-running
// picks up upstream package updates.
func (u *PackagesUsecase) IsSatisfied(ctx context.Context) (bool, error) {
	return false, nil
}

func (u *PackagesUsecase) Apply(ctx context.Context) error {
	if err := u.sys.RunWithLogging(ctx, "apt-get", "update"); err != nil {
		return errors.Wrap(err, "failed to refresh package index")
	}
	if err := u.sys.RunWithLogging(ctx, "DEBIAN_FRONTEND=noninteractive", "apt-get", "-y", "upgrade"); err != nil {
		return errors.Wrap(err, "failed to upgrade packages")
	}
	installArgs := append([]string{"apt-get", "-y", "install"}, toolPackages...)
	if err := u.sys.RunWithLogging(ctx, "DEBIAN_FRONTEND=noninteractive", installArgs...); err != nil {
		return errors.Wrapf(err, "failed to install packages: %s", strings.Join(toolPackages, " "))
	}
	if err := u.sys.RunWithLogging(ctx, "systemctl", "enable", "--now", "chrony"); err != nil {
		return errors.Wrap(err, "failed to enable time-sync daemon")
	}
	return nil
}
