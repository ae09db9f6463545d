package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
	"github.com/validatorops/rpcnode/internal/conf"
	"github.com/validatorops/rpcnode/utils"
)

// AccountUsecase ensures the unprivileged service account exists. The account
// is created at most once and never deleted by this tool.
type AccountUsecase struct {
	c   *conf.Bootstrap
	sys utils.System
	log *log.Helper
}

func NewAccountUsecase(c *conf.Bootstrap, sys utils.System, logger log.Logger) *AccountUsecase {
	return &AccountUsecase{c: c, sys: sys, log: log.NewHelper(logger)}
}

func (u *AccountUsecase) Name() string {
	return "service-account"
}

func (u *AccountUsecase) IsSatisfied(ctx context.Context) (bool, error) {
	out, err := u.sys.Run(ctx, "id", "-u", u.c.Service.User)
	return err == nil && strings.TrimSpace(out) != "", nil
}

func (u *AccountUsecase) Apply(ctx context.Context) error {
	if err := u.sys.RunWithLogging(ctx, "useradd", "-m", "-s", "/bin/bash", u.c.Service.User); err != nil {
		return errors.Wrapf(err, "failed to create user %s", u.c.Service.User)
	}
	return nil
}

// DirsUsecase creates the data directories and pins their ownership to the
// service account. Ownership is re-applied even when the directories already
// exist, so a changed data root on a re-run is picked up fully.
type DirsUsecase struct {
	c   *conf.Bootstrap
	sys utils.System
	log *log.Helper
}

func NewDirsUsecase(c *conf.Bootstrap, sys utils.System, logger log.Logger) *DirsUsecase {
	return &DirsUsecase{c: c, sys: sys, log: log.NewHelper(logger)}
}

func (u *DirsUsecase) Name() string {
	return "data-directories"
}

func (u *DirsUsecase) IsSatisfied(ctx context.Context) (bool, error) {
	return false, nil
}

func (u *DirsUsecase) Apply(ctx context.Context) error {
	owner := fmt.Sprintf("%s:%s", u.c.Service.User, u.c.Service.User)
	for _, dir := range []string{
		u.c.Service.LedgerDir,
		u.c.Service.AccountsDir,
		u.c.Service.LogDir,
		u.c.Service.SnapshotsDir,
	} {
		if err := u.sys.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
		if err := u.sys.RunWithLogging(ctx, "chown", "-R", owner, dir); err != nil {
			return errors.Wrapf(err, "failed to set ownership of %s", dir)
		}
	}
	return nil
}
