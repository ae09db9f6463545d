package biz

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
	"github.com/validatorops/rpcnode/internal/conf"
	"github.com/validatorops/rpcnode/utils"
)

// activeReleaseBin is where the upstream installer links the fetched
// validator toolchain inside the service account's home.
const activeReleaseBin = ".local/share/solana/install/active_release/bin"

// InstallerUsecase fetches and runs the upstream validator-toolchain
// installer as the service account. The installer is a black box expected to
// no-op when the toolchain is already current, so the step carries no local
// guard of its own.
type InstallerUsecase struct {
	c   *conf.Bootstrap
	sys utils.System
	log *log.Helper
}

func NewInstallerUsecase(c *conf.Bootstrap, sys utils.System, logger log.Logger) *InstallerUsecase {
	return &InstallerUsecase{c: c, sys: sys, log: log.NewHelper(logger)}
}

func (u *InstallerUsecase) Name() string {
	return "validator-binaries"
}

func (u *InstallerUsecase) IsSatisfied(ctx context.Context) (bool, error) {
	return false, nil
}

func (u *InstallerUsecase) Apply(ctx context.Context) error {
	if u.c.Install.InstallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.c.Install.InstallTimeout)
		defer cancel()
	}
	command := fmt.Sprintf("runuser -u %s -- sh -c 'curl -sSfL %s | sh'",
		u.c.Service.User, u.c.Install.InstallerUrl)
	if err := u.sys.RunWithLogging(ctx, command); err != nil {
		return errors.Wrapf(err, "failed to run installer from %s", u.c.Install.InstallerUrl)
	}
	return nil
}

// IdentityUsecase ensures the validator identity keypair exists. An existing
// identity is never regenerated or overwritten, whatever the configuration
// says; losing a node identity by re-running the tool must be impossible.
type IdentityUsecase struct {
	c   *conf.Bootstrap
	sys utils.System
	log *log.Helper
}

func NewIdentityUsecase(c *conf.Bootstrap, sys utils.System, logger log.Logger) *IdentityUsecase {
	return &IdentityUsecase{c: c, sys: sys, log: log.NewHelper(logger)}
}

func (u *IdentityUsecase) Name() string {
	return "validator-identity"
}

func (u *IdentityUsecase) IsSatisfied(ctx context.Context) (bool, error) {
	return u.sys.Exists(u.c.Service.IdentityPath)
}

func (u *IdentityUsecase) Apply(ctx context.Context) error {
	if u.c.Install.KeygenTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.c.Install.KeygenTimeout)
		defer cancel()
	}
	parent := filepath.Dir(u.c.Service.IdentityPath)
	if err := u.sys.MkdirAll(parent, 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", parent)
	}
	command := fmt.Sprintf(
		`runuser -u %s -- sh -lc 'PATH="$HOME/%s:$PATH" solana-keygen new --no-bip39-passphrase -o %s'`,
		u.c.Service.User, activeReleaseBin, u.c.Service.IdentityPath)
	if err := u.sys.RunWithLogging(ctx, command); err != nil {
		return errors.Wrapf(err, "failed to generate identity keypair at %s", u.c.Service.IdentityPath)
	}
	return nil
}
