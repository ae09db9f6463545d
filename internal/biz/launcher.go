package biz

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
	"github.com/validatorops/rpcnode/component"
	"github.com/validatorops/rpcnode/internal/conf"
	"github.com/validatorops/rpcnode/utils"
)

const (
	ServiceUnitName = "solana-rpc"
	ServiceUnitPath = "/etc/systemd/system/solana-rpc.service"
)

type launchScriptData struct {
	IdentityPath           string
	LedgerDir              string
	AccountsDir            string
	LogDir                 string
	Entrypoints            []string
	RpcBindAddress         string
	RpcPort                int32
	DynamicPortRange       string
	LimitLedgerSize        bool
	LedgerShredLimit       uint64
	EnableTxHistory        bool
	EnableCpiAndLogStorage bool
}

// LauncherUsecase renders the wrapper script that assembles the validator's
// command line. The script is overwritten on every run so configuration
// changes always take effect, unlike the guarded account and identity steps.
type LauncherUsecase struct {
	c   *conf.Bootstrap
	sys utils.System
	log *log.Helper
}

func NewLauncherUsecase(c *conf.Bootstrap, sys utils.System, logger log.Logger) *LauncherUsecase {
	return &LauncherUsecase{c: c, sys: sys, log: log.NewHelper(logger)}
}

func (u *LauncherUsecase) Name() string {
	return "launch-script"
}

func (u *LauncherUsecase) IsSatisfied(ctx context.Context) (bool, error) {
	return false, nil
}

// ScriptPath is the location of the generated wrapper under the data root.
func (u *LauncherUsecase) ScriptPath() string {
	return filepath.Join(u.c.Service.DataDir, "bin", "validator.sh")
}

func (u *LauncherUsecase) Apply(ctx context.Context) error {
	content, err := component.Render(component.LaunchScript, launchScriptData{
		IdentityPath:           u.c.Service.IdentityPath,
		LedgerDir:              u.c.Service.LedgerDir,
		AccountsDir:            u.c.Service.AccountsDir,
		LogDir:                 u.c.Service.LogDir,
		Entrypoints:            u.c.Network.Entrypoints,
		RpcBindAddress:         u.c.Network.RpcBindAddress,
		RpcPort:                u.c.Network.RpcPort,
		DynamicPortRange:       u.c.Network.DynamicPortRange,
		LimitLedgerSize:        u.c.Features.LimitLedgerSize,
		LedgerShredLimit:       u.c.Features.LedgerShredLimit,
		EnableTxHistory:        u.c.Features.EnableTxHistory,
		EnableCpiAndLogStorage: u.c.Features.EnableCpiAndLogStorage,
	})
	if err != nil {
		return err
	}
	scriptPath := u.ScriptPath()
	if err := u.sys.MkdirAll(filepath.Dir(scriptPath), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", filepath.Dir(scriptPath))
	}
	if err := u.sys.WriteFile(scriptPath, content, 0755); err != nil {
		return errors.Wrapf(err, "failed to write launch script %s", scriptPath)
	}
	owner := fmt.Sprintf("%s:%s", u.c.Service.User, u.c.Service.User)
	if err := u.sys.RunWithLogging(ctx, "chown", "-R", owner, filepath.Dir(scriptPath)); err != nil {
		return errors.Wrapf(err, "failed to set ownership of %s", scriptPath)
	}
	return nil
}

type serviceUnitData struct {
	User         string
	LaunchScript string
	LogDir       string
}

// ServiceUsecase renders and activates the systemd unit that keeps the
// validator running. Terminal step of the run; after enable --now the OS
// supervisor owns the process, including restart-on-crash.
type ServiceUsecase struct {
	c        *conf.Bootstrap
	sys      utils.System
	launcher *LauncherUsecase
	log      *log.Helper
}

func NewServiceUsecase(c *conf.Bootstrap, sys utils.System, launcher *LauncherUsecase, logger log.Logger) *ServiceUsecase {
	return &ServiceUsecase{c: c, sys: sys, launcher: launcher, log: log.NewHelper(logger)}
}

func (u *ServiceUsecase) Name() string {
	return "service-unit"
}

func (u *ServiceUsecase) IsSatisfied(ctx context.Context) (bool, error) {
	return false, nil
}

func (u *ServiceUsecase) Apply(ctx context.Context) error {
	content, err := component.Render(component.ServiceUnit, serviceUnitData{
		User:         u.c.Service.User,
		LaunchScript: u.launcher.ScriptPath(),
		LogDir:       u.c.Service.LogDir,
	})
	if err != nil {
		return err
	}
	if err := u.sys.WriteFile(ServiceUnitPath, content, 0644); err != nil {
		return errors.Wrapf(err, "failed to write service unit %s", ServiceUnitPath)
	}
	if err := u.sys.RunWithLogging(ctx, "systemctl", "daemon-reload"); err != nil {
		return errors.Wrap(err, "failed to reload systemd units")
	}
	if err := u.sys.RunWithLogging(ctx, "systemctl", "enable", "--now", ServiceUnitName); err != nil {
		return errors.Wrapf(err, "failed to enable service %s", ServiceUnitName)
	}
	u.log.Infof("service %s started; check it with: systemctl status %s", ServiceUnitName, ServiceUnitName)
	return nil
}
