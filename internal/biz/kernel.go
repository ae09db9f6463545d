package biz

import (
	"context"
	"runtime"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
	"github.com/validatorops/rpcnode/internal/conf"
	"github.com/validatorops/rpcnode/utils"
	"golang.org/x/sys/unix"
)

const (
	SysctlConfPath = "/etc/sysctl.d/21-solana-validator.conf"
	LimitsConfPath = "/etc/security/limits.d/90-solana-nofiles.conf"

	nofileLimit = 1000000
)

// UDP buffer, map count and fd tunables the validator needs. Content is
// fixed; rewriting the same bytes each run keeps the step re-runnable.
const sysctlConf = `net.core.rmem_default=134217728
net.core.rmem_max=134217728
net.core.wmem_default=134217728
net.core.wmem_max=134217728
net.core.optmem_max=134217728
net.core.netdev_max_backlog=1000
vm.max_map_count=1000000
vm.swappiness=30
vm.stat_interval=10
fs.nr_open=1000000
fs.file-max=1000000
`

const limitsConf = `* - nofile 1000000
* - nproc 1000000
`

type KernelUsecase struct {
	c   *conf.Bootstrap
	sys utils.System
	log *log.Helper
}

func NewKernelUsecase(c *conf.Bootstrap, sys utils.System, logger log.Logger) *KernelUsecase {
	return &KernelUsecase{c: c, sys: sys, log: log.NewHelper(logger)}
}

func (u *KernelUsecase) Name() string {
	return "kernel-tuning"
}

func (u *KernelUsecase) IsSatisfied(ctx context.Context) (bool, error) {
	return false, nil
}

func (u *KernelUsecase) Apply(ctx context.Context) error {
	if err := u.sys.WriteFile(SysctlConfPath, sysctlConf, 0644); err != nil {
		return errors.Wrap(err, "failed to write sysctl config")
	}
	if err := u.sys.WriteFile(LimitsConfPath, limitsConf, 0644); err != nil {
		return errors.Wrap(err, "failed to write limits config")
	}
	if err := u.sys.RunWithLogging(ctx, "sysctl", "--system"); err != nil {
		return errors.Wrap(err, "failed to apply sysctl settings")
	}
	u.reportRlimit()
	return nil
}

// reportRlimit surfaces a too-low fd ceiling early instead of letting the
// validator discover it at startup. Informational only; limits.d entries take
// effect on the service account's next session, not ours.
func (u *KernelUsecase) reportRlimit() {
	if runtime.GOOS != "linux" || u.c.Ssh.Host != "" {
		return
	}
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		u.log.Warnf("failed to read nofile rlimit: %v", err)
		return
	}
	if rl.Max < nofileLimit {
		u.log.Warnf("nofile hard limit is %d, validator wants %d; takes effect after re-login", rl.Max, nofileLimit)
	}
}
