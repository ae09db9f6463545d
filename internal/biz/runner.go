package biz

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
	"github.com/validatorops/rpcnode/internal/conf"
	"github.com/validatorops/rpcnode/utils"
)

// Step is one provisioning action. IsSatisfied reports whether the host is
// already in the state Apply would produce; satisfied steps are skipped.
type Step interface {
	Name() string
	IsSatisfied(ctx context.Context) (bool, error)
	Apply(ctx context.Context) error
}

// Runner executes steps strictly in order and aborts the whole run on the
// first failure. Nothing applied before the failure is rolled back; the host
// is left as-is for inspection and the run is safe to repeat.
type Runner struct {
	c     *conf.Bootstrap
	sys   utils.System
	steps []Step
	log   *log.Helper
}

func NewRunner(c *conf.Bootstrap, sys utils.System, steps []Step, logger log.Logger) *Runner {
	return &Runner{
		c:     c,
		sys:   sys,
		steps: steps,
		log:   log.NewHelper(logger),
	}
}

func (r *Runner) Run(ctx context.Context) error {
	if err := r.checkPrivilege(ctx); err != nil {
		return err
	}
	for _, step := range r.steps {
		satisfied, err := step.IsSatisfied(ctx)
		if err != nil {
			return errors.Wrapf(err, "step %s: failed to check state", step.Name())
		}
		if satisfied {
			r.log.Infof("step %s already satisfied, skipping", step.Name())
			continue
		}
		r.log.Infof("step %s: applying", step.Name())
		if err := step.Apply(ctx); err != nil {
			return errors.Wrapf(err, "step %s", step.Name())
		}
		r.log.Infof("step %s: done", step.Name())
	}
	return nil
}

// checkPrivilege gates the whole run on administrative privilege before any
// step mutates the host. Asking the executor keeps the check uniform for
// local and remote targets.
func (r *Runner) checkPrivilege(ctx context.Context) error {
	if r.c.DryRun {
		return nil
	}
	out, err := r.sys.Run(ctx, "id", "-u")
	if err != nil {
		return errors.Wrap(err, "failed to determine effective uid")
	}
	if strings.TrimSpace(out) != "0" {
		return errors.New("must be run as root")
	}
	return nil
}

// ProvisionSteps fixes the order of the full provisioning sequence. Later
// steps assume earlier ones succeeded.
func ProvisionSteps(
	packages *PackagesUsecase,
	kernel *KernelUsecase,
	account *AccountUsecase,
	dirs *DirsUsecase,
	installer *InstallerUsecase,
	identity *IdentityUsecase,
	launcher *LauncherUsecase,
	service *ServiceUsecase,
) []Step {
	return []Step{packages, kernel, account, dirs, installer, identity, launcher, service}
}
