package utils

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
)

// DryRunSystem logs every action a run would take without touching the host.
type DryRunSystem struct {
	log *log.Helper
}

func NewDryRunSystem(logger log.Logger) *DryRunSystem {
	return &DryRunSystem{log: log.NewHelper(logger)}
}

func (s *DryRunSystem) Run(ctx context.Context, command string, args ...string) (string, error) {
	if len(args) > 0 {
		command = fmt.Sprintf("%s %s", command, strings.Join(args, " "))
	}
	s.log.Info(fmt.Sprintf("dry-run: would run command: %s", command))
	return "", nil
}

func (s *DryRunSystem) RunWithLogging(ctx context.Context, command string, args ...string) error {
	_, err := s.Run(ctx, command, args...)
	return err
}

func (s *DryRunSystem) WriteFile(path, content string, perm fs.FileMode) error {
	s.log.Info(fmt.Sprintf("dry-run: would write %d bytes to %s (mode %o)", len(content), path, perm))
	return nil
}

// Exists reports false so guarded steps log the apply they would perform.
func (s *DryRunSystem) Exists(path string) (bool, error) {
	s.log.Info(fmt.Sprintf("dry-run: would stat %s", path))
	return false, nil
}

func (s *DryRunSystem) MkdirAll(path string, perm fs.FileMode) error {
	s.log.Info(fmt.Sprintf("dry-run: would create directory %s (mode %o)", path, perm))
	return nil
}
