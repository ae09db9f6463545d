package utils

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
	"github.com/validatorops/rpcnode/internal/conf"
	"golang.org/x/sync/errgroup"
)

// System is the capability surface every provisioning step acts through:
// command execution plus the few filesystem primitives the steps need. Real
// implementations target the local host or a remote host over SSH; tests and
// dry-run mode substitute fakes.
type System interface {
	Run(ctx context.Context, command string, args ...string) (string, error)
	RunWithLogging(ctx context.Context, command string, args ...string) error
	WriteFile(path, content string, perm fs.FileMode) error
	Exists(path string) (bool, error)
	MkdirAll(path string, perm fs.FileMode) error
}

// NewSystem selects the executor for this run: dry-run recorder, remote host
// over SSH, or the local host.
func NewSystem(c *conf.Bootstrap, logger log.Logger) (System, error) {
	if c.DryRun {
		return NewDryRunSystem(logger), nil
	}
	if c.Ssh.Host != "" {
		return NewRemoteBash(c.Ssh, logger)
	}
	return NewLocalBash(logger), nil
}

type LocalBash struct {
	log *log.Helper
}

func NewLocalBash(logger log.Logger) *LocalBash {
	return &LocalBash{log: log.NewHelper(logger)}
}

func (s *LocalBash) Run(ctx context.Context, command string, args ...string) (string, error) {
	if len(args) > 0 {
		command = fmt.Sprintf("%s %s", command, strings.Join(args, " "))
	}
	s.log.Info(fmt.Sprintf("run command: %s", command))
	cmd := exec.CommandContext(ctx, "/bin/bash", "-c", command)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	err := cmd.Run()
	stdout := stdoutBuf.String()
	if stderr := stderrBuf.String(); stderr != "" {
		s.log.Warnf("command execution produced stderr: %s", stderr)
	}
	if err != nil {
		return stdout, errors.Wrapf(err, "command failed: %s", command)
	}
	return stdout, nil
}

// RunWithLogging runs a command and streams its output into the log.
func (s *LocalBash) RunWithLogging(ctx context.Context, command string, args ...string) error {
	if len(args) > 0 {
		command = fmt.Sprintf("%s %s", command, strings.Join(args, " "))
	}
	s.log.Info(fmt.Sprintf("run command: %s", command))
	cmd := exec.CommandContext(ctx, "/bin/bash", "-c", command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "failed to create stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "failed to create stderr pipe")
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start command: %s", command)
	}

	eg := new(errgroup.Group)
	eg.Go(func() error {
		logOutput(stdout, "STDOUT", s.log.Info)
		return nil
	})
	eg.Go(func() error {
		logOutput(stderr, "STDERR", s.log.Warn)
		return nil
	})
	eg.Wait()

	if err := cmd.Wait(); err != nil {
		return errors.Wrapf(err, "command execution failed: %s", command)
	}
	return nil
}

func (s *LocalBash) WriteFile(path, content string, perm fs.FileMode) error {
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return errors.Wrapf(err, "failed to write file %s", path)
	}
	// WriteFile does not touch permissions of a pre-existing file.
	if err := os.Chmod(path, perm); err != nil {
		return errors.Wrapf(err, "failed to chmod file %s", path)
	}
	return nil
}

func (s *LocalBash) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to stat %s", path)
}

func (s *LocalBash) MkdirAll(path string, perm fs.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", path)
	}
	return nil
}

func logOutput(pipe io.Reader, prefix string, logFunc func(args ...any)) {
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		logFunc(fmt.Sprintf("%s: %s", prefix, scanner.Text()))
	}
}
