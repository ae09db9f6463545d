package utils

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"github.com/validatorops/rpcnode/internal/conf"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"
)

// RemoteBash implements System against a single remote host over SSH. File
// operations go through SFTP so generated artifacts land on the target, not
// on the machine running the tool.
type RemoteBash struct {
	target     conf.Ssh
	privateKey []byte
	sshClient  *ssh.Client
	sshSession *ssh.Session
	log        *log.Helper
}

func NewRemoteBash(target conf.Ssh, logger log.Logger) (*RemoteBash, error) {
	if target.PrivateKeyFile == "" {
		return nil, errors.New("ssh host is set but ssh private key file is not")
	}
	key, err := os.ReadFile(target.PrivateKeyFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read ssh private key %s", target.PrivateKeyFile)
	}
	if target.Port == 0 {
		target.Port = conf.DefaultSshPort
	}
	return &RemoteBash{target: target, privateKey: key, log: log.NewHelper(logger)}, nil
}

func (s *RemoteBash) connections() (*ssh.Session, error) {
	signer, err := ssh.ParsePrivateKey(s.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse ssh private key")
	}
	sshClient, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", s.target.Host, s.target.Port), &ssh.ClientConfig{
		User:            s.target.User,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	s.sshClient = sshClient
	session, err := sshClient.NewSession()
	if err != nil {
		return nil, err
	}
	s.sshSession = session
	return session, nil
}

func (s *RemoteBash) close() {
	if s.sshSession != nil {
		s.sshSession.Close()
	}
	if s.sshClient != nil {
		s.sshClient.Close()
	}
}

func (s *RemoteBash) Run(ctx context.Context, command string, args ...string) (stdout string, err error) {
	if len(args) > 0 {
		command = fmt.Sprintf("%s %s", command, strings.Join(args, " "))
	}
	s.log.Info(fmt.Sprintf("%s run command: %s", s.target.Host, command))
	session, err := s.connections()
	if err != nil {
		return "", errors.Wrap(err, "failed to create session")
	}
	defer s.close()

	type result struct {
		stdout string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		out, runErr := session.CombinedOutput(command)
		done <- result{stdout: string(out), err: runErr}
	}()
	select {
	case <-ctx.Done():
		session.Close()
		return "", errors.Wrapf(ctx.Err(), "command timed out: %s", command)
	case r := <-done:
		if r.err != nil {
			return r.stdout, errors.Wrapf(r.err, "command failed: %s", command)
		}
		return r.stdout, nil
	}
}

// RunWithLogging runs a command on the target and streams its output into
// the log.
func (s *RemoteBash) RunWithLogging(ctx context.Context, command string, args ...string) error {
	if len(args) > 0 {
		command = fmt.Sprintf("%s %s", command, strings.Join(args, " "))
	}
	s.log.Info(fmt.Sprintf("%s run command: %s", s.target.Host, command))
	session, err := s.connections()
	if err != nil {
		return errors.Wrap(err, "failed to create session")
	}
	defer s.close()

	stdout, err := session.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "failed to create stdout pipe")
	}
	stderr, err := session.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "failed to create stderr pipe")
	}
	if err := session.Start(command); err != nil {
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

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()
	select {
	case <-ctx.Done():
		session.Close()
		return errors.Wrapf(ctx.Err(), "command timed out: %s", command)
	case err := <-done:
		eg.Wait()
		if err != nil {
			return errors.Wrapf(err, "command execution failed: %s", command)
		}
		return nil
	}
}

func (s *RemoteBash) WriteFile(path, content string, perm fs.FileMode) error {
	sftpClient, err := s.sftpConnect()
	if err != nil {
		return err
	}
	defer s.close()
	defer sftpClient.Close()
	dstFile, err := sftpClient.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create remote file %s", path)
	}
	if _, err := dstFile.Write([]byte(content)); err != nil {
		dstFile.Close()
		return errors.Wrapf(err, "failed to write remote file %s", path)
	}
	if err := dstFile.Close(); err != nil {
		return errors.Wrapf(err, "failed to close remote file %s", path)
	}
	if err := sftpClient.Chmod(path, perm); err != nil {
		return errors.Wrapf(err, "failed to chmod remote file %s", path)
	}
	return nil
}

func (s *RemoteBash) Exists(path string) (bool, error) {
	sftpClient, err := s.sftpConnect()
	if err != nil {
		return false, err
	}
	defer s.close()
	defer sftpClient.Close()
	_, err = sftpClient.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to stat remote path %s", path)
}

func (s *RemoteBash) MkdirAll(path string, perm fs.FileMode) error {
	sftpClient, err := s.sftpConnect()
	if err != nil {
		return err
	}
	defer s.close()
	defer sftpClient.Close()
	if err := sftpClient.MkdirAll(path); err != nil {
		return errors.Wrapf(err, "failed to create remote directory %s", path)
	}
	if err := sftpClient.Chmod(path, perm); err != nil {
		return errors.Wrapf(err, "failed to chmod remote directory %s", path)
	}
	return nil
}

func (s *RemoteBash) sftpConnect() (*sftp.Client, error) {
	if _, err := s.connections(); err != nil {
		return nil, err
	}
	sftpClient, err := sftp.NewClient(s.sshClient)
	if err != nil {
		s.close()
		return nil, errors.Wrap(err, "failed to create sftp client")
	}
	return sftpClient, nil
}
