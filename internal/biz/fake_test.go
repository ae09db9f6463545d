package biz

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
	"github.com/validatorops/rpcnode/internal/conf"
)

// fakeSystem records every action a step takes and simulates just enough of
// the host (uid, known users, file presence) for the guards.
type fakeSystem struct {
	uid      string
	users    map[string]bool
	files    map[string]string
	modes    map[string]fs.FileMode
	existing map[string]bool
	dirs     []string
	commands []string
	failOn   string
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		uid:      "0",
		users:    make(map[string]bool),
		files:    make(map[string]string),
		modes:    make(map[string]fs.FileMode),
		existing: make(map[string]bool),
	}
}

func (f *fakeSystem) Run(ctx context.Context, command string, args ...string) (string, error) {
	if len(args) > 0 {
		command = fmt.Sprintf("%s %s", command, strings.Join(args, " "))
	}
	f.commands = append(f.commands, command)
	if f.failOn != "" && strings.Contains(command, f.failOn) {
		return "", errors.Errorf("command failed: %s", command)
	}
	if command == "id -u" {
		return f.uid + "\n", nil
	}
	if name, ok := strings.CutPrefix(command, "id -u "); ok {
		if f.users[name] {
			return "1001\n", nil
		}
		return "", errors.Errorf("id: %s: no such user", name)
	}
	return "", nil
}

func (f *fakeSystem) RunWithLogging(ctx context.Context, command string, args ...string) error {
	_, err := f.Run(ctx, command, args...)
	return err
}

func (f *fakeSystem) WriteFile(path, content string, perm fs.FileMode) error {
	if f.failOn != "" && strings.Contains(path, f.failOn) {
		return errors.Errorf("write failed: %s", path)
	}
	f.files[path] = content
	f.modes[path] = perm
	return nil
}

func (f *fakeSystem) Exists(path string) (bool, error) {
	if f.existing[path] {
		return true, nil
	}
	_, ok := f.files[path]
	return ok, nil
}

func (f *fakeSystem) MkdirAll(path string, perm fs.FileMode) error {
	f.dirs = append(f.dirs, path)
	return nil
}

func (f *fakeSystem) ranCommand(substr string) bool {
	for _, c := range f.commands {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

func testConf() *conf.Bootstrap {
	return &conf.Bootstrap{
		Service: conf.Service{
			User:         "sol",
			DataDir:      "/home/sol",
			LedgerDir:    "/home/sol/ledger",
			AccountsDir:  "/home/sol/accounts",
			LogDir:       "/home/sol/log",
			SnapshotsDir: "/home/sol/snapshots",
			IdentityPath: "/home/sol/validator-keypair.json",
		},
		Network: conf.Network{
			RpcBindAddress:   "0.0.0.0",
			RpcPort:          8899,
			DynamicPortRange: "8000-8020",
			Entrypoints: []string{
				"entrypoint.mainnet-beta.solana.com:8001",
				"entrypoint2.mainnet-beta.solana.com:8001",
				"entrypoint3.mainnet-beta.solana.com:8001",
			},
		},
		Features: conf.Features{
			EnableTxHistory:        true,
			EnableCpiAndLogStorage: true,
			LimitLedgerSize:        true,
		},
		Install: conf.Install{
			InstallerUrl: "https://release.anza.xyz/stable/install",
		},
	}
}

func testLogger() log.Logger {
	return log.NewStdLogger(io.Discard)
}
