package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Service.User != "sol" {
		t.Errorf("default user = %s", c.Service.User)
	}
	if c.Service.LedgerDir != "/home/sol/ledger" {
		t.Errorf("ledger dir not derived: %s", c.Service.LedgerDir)
	}
	if c.Service.IdentityPath != "/home/sol/validator-keypair.json" {
		t.Errorf("identity path not derived: %s", c.Service.IdentityPath)
	}
	if c.Network.RpcPort != 8899 {
		t.Errorf("default rpc port = %d", c.Network.RpcPort)
	}
	if len(c.Network.Entrypoints) != 3 {
		t.Errorf("want 3 entrypoints, got %d", len(c.Network.Entrypoints))
	}
	if !c.Features.EnableTxHistory || !c.Features.EnableCpiAndLogStorage || !c.Features.LimitLedgerSize {
		t.Error("feature flags must default to enabled")
	}
	if c.Install.InstallTimeout != 15*time.Minute {
		t.Errorf("default install timeout = %s", c.Install.InstallTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVICE_USER", "validator")
	t.Setenv("DATA_DIR", "/mnt/data")
	t.Setenv("LEDGER_DIR", "/mnt/nvme/ledger")
	t.Setenv("RPC_PORT", "9899")
	t.Setenv("ENABLE_TX_HISTORY", "false")
	t.Setenv("ENTRYPOINT_2", "entrypoint.testnet.solana.com:8001")
	t.Setenv("KEYGEN_TIMEOUT", "30s")

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Service.User != "validator" {
		t.Errorf("user override lost: %s", c.Service.User)
	}
	// explicit override wins, the rest derive from the new data root
	if c.Service.LedgerDir != "/mnt/nvme/ledger" {
		t.Errorf("explicit ledger dir lost: %s", c.Service.LedgerDir)
	}
	if c.Service.AccountsDir != "/mnt/data/accounts" {
		t.Errorf("accounts dir not derived from data root: %s", c.Service.AccountsDir)
	}
	if c.Network.RpcPort != 9899 {
		t.Errorf("rpc port override lost: %d", c.Network.RpcPort)
	}
	if c.Features.EnableTxHistory {
		t.Error("tx history override lost")
	}
	if c.Features.EnableCpiAndLogStorage != true || c.Features.LimitLedgerSize != true {
		t.Error("untouched feature flags must keep their defaults")
	}
	if c.Network.Entrypoints[1] != "entrypoint.testnet.solana.com:8001" {
		t.Errorf("entrypoint override lost: %v", c.Network.Entrypoints)
	}
	if c.Install.KeygenTimeout != 30*time.Second {
		t.Errorf("keygen timeout override lost: %s", c.Install.KeygenTimeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `service:
  user: rpc
  dataDir: /srv/solana
network:
  rpcPort: 8999
ssh:
  host: 10.0.0.5
  privateKeyFile: /root/.ssh/id_ed25519
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RPCNODE_CONFIG", path)

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Service.User != "rpc" {
		t.Errorf("yaml user lost: %s", c.Service.User)
	}
	if c.Service.SnapshotsDir != "/srv/solana/snapshots" {
		t.Errorf("snapshots dir not derived from yaml data root: %s", c.Service.SnapshotsDir)
	}
	if c.Network.RpcPort != 8999 {
		t.Errorf("yaml rpc port lost: %d", c.Network.RpcPort)
	}
	if c.Ssh.Host != "10.0.0.5" {
		t.Errorf("yaml ssh host lost: %s", c.Ssh.Host)
	}
	if c.Ssh.Port != DefaultSshPort {
		t.Errorf("ssh port must keep its default: %d", c.Ssh.Port)
	}

	t.Run("EnvBeatsFile", func(t *testing.T) {
		t.Setenv("SERVICE_USER", "sol2")
		c, err := Load()
		if err != nil {
			t.Fatal(err)
		}
		if c.Service.User != "sol2" {
			t.Errorf("env must override the config file: %s", c.Service.User)
		}
	})
}

func TestLoadBadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("service: ["), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RPCNODE_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Error("malformed config file must fail the load")
	}
}
