package conf

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	DefaultServiceUser      = "sol"
	DefaultDataDir          = "/home/sol"
	DefaultRpcBindAddress   = "0.0.0.0"
	DefaultRpcPort          = 8899
	DefaultDynamicPortRange = "8000-8020"
	DefaultInstallerUrl     = "https://release.anza.xyz/stable/install"
	DefaultInstallTimeout   = 15 * time.Minute
	DefaultKeygenTimeout    = 2 * time.Minute
	DefaultSshPort          = 22
	DefaultSshUser          = "root"

	configPathEnv = "RPCNODE_CONFIG"
)

// Service holds the service account and the data layout on the target host.
// Subdirectory paths are derived from DataDir unless set explicitly.
type Service struct {
	User         string `yaml:"user"`
	DataDir      string `yaml:"dataDir"`
	LedgerDir    string `yaml:"ledgerDir"`
	AccountsDir  string `yaml:"accountsDir"`
	LogDir       string `yaml:"logDir"`
	SnapshotsDir string `yaml:"snapshotsDir"`
	IdentityPath string `yaml:"identityPath"`
}

type Network struct {
	RpcBindAddress   string   `yaml:"rpcBindAddress"`
	RpcPort          int32    `yaml:"rpcPort"`
	DynamicPortRange string   `yaml:"dynamicPortRange"`
	Entrypoints      []string `yaml:"entrypoints"`
}

type Features struct {
	EnableTxHistory        bool   `yaml:"enableTxHistory"`
	EnableCpiAndLogStorage bool   `yaml:"enableCpiAndLogStorage"`
	LimitLedgerSize        bool   `yaml:"limitLedgerSize"`
	LedgerShredLimit       uint64 `yaml:"ledgerShredLimit"`
}

type Install struct {
	InstallerUrl   string        `yaml:"installerUrl"`
	InstallTimeout time.Duration `yaml:"installTimeout"`
	KeygenTimeout  time.Duration `yaml:"keygenTimeout"`
}

// Ssh selects a single remote target. When Host is empty the local host is
// provisioned directly.
type Ssh struct {
	Host           string `yaml:"host"`
	Port           int32  `yaml:"port"`
	User           string `yaml:"user"`
	PrivateKeyFile string `yaml:"privateKeyFile"`
}

type Bootstrap struct {
	Service  Service  `yaml:"service"`
	Network  Network  `yaml:"network"`
	Features Features `yaml:"features"`
	Install  Install  `yaml:"install"`
	Ssh      Ssh      `yaml:"ssh"`
	DryRun   bool     `yaml:"dryRun"`
}

func defaultBootstrap() *Bootstrap {
	return &Bootstrap{
		Service: Service{
			User:    DefaultServiceUser,
			DataDir: DefaultDataDir,
		},
		Network: Network{
			RpcBindAddress:   DefaultRpcBindAddress,
			RpcPort:          DefaultRpcPort,
			DynamicPortRange: DefaultDynamicPortRange,
			Entrypoints: []string{
				"entrypoint.mainnet-beta.solana.com:8001",
				"entrypoint2.mainnet-beta.solana.com:8001",
				"entrypoint3.mainnet-beta.solana.com:8001",
			},
		},
		Features: Features{
			EnableTxHistory:        true,
			EnableCpiAndLogStorage: true,
			LimitLedgerSize:        true,
		},
		Install: Install{
			InstallerUrl:   DefaultInstallerUrl,
			InstallTimeout: DefaultInstallTimeout,
			KeygenTimeout:  DefaultKeygenTimeout,
		},
		Ssh: Ssh{
			Port: DefaultSshPort,
			User: DefaultSshUser,
		},
	}
}

// Load builds the run configuration: defaults, then the optional YAML file
// named by RPCNODE_CONFIG, then environment overrides. The returned value is
// treated as immutable for the rest of the run.
func Load() (*Bootstrap, error) {
	c := defaultBootstrap()
	if path := os.Getenv(configPathEnv); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(content, c); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}
	c.applyEnv()
	c.deriveDirs()
	return c, nil
}

func (c *Bootstrap) applyEnv() {
	envString("SERVICE_USER", &c.Service.User)
	envString("DATA_DIR", &c.Service.DataDir)
	envString("LEDGER_DIR", &c.Service.LedgerDir)
	envString("ACCOUNTS_DIR", &c.Service.AccountsDir)
	envString("LOG_DIR", &c.Service.LogDir)
	envString("SNAPSHOTS_DIR", &c.Service.SnapshotsDir)
	envString("IDENTITY_PATH", &c.Service.IdentityPath)

	envString("RPC_BIND_ADDRESS", &c.Network.RpcBindAddress)
	envInt32("RPC_PORT", &c.Network.RpcPort)
	envString("DYNAMIC_PORT_RANGE", &c.Network.DynamicPortRange)
	for len(c.Network.Entrypoints) < 3 {
		c.Network.Entrypoints = append(c.Network.Entrypoints, "")
	}
	if v, ok := os.LookupEnv("ENTRYPOINT_1"); ok {
		c.Network.Entrypoints[0] = v
	}
	if v, ok := os.LookupEnv("ENTRYPOINT_2"); ok {
		c.Network.Entrypoints[1] = v
	}
	if v, ok := os.LookupEnv("ENTRYPOINT_3"); ok {
		c.Network.Entrypoints[2] = v
	}

	envBool("ENABLE_TX_HISTORY", &c.Features.EnableTxHistory)
	envBool("ENABLE_CPI_LOG_STORAGE", &c.Features.EnableCpiAndLogStorage)
	envBool("LIMIT_LEDGER_SIZE", &c.Features.LimitLedgerSize)
	envUint64("LEDGER_SHRED_LIMIT", &c.Features.LedgerShredLimit)

	envString("INSTALLER_URL", &c.Install.InstallerUrl)
	envDuration("INSTALL_TIMEOUT", &c.Install.InstallTimeout)
	envDuration("KEYGEN_TIMEOUT", &c.Install.KeygenTimeout)

	envString("SSH_HOST", &c.Ssh.Host)
	envInt32("SSH_PORT", &c.Ssh.Port)
	envString("SSH_USER", &c.Ssh.User)
	envString("SSH_PRIVATE_KEY_FILE", &c.Ssh.PrivateKeyFile)

	envBool("DRY_RUN", &c.DryRun)
}

// deriveDirs fills paths that were not set explicitly from the data root.
func (c *Bootstrap) deriveDirs() {
	if c.Service.LedgerDir == "" {
		c.Service.LedgerDir = filepath.Join(c.Service.DataDir, "ledger")
	}
	if c.Service.AccountsDir == "" {
		c.Service.AccountsDir = filepath.Join(c.Service.DataDir, "accounts")
	}
	if c.Service.LogDir == "" {
		c.Service.LogDir = filepath.Join(c.Service.DataDir, "log")
	}
	if c.Service.SnapshotsDir == "" {
		c.Service.SnapshotsDir = filepath.Join(c.Service.DataDir, "snapshots")
	}
	if c.Service.IdentityPath == "" {
		c.Service.IdentityPath = filepath.Join(c.Service.DataDir, "validator-keypair.json")
	}
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = cast.ToBool(v)
	}
}

func envInt32(key string, dst *int32) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = cast.ToInt32(v)
	}
}

func envUint64(key string, dst *uint64) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = cast.ToUint64(v)
	}
}

func envDuration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = cast.ToDuration(v)
	}
}
