package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranklinWaller/Rutile/domain/consensus"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/dagconfig"
	"github.com/pkg/errors"
)

func prepareDir(t *testing.T, testName string) (string, func()) {
	dir, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir: %s", testName, err)
	}
	return dir, func() { os.RemoveAll(dir) }
}

func writeFile(t *testing.T, testName string, path string, content string) {
	err := ioutil.WriteFile(path, []byte(content), 0600)
	if err != nil {
		t.Fatalf("%s: WriteFile: %s", testName, err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir, teardown := prepareDir(t, "TestLoadConfigDefaults")
	defer teardown()

	cfg, err := LoadConfig([]string{
		"--configfile", filepath.Join(dir, "missing.conf"),
		"--datadir", filepath.Join(dir, "data"),
		"--logdir", filepath.Join(dir, "logs"),
	})
	if err != nil {
		t.Fatalf("TestLoadConfigDefaults: LoadConfig: %s", err)
	}
	if cfg.Role != consensus.RoleFull {
		t.Fatalf("TestLoadConfigDefaults: got role %s, want %s", cfg.Role, consensus.RoleFull)
	}
	if cfg.NetParams().Name != dagconfig.MainnetParams.Name {
		t.Fatalf("TestLoadConfigDefaults: got network %s, want %s", cfg.NetParams().Name, dagconfig.MainnetParams.Name)
	}
	if cfg.DataDir != filepath.Join(dir, "data", "mainnet") {
		t.Fatalf("TestLoadConfigDefaults: the data directory %s is not namespaced by network", cfg.DataDir)
	}
	if cfg.LogFile() != filepath.Join(dir, "logs", "mainnet", defaultLogFilename) {
		t.Fatalf("TestLoadConfigDefaults: unexpected log file %s", cfg.LogFile())
	}
	if cfg.NATS != "" || cfg.BlockInterval != 0 {
		t.Fatalf("TestLoadConfigDefaults: unexpected defaults nats=%q blockinterval=%s", cfg.NATS, cfg.BlockInterval)
	}

	consensusConfig := cfg.ConsensusConfig()
	if consensusConfig.MilestoneInterval != dagconfig.MainnetParams.MilestoneInterval {
		t.Fatalf("TestLoadConfigDefaults: got milestone interval %s, want %s",
			consensusConfig.MilestoneInterval, dagconfig.MainnetParams.MilestoneInterval)
	}
}

func TestCommandLineOverridesConfigFile(t *testing.T) {
	dir, teardown := prepareDir(t, "TestCommandLineOverridesConfigFile")
	defer teardown()

	configFile := filepath.Join(dir, "rutiled.conf")
	writeFile(t, "TestCommandLineOverridesConfigFile", configFile, "[Application Options]\n"+
		"role=light\n"+
		"nats=nats://127.0.0.1:4222\n"+
		"blockinterval=3s\n"+
		"devnet=true\n")

	cfg, err := LoadConfig([]string{
		"--configfile", configFile,
		"--datadir", dir,
		"--logdir", dir,
		"--role", "client",
		"--milestoneinterval", "750ms",
	})
	if err != nil {
		t.Fatalf("TestCommandLineOverridesConfigFile: LoadConfig: %s", err)
	}
	if cfg.Role != consensus.RoleClient {
		t.Fatalf("TestCommandLineOverridesConfigFile: got role %s, want %s", cfg.Role, consensus.RoleClient)
	}
	if cfg.NATS != "nats://127.0.0.1:4222" {
		t.Fatalf("TestCommandLineOverridesConfigFile: the nats option was not read from the file: %q", cfg.NATS)
	}
	if cfg.BlockInterval != 3*time.Second {
		t.Fatalf("TestCommandLineOverridesConfigFile: got block interval %s, want 3s", cfg.BlockInterval)
	}
	if cfg.NetParams().Name != dagconfig.DevnetParams.Name {
		t.Fatalf("TestCommandLineOverridesConfigFile: got network %s, want devnet", cfg.NetParams().Name)
	}

	consensusConfig := cfg.ConsensusConfig()
	if consensusConfig.MilestoneInterval != 750*time.Millisecond {
		t.Fatalf("TestCommandLineOverridesConfigFile: got milestone interval %s, want 750ms",
			consensusConfig.MilestoneInterval)
	}
	if dagconfig.DevnetParams.MilestoneInterval == 750*time.Millisecond {
		t.Fatalf("TestCommandLineOverridesConfigFile: the override leaked into the network defaults")
	}
}

func TestGenesisFile(t *testing.T) {
	dir, teardown := prepareDir(t, "TestGenesisFile")
	defer teardown()

	genesisFile := filepath.Join(dir, "genesis.json")
	writeFile(t, "TestGenesisFile", genesisFile, `{
		"alloc": {"0x5b38da6a701c568545dcfcb03fcb875f56beddc4": {"balance": "100"}},
		"stakes": {"0x5b38da6a701c568545dcfcb03fcb875f56beddc4": {"value": "5"}}
	}`)

	cfg, err := LoadConfig([]string{
		"--configfile", filepath.Join(dir, "missing.conf"),
		"--datadir", dir,
		"--logdir", dir,
		"--simnet",
		"--genesisfile", genesisFile,
	})
	if err != nil {
		t.Fatalf("TestGenesisFile: LoadConfig: %s", err)
	}

	address, err := externalapi.NewDomainAddressFromString("0x5b38da6a701c568545dcfcb03fcb875f56beddc4")
	if err != nil {
		t.Fatalf("TestGenesisFile: NewDomainAddressFromString: %s", err)
	}
	params := cfg.NetParams()
	if balance, ok := params.GenesisAlloc[address]; !ok || balance.Int64() != 100 {
		t.Fatalf("TestGenesisFile: unexpected genesis allocation %v", params.GenesisAlloc)
	}
	if stake, ok := params.GenesisStakes[address]; !ok || stake.Int64() != 5 {
		t.Fatalf("TestGenesisFile: unexpected genesis stakes %v", params.GenesisStakes)
	}
	if len(dagconfig.SimnetParams.GenesisAlloc) != 0 {
		t.Fatalf("TestGenesisFile: the genesis file leaked into the network defaults")
	}

	_, err = LoadConfig([]string{
		"--configfile", filepath.Join(dir, "missing.conf"),
		"--genesisfile", filepath.Join(dir, "missing.json"),
	})
	if err == nil {
		t.Fatalf("TestGenesisFile: expected an error for a missing genesis file")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir, teardown := prepareDir(t, "TestLoadConfigErrors")
	defer teardown()
	missingConfig := filepath.Join(dir, "missing.conf")

	tests := []struct {
		name string
		args []string
	}{
		{name: "multiple networks", args: []string{"--testnet", "--devnet"}},
		{name: "unknown role", args: []string{"--role", "archive"}},
		{name: "negative block interval", args: []string{"--blockinterval=-1s"}},
		{name: "negative milestone interval", args: []string{"--milestoneinterval=-1s"}},
		{name: "empty block cache", args: []string{"--blockcachesize", "0"}},
		{name: "unknown flag", args: []string{"--nosuchflag"}},
		{name: "privileged profile port", args: []string{"--profile", "80"}},
	}
	for _, test := range tests {
		args := append([]string{"--configfile", missingConfig, "--datadir", dir, "--logdir", dir}, test.args...)
		_, err := LoadConfig(args)
		if err == nil {
			t.Fatalf("TestLoadConfigErrors: %s: expected an error", test.name)
		}
	}

	_, err := LoadConfig([]string{"--configfile", missingConfig, "--simnet", "--testnet"})
	if !errors.Is(err, ErrMultipleNetworks) {
		t.Fatalf("TestLoadConfigErrors: expected ErrMultipleNetworks, got %v", err)
	}
}

func TestCleanAndExpandPath(t *testing.T) {
	os.Setenv("RUTILED_TEST_DIR", "/tmp/rutiled")
	defer os.Unsetenv("RUTILED_TEST_DIR")

	if path := cleanAndExpandPath("$RUTILED_TEST_DIR/./data/"); path != filepath.Clean("/tmp/rutiled/data") {
		t.Fatalf("TestCleanAndExpandPath: got %s", path)
	}
	if path := cleanAndExpandPath("~/data"); path != filepath.Join(filepath.Dir(DefaultHomeDir), "data") {
		t.Fatalf("TestCleanAndExpandPath: got %s", path)
	}
}
