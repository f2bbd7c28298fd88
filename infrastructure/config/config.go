package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/FranklinWaller/Rutile/domain/consensus"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultConfigFilename = "rutiled.conf"
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "rutiled.log"
	defaultErrLogFilename = "rutiled_err.log"
	defaultRole           = string(consensus.RoleFull)
	defaultBlockCacheSize = 200
)

var (
	// DefaultHomeDir is the default home directory for rutiled.
	DefaultHomeDir = appDataDir()

	defaultConfigFile = filepath.Join(DefaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(DefaultHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(DefaultHomeDir, defaultLogDirname)
)

// Flags defines the configuration options for rutiled.
//
// See LoadConfig for details on the configuration load process.
type Flags struct {
	ConfigFile        string        `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir           string        `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir            string        `long:"logdir" description:"Directory to log output."`
	DebugLevel        string        `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	Role              string        `long:"role" description:"Role of the node {full, light, client}"`
	NATS              string        `long:"nats" description:"URL of the NATS server the node joins; the node runs standalone if empty"`
	BlockInterval     time.Duration `long:"blockinterval" description:"Interval at which pending transactions are built into a block; 0 disables block production"`
	MilestoneInterval time.Duration `long:"milestoneinterval" description:"Interval at which a full node advances the milestone; 0 uses the network default"`
	BlockCacheSize    int           `long:"blockcachesize" description:"Number of decoded blocks kept in memory"`
	Profile           string        `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	NetworkFlags
}

// Config defines the configuration options for rutiled.
type Config struct {
	*Flags
	Role consensus.Role
}

// LogFile returns the path of the log file all levels are written to
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// ErrLogFile returns the path of the log file warnings and errors are written to
func (cfg *Config) ErrLogFile() string {
	return filepath.Join(cfg.LogDir, defaultErrLogFilename)
}

// ConsensusConfig returns the configuration the node's consensus is created with
func (cfg *Config) ConsensusConfig() *consensus.Config {
	params := *cfg.NetParams()
	if cfg.MilestoneInterval > 0 {
		params.MilestoneInterval = cfg.MilestoneInterval
	}
	return &consensus.Config{
		Params:         params,
		Role:           cfg.Role,
		BlockCacheSize: cfg.BlockCacheSize,
	}
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(DefaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

func defaultFlags() *Flags {
	return &Flags{
		ConfigFile:     defaultConfigFile,
		DataDir:        defaultDataDir,
		LogDir:         defaultLogDir,
		DebugLevel:     defaultLogLevel,
		Role:           defaultRole,
		BlockCacheSize: defaultBlockCacheSize,
	}
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// The above results in rutiled functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options. Command line options always take precedence.
func LoadConfig(args []string) (*Config, error) {
	// Pre-parse the command line options to see if an alternative config
	// file was specified. Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := defaultFlags()
	preParser := newConfigParser(preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			return nil, err
		}
	}

	cfgFlags := defaultFlags()
	parser := newConfigParser(cfgFlags, flags.Default)

	// Load additional config from file.
	err = flags.NewIniParser(parser).ParseFile(cleanAndExpandPath(preCfg.ConfigFile))
	if err != nil {
		var pathErr *os.PathError
		if ok := errors.As(err, &pathErr); !ok {
			return nil, errors.Wrapf(err, "error parsing config file %s", preCfg.ConfigFile)
		}
	}

	// Parse command line options again to ensure they take precedence.
	_, err = parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Flags: cfgFlags}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	cfg.Role, err = consensus.ParseRole(cfg.Flags.Role)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", usage(parser))
	}

	if cfg.BlockInterval < 0 {
		return nil, errors.Errorf("the blockinterval option may not be negative -- parsed [%s]", cfg.BlockInterval)
	}
	if cfg.MilestoneInterval < 0 {
		return nil, errors.Errorf("the milestoneinterval option may not be negative -- parsed [%s]",
			cfg.MilestoneInterval)
	}
	if cfg.BlockCacheSize <= 0 {
		return nil, errors.Errorf("the blockcachesize option must be positive -- parsed [%d]", cfg.BlockCacheSize)
	}

	// Validate profile port number
	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return nil, errors.Errorf("the profile port must be between 1024 and 65535 -- parsed [%s]", cfg.Profile)
		}
	}

	// Append the network type to the data directory so it is "namespaced"
	// per network. The block database and the published content are both
	// specific to a network.
	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.DataDir = filepath.Join(cfg.DataDir, cfg.NetParams().Name)

	// Append the network type to the log directory so it is "namespaced"
	// per network in the same fashion as the data directory.
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.LogDir = filepath.Join(cfg.LogDir, cfg.NetParams().Name)

	return cfg, nil
}

// newConfigParser returns a new command line flags parser.
func newConfigParser(cfgFlags *Flags, options flags.Options) *flags.Parser {
	parser := flags.NewParser(cfgFlags, options)
	parser.Name = "rutiled"
	return parser
}

// appDataDir returns the per-user directory rutiled keeps its files in
func appDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "."
	}
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, "Rutiled")
		}
		return filepath.Join(homeDir, "Rutiled")
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "Rutiled")
	default:
		return filepath.Join(homeDir, ".rutiled")
	}
}
