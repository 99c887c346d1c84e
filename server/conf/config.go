package conf

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"

	"github.com/pipeking636/CS525/logger"
	"github.com/pipeking636/CS525/server/common"
	"github.com/pipeking636/CS525/server/innodb/buffer_pool"
	"github.com/pipeking636/CS525/server/innodb/record"
	"github.com/pipeking636/CS525/util"
)

// DefaultConfigFile is read when no path is given on the command line.
const DefaultConfigFile = "conf/cs525.ini"

type CommandLineArgs struct {
	ConfigPath string
}

/*
[storage]
data_dir   = data

[buffer_pool]
frames     = 10
strategy   = fifo
lru_k      = 2

[logs]
log_error  = logs/error.log
log_infos  = logs/info.log
log_level  = info
*/
type Cfg struct {
	Raw *ini.File

	// storage
	DataDir string

	// buffer pool
	PoolFrames   int
	PoolStrategy string
	PoolLRUK     int

	// logs
	LogError string
	LogInfos string
	LogLevel string
}

func NewCfg() *Cfg {
	return &Cfg{
		Raw:          ini.Empty(),
		DataDir:      "data",
		PoolFrames:   common.DEFAULT_POOL_FRAMES,
		PoolStrategy: "fifo",
		PoolLRUK:     common.DEFAULT_LRU_K,
		LogLevel:     "info",
	}
}

// Load reads the ini file named by args, falling back to defaults when the
// file does not exist.
func (cfg *Cfg) Load(args *CommandLineArgs) (*Cfg, error) {
	iniFile, err := cfg.loadConfiguration(args)
	if err != nil {
		return nil, err
	}
	cfg.Raw = iniFile

	cfg.parseStorageCfg(cfg.Raw.Section("storage"))
	if err := cfg.parseBufferPoolCfg(cfg.Raw.Section("buffer_pool")); err != nil {
		return nil, err
	}
	cfg.parseLogsCfg(cfg.Raw.Section("logs"))
	return cfg, nil
}

func (cfg *Cfg) loadConfiguration(args *CommandLineArgs) (*ini.File, error) {
	configFile := DefaultConfigFile
	if args != nil && args.ConfigPath != "" {
		configFile = args.ConfigPath
	}

	exists, err := util.PathExists(configFile)
	if err != nil {
		return nil, errors.Wrapf(err, "stat config %s", configFile)
	}
	if !exists {
		logger.Debugf("config file %s not found, using defaults", configFile)
		return ini.Empty(), nil
	}

	parsedFile, err := ini.Load(configFile)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", configFile)
	}
	logger.Debugf("loaded config file %s", configFile)
	return parsedFile, nil
}

func valueAsString(section *ini.Section, keyName string, defaultValue string) string {
	if section == nil {
		return defaultValue
	}
	value := section.Key(keyName).MustString(defaultValue)
	if value == "" {
		value = defaultValue
	}
	return value
}

func (cfg *Cfg) parseStorageCfg(section *ini.Section) {
	cfg.DataDir = valueAsString(section, "data_dir", cfg.DataDir)
}

func (cfg *Cfg) parseBufferPoolCfg(section *ini.Section) error {
	cfg.PoolFrames = section.Key("frames").MustInt(cfg.PoolFrames)
	cfg.PoolStrategy = strings.ToLower(valueAsString(section, "strategy", cfg.PoolStrategy))
	cfg.PoolLRUK = section.Key("lru_k").MustInt(cfg.PoolLRUK)

	if cfg.PoolFrames < 2 {
		return errors.Errorf("buffer_pool.frames must be at least 2, got %d", cfg.PoolFrames)
	}
	if _, err := buffer_pool.ParseStrategy(cfg.PoolStrategy); err != nil {
		return errors.Wrap(err, "buffer_pool.strategy")
	}
	if cfg.PoolLRUK < 1 {
		return errors.Errorf("buffer_pool.lru_k must be positive, got %d", cfg.PoolLRUK)
	}
	return nil
}

func (cfg *Cfg) parseLogsCfg(section *ini.Section) {
	cfg.LogError = valueAsString(section, "log_error", cfg.LogError)
	cfg.LogInfos = valueAsString(section, "log_infos", cfg.LogInfos)

	logLevel := strings.ToLower(valueAsString(section, "log_level", cfg.LogLevel))
	switch logLevel {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
		cfg.LogLevel = logLevel
	default:
		logger.Warnf("invalid log level %q, using info", logLevel)
		cfg.LogLevel = "info"
	}
}

// LogConfig is the logger setup described by the [logs] section.
func (cfg *Cfg) LogConfig() logger.LogConfig {
	return logger.LogConfig{
		ErrorLogPath: cfg.LogError,
		InfoLogPath:  cfg.LogInfos,
		LogLevel:     cfg.LogLevel,
	}
}

// PoolOptions is the buffer pool setup tables are opened with.
func (cfg *Cfg) PoolOptions() record.Options {
	strategy, err := buffer_pool.ParseStrategy(cfg.PoolStrategy)
	if err != nil {
		strategy = buffer_pool.RS_FIFO
	}
	return record.Options{
		Frames:   cfg.PoolFrames,
		Strategy: strategy,
		K:        cfg.PoolLRUK,
	}
}

// TablePath resolves a table name against the data directory. Paths that
// are already absolute or relative to the working directory ("./x") are
// kept as they are.
func (cfg *Cfg) TablePath(name string) string {
	if strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") {
		return name
	}
	return util.ResolvePath(cfg.DataDir, name)
}

// EnsureDataDir creates the data directory if needed.
func (cfg *Cfg) EnsureDataDir() error {
	if cfg.DataDir == "" {
		return nil
	}
	if err := util.EnsureDir(cfg.DataDir); err != nil {
		return errors.Wrapf(err, "data dir %s", cfg.DataDir)
	}
	return nil
}

// ApplyEnv overrides the data directory from CS525_DATA_DIR when set.
func (cfg *Cfg) ApplyEnv() *Cfg {
	if dir := os.Getenv("CS525_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg
}
