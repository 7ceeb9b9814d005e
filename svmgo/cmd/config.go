package cmd

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"

	"github.com/simplevm/simplevm/svmgo/hostcall"
)

const (
	defaultMemorySize = 200
	defaultInfoAt     = "%100000"
)

// Config holds the settings shared by the load-raw and run commands. It can
// be read from a TOML file; flags given on the command line override it.
type Config struct {
	MemorySize    uint32 `toml:"memory-size"`
	SyscallOpcode uint8  `toml:"syscall-opcode"`
	LogLevel      string `toml:"log-level"`
	StopAt        string `toml:"stop-at"`
	InfoAt        string `toml:"info-at"`
}

func DefaultConfig() *Config {
	return &Config{
		MemorySize:    defaultMemorySize,
		SyscallOpcode: hostcall.SyscallOpcode,
		LogLevel:      "info",
		StopAt:        "never",
		InfoAt:        defaultInfoAt,
	}
}

// LoadConfig reads path on top of the defaults. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Apply overrides the config with every flag explicitly set on ctx.
func (c *Config) Apply(ctx *cli.Context) error {
	if ctx.IsSet(MemorySizeFlag.Name) {
		size := ctx.Uint(MemorySizeFlag.Name)
		if size > math.MaxUint32 {
			return fmt.Errorf("memory size %d does not fit 32 bits", size)
		}
		c.MemorySize = uint32(size)
	}
	if ctx.IsSet(RunSyscallOpcodeFlag.Name) {
		op := ctx.Uint(RunSyscallOpcodeFlag.Name)
		if op > math.MaxUint8 {
			return fmt.Errorf("syscall opcode %#x is not a byte", op)
		}
		c.SyscallOpcode = uint8(op)
	}
	if ctx.IsSet(LogLevelFlag.Name) {
		c.LogLevel = ctx.String(LogLevelFlag.Name)
	}
	if ctx.IsSet(RunStopAtFlag.Name) {
		c.StopAt = ctx.Generic(RunStopAtFlag.Name).(*StepMatcherFlag).String()
	}
	if ctx.IsSet(RunInfoAtFlag.Name) {
		c.InfoAt = ctx.Generic(RunInfoAtFlag.Name).(*StepMatcherFlag).String()
	}
	return nil
}

func (c *Config) Level() (slog.Level, error) {
	return ParseLogLevel(c.LogLevel)
}

// loadConfig reads the --config file and applies the command line flags.
func loadConfig(ctx *cli.Context) (*Config, error) {
	cfg, err := LoadConfig(ctx.Path(ConfigFlag.Name))
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}
