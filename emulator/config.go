package emulator

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/moto6809/cpu"
)

const (
	DEFAULT_BUDGET     = 100000                // Instruction ceiling of a run.
	DEFAULT_STEP_DELAY = 10 * time.Millisecond // Pause between run loop steps.
)

// Config is a run configuration, read from TOML:
//
//	budget = 5000
//	step_delay = "1ms"
//	breakpoints = ["$8010", "LOOP"]
//	verbose = true
//
//	[defines]
//	COUNT = 3
//	PORT = "$40"
type Config struct {
	Budget      int            `toml:"budget"`      // Instruction ceiling, 0 for none.
	StepDelay   time.Duration  `toml:"step_delay"`  // Delay between run loop steps.
	Breakpoints []string       `toml:"breakpoints"` // Breakpoint addresses or labels.
	Verbose     bool           `toml:"verbose"`     // Verbose logging.
	Defines     map[string]any `toml:"defines"`     // Predefined assembler constants.
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Budget:    DEFAULT_BUDGET,
		StepDelay: DEFAULT_STEP_DELAY,
		Defines:   map[string]any{},
	}
}

// LoadConfig reads a configuration file over the defaults.
func LoadConfig(path string) (cfg *Config, err error) {
	cfg = NewConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		cfg = nil
		return
	}

	err = checkKeys(md)
	if err != nil {
		cfg = nil
	}
	return
}

// ParseConfig decodes configuration text over the defaults.
func ParseConfig(text string) (cfg *Config, err error) {
	cfg = NewConfig()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		cfg = nil
		return
	}

	err = checkKeys(md)
	if err != nil {
		cfg = nil
	}
	return
}

func checkKeys(md toml.MetaData) (err error) {
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		err = ErrConfigKey(undecoded[0].String())
	}
	return
}

// Define parses a NAME=VALUE pair into the defines.
func (cfg *Config) Define(pair string) (err error) {
	name, value, ok := strings.Cut(pair, "=")
	name = strings.TrimSpace(name)
	if !ok || !cpu.IsSymbol(name) {
		err = ErrDefine
		return
	}

	if cfg.Defines == nil {
		cfg.Defines = map[string]any{}
	}
	cfg.Defines[name] = strings.TrimSpace(value)
	return
}

// Constants returns the defines as assembler constants, in name order.
func (cfg *Config) Constants() (names []string, values []uint16, err error) {
	for _, name := range slices.Sorted(maps.Keys(cfg.Defines)) {
		var value int
		switch v := cfg.Defines[name].(type) {
		case int64:
			value = int(v)
		case string:
			value, err = cpu.Evaluate(v, nil)
		default:
			err = ErrDefine
		}
		if err == nil && (value < -0x8000 || value > 0xFFFF) {
			err = cpu.ErrValueRange
		}
		if err != nil {
			err = errors.Join(ErrDefineValue(name), err)
			names, values = nil, nil
			return
		}
		names = append(names, name)
		values = append(values, uint16(value))
	}

	return
}

// Addresses resolves the breakpoints, which may name program symbols.
func (cfg *Config) Addresses(resolve cpu.Resolver) (addresses []uint16, err error) {
	for _, text := range cfg.Breakpoints {
		var value int
		value, err = cpu.Evaluate(text, resolve)
		if err == nil && (value < 0 || value > 0xFFFF) {
			err = cpu.ErrValueRange
		}
		if err != nil {
			err = errors.Join(ErrBreakpoint(text), err)
			addresses = nil
			return
		}
		addresses = append(addresses, uint16(value))
	}

	return
}
