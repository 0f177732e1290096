// Package config handles the TOML machine configuration of the emulator.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/emu4719/cpu"
	"github.com/ezrec/emu4719/io"
	"github.com/ezrec/emu4719/translate"
)

var f = translate.From

var (
	ErrUnknownKey = errors.New(f("unknown configuration key"))
	ErrInvalid    = errors.New(f("invalid configuration"))
)

// Config is a complete machine configuration.
type Config struct {
	Verbose   bool            `toml:"verbose"`
	Memory    MemoryConfig    `toml:"memory"`
	Processor ProcessorConfig `toml:"processor"`
	Output    OutputConfig    `toml:"output"`

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-"`
}

// MemoryConfig is the memory geometry.
type MemoryConfig struct {
	Size int `toml:"size"`
	Bits int `toml:"bits"`
}

// ProcessorConfig controls execution.
type ProcessorConfig struct {
	RunMode       string   `toml:"run-mode"`
	Delay         Duration `toml:"delay"`
	HistoryLimit  int      `toml:"history-limit"`
	AdvancePolicy string   `toml:"advance-policy"`
}

// OutputConfig controls how printed values and the bell reach the user.
type OutputConfig struct {
	Format string `toml:"format"`
	Bell   bool   `toml:"bell"`
}

// Duration is a time.Duration written as text, such as "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration of the lecture machine.
func Default() *Config {
	return &Config{
		Memory: MemoryConfig{
			Size: cpu.MEMORY_SIZE,
			Bits: cpu.MEMORY_BITS,
		},
		Processor: ProcessorConfig{
			RunMode:       cpu.RUN_MODE_TIMED.String(),
			Delay:         Duration{cpu.DELAY},
			HistoryLimit:  cpu.HISTORY_LIMIT,
			AdvancePolicy: cpu.ADVANCE_WIDTH.String(),
		},
		Output: OutputConfig{
			Format: io.FORMAT_DECIMAL.String(),
			Bell:   true,
		},
	}
}

// Parse decodes TOML text over the defaults, and validates the result.
// Keys that do not belong to the configuration are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("%w: %v", ErrUnknownKey, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.Path = path

	return cfg, nil
}

// Validate checks every field.
func (cfg *Config) Validate() error {
	var errs []error

	// Cells must at least hold every opcode.
	if cfg.Memory.Bits < cpu.MEMORY_BITS || cfg.Memory.Bits > 16 {
		errs = append(errs, fmt.Errorf("%w: memory.bits %d", ErrInvalid, cfg.Memory.Bits))
	}
	if cfg.Memory.Size < 2 || cfg.Memory.Size > 1<<16 {
		errs = append(errs, fmt.Errorf("%w: memory.size %d", ErrInvalid, cfg.Memory.Size))
	}
	if cfg.Processor.HistoryLimit < 1 {
		errs = append(errs, fmt.Errorf("%w: processor.history-limit %d", ErrInvalid, cfg.Processor.HistoryLimit))
	}
	if cfg.Processor.Delay.Duration < 0 {
		errs = append(errs, fmt.Errorf("%w: processor.delay %v", ErrInvalid, cfg.Processor.Delay))
	}
	if _, err := cfg.RunMode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := cfg.AdvancePolicy(); err != nil {
		errs = append(errs, err)
	}
	if _, err := cfg.Format(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// RunMode returns the configured run mode.
func (cfg *Config) RunMode() (cpu.RunMode, error) {
	return cpu.ParseRunMode(cfg.Processor.RunMode)
}

// AdvancePolicy returns the configured instruction pointer advance policy.
func (cfg *Config) AdvancePolicy() (cpu.AdvancePolicy, error) {
	return cpu.ParseAdvancePolicy(cfg.Processor.AdvancePolicy)
}

// Format returns the configured print format.
func (cfg *Config) Format() (io.Format, error) {
	return io.ParseFormat(cfg.Output.Format)
}
