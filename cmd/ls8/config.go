package main

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hexaflex/ls8/devices/fffe/cpu"
)

// Config defines program configuration.
//
// Values are read from the optional TOML file named by --config first.
// Flags given on the command line take precedence.
type Config struct {
	Interval   time.Duration `toml:"interval"`    // Time between clock ticks; zero runs unpaced.
	Memory     int           `toml:"memory"`      // Memory capacity in bytes.
	Trace      bool          `toml:"trace"`       // Print instruction trace data?
	ClearFlags bool          `toml:"clear_flags"` // Reset FL before every CMP?
	Parallel   bool          `toml:"parallel"`    // Run multiple programs concurrently?
	LogLevel   string        `toml:"log_level"`   // Logrus level name.
}

// defaultConfig returns the configuration used when nothing else is specified.
func defaultConfig() Config {
	return Config{
		Interval: time.Millisecond,
		Memory:   cpu.DefaultMemoryCapacity,
	}
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	c := defaultConfig()

	if path := GetString(cmd, "config"); path != "" {
		if _, err := toml.DecodeFile(path, &c); err != nil {
			return nil, errors.Wrapf(err, "config %s", path)
		}
	}

	flags := cmd.Flags()

	var err error
	if flags.Changed("interval") {
		c.Interval, err = flags.GetDuration("interval")
	}
	if err == nil && flags.Changed("memory") {
		c.Memory, err = flags.GetInt("memory")
	}
	if err == nil && flags.Changed("trace") {
		c.Trace, err = flags.GetBool("trace")
	}
	if err == nil && flags.Changed("clear-flags") {
		c.ClearFlags, err = flags.GetBool("clear-flags")
	}
	if err == nil && flags.Changed("parallel") {
		c.Parallel, err = flags.GetBool("parallel")
	}
	if err != nil {
		return nil, err
	}

	if !cpu.ValidMemoryCapacity(c.Memory) {
		return nil, errors.Errorf("memory capacity %d is not a power of two up to %d",
			c.Memory, cpu.MaxMemoryCapacity)
	}
	if c.Interval < 0 {
		return nil, errors.Errorf("negative clock interval %v", c.Interval)
	}

	if c.LogLevel != "" && !GetFlag(cmd, "verbose") {
		level, err := log.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, errors.Wrap(err, "log_level")
		}
		log.SetLevel(level)
	}

	return &c, nil
}
