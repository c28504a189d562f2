package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hexaflex/ls8/asm"
	"github.com/hexaflex/ls8/devices/fffe/cpu"
	"github.com/hexaflex/ls8/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] program...",
	Short: "Run one or more LS-8 programs.",
	Long: `Load each program into a fresh machine and run it until it halts.
Programs are either LS-8 source (binary literals or mnemonics) or raw
byte streams with a .bin extension.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if config.Parallel && len(args) > 1 {
			return runParallel(ctx, config, args, os.Stdout)
		}

		for _, file := range args {
			if err := runProgram(ctx, config, file, os.Stdout); err != nil {
				return err
			}
		}
		return nil
	},
}

// runParallel runs every program on its own machine concurrently. Console
// output is collected per program and written to out in argument order.
func runParallel(ctx context.Context, config *Config, files []string, out io.Writer) error {
	outputs := make([]bytes.Buffer, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			return runProgram(ctx, config, file, &outputs[i])
		})
	}

	err := g.Wait()

	for i := range outputs {
		if _, werr := outputs[i].WriteTo(out); werr != nil && err == nil {
			err = werr
		}
	}

	return err
}

// runProgram loads and runs a single program file.
//
// A program which halts on a fault is not an error for the host: the fault has
// been reported by the machine already. Only load failures and interruption
// are returned.
func runProgram(ctx context.Context, config *Config, file string, out io.Writer) error {
	program, err := asm.ReadProgram(file)
	if err != nil {
		return err
	}

	logger := log.WithField("program", file)

	cfg := vm.Config{
		Output:              out,
		Interval:            config.Interval,
		MemoryCapacity:      config.Memory,
		ClearFlagsOnCompare: config.ClearFlags,
		Logger:              logger,
	}
	if config.Trace {
		cfg.Trace = printTrace(logger)
	}

	start := time.Now()
	m, err := vm.Execute(ctx, cfg, program)

	var fault *cpu.Error
	if errors.As(err, &fault) {
		err = nil
	}
	if err != nil {
		return errors.Wrap(err, file)
	}

	p := message.NewPrinter(language.English)
	logger.Debug(p.Sprintf("%d instructions in %v (%s)",
		m.Cycles(), time.Since(start).Round(time.Microsecond), prettyFrequency(m.Frequency())))

	return nil
}

// printTrace returns a trace handler which logs every instruction.
func printTrace(logger log.FieldLogger) cpu.TraceFunc {
	return func(i *cpu.Instruction) {
		logger.Info(i.String())
	}
}

// prettyFrequency returns a human-readable version of the given clock frequency in herz.
func prettyFrequency(v float64) string {
	p := message.NewPrinter(language.English)
	switch {
	case v >= 1e9:
		return p.Sprintf("%.2f GHz", v/1e9)
	case v >= 1e6:
		return p.Sprintf("%.2f MHz", v/1e6)
	case v >= 1e3:
		return p.Sprintf("%.2f KHz", v/1e3)
	default:
		return p.Sprintf("%.2f Hz", v)
	}
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// addRunFlags declares the machine configuration flags on cmd.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("interval", time.Millisecond, "time between clock ticks (0 runs unpaced)")
	cmd.Flags().Int("memory", cpu.DefaultMemoryCapacity, "memory capacity in bytes (a power of two up to 256)")
	cmd.Flags().Bool("trace", false, "print every instruction as it executes")
	cmd.Flags().Bool("clear-flags", false, "reset FL before every CMP")
	cmd.Flags().Bool("parallel", false, "run multiple programs concurrently")
}
