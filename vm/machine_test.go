package vm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hexaflex/ls8/arch"
	"github.com/hexaflex/ls8/asm"
	"github.com/hexaflex/ls8/devices/fffe/cpu"
)

const helloSource = `
        LDI R0, msg
        LDI R1, print
        CALL R1
        HLT

# print writes the zero terminated string at R0.
print:  LDI R2, 0
        LDI R3, loop
        LDI R4, done
loop:   LD  R5, R0
        CMP R5, R2
        JEQ R4
        PRA R5
        INC R0
        JMP R3
done:   RET

msg:    DB "Hello, world!", '\n', 0
`

func quietLogger() log.FieldLogger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func assemble(t *testing.T, src string) []byte {
	t.Helper()
	program, err := asm.Parse(strings.NewReader(src), t.Name())
	require.NoError(t, err)
	return program
}

func TestExecutePrint(t *testing.T) {
	var out bytes.Buffer

	program := []byte{arch.LDI, 0, 8, arch.PRN, 0, arch.HLT}
	m, err := Execute(context.Background(), Config{Output: &out, Logger: quietLogger()}, program)
	require.NoError(t, err)

	assert.Equal(t, "8\n", out.String())
	assert.True(t, m.Halted())
	assert.False(t, m.Running())
	assert.Equal(t, uint64(3), m.Cycles())
}

func TestExecuteHello(t *testing.T) {
	var out bytes.Buffer

	cfg := Config{
		Output:              &out,
		Logger:              quietLogger(),
		ClearFlagsOnCompare: true,
	}
	m, err := Execute(context.Background(), cfg, assemble(t, helloSource))
	require.NoError(t, err)

	assert.Equal(t, "Hello, world!\n", out.String())
	assert.Equal(t, byte(arch.StackStart), m.Registers().GP[arch.SP])
}

func TestExecuteHelloStaleFlags(t *testing.T) {
	// Without clearing FL, the first unequal compare leaves a bit set that
	// later suppresses JEQ: the loop walks past the terminator.
	var out bytes.Buffer

	m := New(Config{Output: &out, Logger: quietLogger()})
	require.NoError(t, m.Startup())
	require.NoError(t, m.Load(assemble(t, helloSource)))

	for i := 0; i < 200 && !m.Halted(); i++ {
		if err := m.Step(); err != nil {
			break
		}
	}
	require.NoError(t, m.Shutdown())

	assert.True(t, strings.HasPrefix(out.String(), "Hello, world!\n"))
	assert.Greater(t, len(out.String()), len("Hello, world!\n"))
}

func TestExecuteDivideByZero(t *testing.T) {
	var out bytes.Buffer

	program := []byte{
		arch.LDI, 0, 10,
		arch.DIV, 0, 1,
		arch.PRN, 0,
		arch.HLT,
	}
	logger, hook := test.NewNullLogger()
	m, err := Execute(context.Background(), Config{Output: &out, Logger: logger}, program)

	var fault *cpu.Error
	require.True(t, errors.As(err, &fault))
	assert.True(t, errors.Is(err, cpu.ErrDivideByZero))
	assert.Equal(t, 3, fault.IP)
	assert.Equal(t, byte(10), m.Registers().GP[0])
	assert.Empty(t, out.String())
	assert.True(t, m.Halted())

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, log.ErrorLevel, entry.Level)
	assert.Equal(t, cpu.ErrDivideByZero.Error(), entry.Message)
	assert.Equal(t, 3, entry.Data["address"])
	assert.Equal(t, byte(arch.DIV), entry.Data["opcode"])
}

func TestExecuteIllegalOpcode(t *testing.T) {
	logger, hook := test.NewNullLogger()

	program := []byte{arch.LDI, 0, 1, 0x0f}
	m, err := Execute(context.Background(), Config{Logger: logger}, program)

	assert.True(t, errors.Is(err, cpu.ErrIllegalOpcode))
	assert.True(t, m.Halted())
	assert.Equal(t, 3, m.Registers().PC)
	assert.Equal(t, byte(0x0f), m.Registers().IR)

	var warnings, errs int
	for _, entry := range hook.AllEntries() {
		switch entry.Level {
		case log.WarnLevel:
			warnings++
			assert.Equal(t, byte(0x0f), entry.Data["opcode"])
			assert.Equal(t, 3, entry.Data["address"])
		case log.ErrorLevel:
			errs++
		}
	}
	assert.Equal(t, 1, warnings)
	assert.Equal(t, 1, errs)
}

func TestLoadTooLarge(t *testing.T) {
	m := New(Config{MemoryCapacity: 16, Logger: quietLogger()})
	require.NoError(t, m.Startup())
	defer m.Shutdown()

	assert.Error(t, m.Load(make([]byte, 17)))
	assert.NoError(t, m.Load(make([]byte, 16)))
}

func TestStopResume(t *testing.T) {
	// An endless loop incrementing R1.
	program := []byte{
		arch.LDI, 0, 3,
		arch.INC, 1,
		arch.JMP, 0,
	}

	m := New(Config{Interval: time.Millisecond, Logger: quietLogger()})
	require.NoError(t, m.Startup())
	defer m.Shutdown()
	require.NoError(t, m.Load(program))

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	require.Eventually(t, func() bool { return m.Cycles() > 5 }, time.Second, time.Millisecond)
	m.Stop()
	m.Stop()
	require.NoError(t, <-done)

	assert.False(t, m.Running())
	assert.False(t, m.Halted())

	before := m.Registers().GP[1]
	require.NoError(t, m.Step())
	require.NoError(t, m.Step())
	assert.NotEqual(t, before, m.Registers().GP[1])
}

func TestRunCancel(t *testing.T) {
	program := []byte{arch.LDI, 0, 0, arch.JMP, 0}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	m, err := Execute(ctx, Config{Logger: quietLogger()}, program)
	assert.Equal(t, context.DeadlineExceeded, err)
	assert.False(t, m.Halted())
}

func TestMachinesIsolated(t *testing.T) {
	const count = 4

	outputs := make([]bytes.Buffer, count)
	machines := make([]*Machine, count)

	var g errgroup.Group
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			src := fmt.Sprintf(`
                LDI R0, %d
                LDI R1, 7
                MUL R0, R1
                PUSH R0
                PRN R0
                HLT`, i)

			program, err := asm.Parse(strings.NewReader(src), "isolated")
			if err != nil {
				return err
			}

			machines[i], err = Execute(context.Background(), Config{Output: &outputs[i], Logger: quietLogger()}, program)
			return err
		})
	}
	require.NoError(t, g.Wait())

	for i := 0; i < count; i++ {
		assert.Equal(t, fmt.Sprintf("%d\n", i*7), outputs[i].String())
		assert.Equal(t, byte(i*7), machines[i].Memory().Read(arch.StackStart-1))
		assert.Equal(t, byte(arch.StackStart-1), machines[i].Registers().GP[arch.SP])
	}
}
