package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().Bool("verbose", false, "")
	addRunFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := loadConfig(newTestCmd(t))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), *c)
}

func TestLoadConfigFile(t *testing.T) {
	c, err := loadConfig(newTestCmd(t, "--config", "testdata/ls8.toml"))
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), c.Interval)
	assert.Equal(t, 128, c.Memory)
	assert.True(t, c.ClearFlags)
	assert.False(t, c.Trace)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	c, err := loadConfig(newTestCmd(t,
		"--config", "testdata/ls8.toml",
		"--memory", "64",
		"--clear-flags=false",
		"--interval", "2ms",
		"--parallel",
	))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Millisecond, c.Interval)
	assert.Equal(t, 64, c.Memory)
	assert.False(t, c.ClearFlags)
	assert.True(t, c.Parallel)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := loadConfig(newTestCmd(t, "--memory", "100"))
	assert.Error(t, err)

	_, err = loadConfig(newTestCmd(t, "--memory", "512"))
	assert.Error(t, err)

	_, err = loadConfig(newTestCmd(t, "--interval", "-1s"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("memory = \"lots\""), 0644))
	_, err = loadConfig(newTestCmd(t, "--config", bad))
	assert.Error(t, err)
}

func TestRunProgram(t *testing.T) {
	table := []struct {
		file string
		want string
	}{
		{"testdata/print8.ls8", "8\n"},
		{"testdata/mult.ls8", "72\n"},
		{"testdata/stack.ls8", "3\n2\n1\n"},
		{"testdata/call.ls8", "20\n30\n"},
		{"testdata/divzero.ls8", ""},
	}

	config := defaultConfig()
	config.Interval = 0

	for _, entry := range table {
		var out bytes.Buffer
		err := runProgram(context.Background(), &config, entry.file, &out)
		assert.NoError(t, err, entry.file)
		assert.Equal(t, entry.want, out.String(), entry.file)
	}
}

func TestRunParallel(t *testing.T) {
	config := defaultConfig()
	config.Interval = 0
	config.Parallel = true

	var out bytes.Buffer
	files := []string{"testdata/call.ls8", "testdata/print8.ls8", "testdata/stack.ls8"}
	require.NoError(t, runParallel(context.Background(), &config, files, &out))
	assert.Equal(t, "20\n30\n8\n3\n2\n1\n", out.String())

	out.Reset()
	files = []string{"testdata/print8.ls8", "testdata/missing.ls8"}
	assert.Error(t, runParallel(context.Background(), &config, files, &out))
}

func TestRunProgramMissing(t *testing.T) {
	config := defaultConfig()
	var out bytes.Buffer
	assert.Error(t, runProgram(context.Background(), &config, "testdata/missing.ls8", &out))
}

func TestPrettyFrequency(t *testing.T) {
	assert.Equal(t, "12.50 Hz", prettyFrequency(12.5))
	assert.Equal(t, "1.00 KHz", prettyFrequency(1000))
	assert.Equal(t, "2.50 MHz", prettyFrequency(2.5e6))
	assert.Equal(t, "1.20 GHz", prettyFrequency(1.2e9))
}
