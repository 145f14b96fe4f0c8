package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/gogpu/spvfuzz/fuzz"
	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// testModule is a compute shader whose entry block computes %sum and
// branches to exit, which doubles %sum and returns.
type testModule struct {
	data           []byte
	fn, entry, sum uint32
	exit           uint32
	idBound        uint32
}

func newTestModule(t *testing.T) testModule {
	t.Helper()
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	void := b.AddTypeVoid()
	boolType := b.AddTypeBool()
	b.AddConstantTrue(boolType)
	intType := b.AddTypeInt(32, true)
	one := b.AddConstant(intType, 1)
	voidFn := b.AddTypeFunction(void)

	var tm testModule
	tm.fn = b.AddFunction(voidFn, void, spirv.FunctionControlNone)
	tm.entry = b.AddLabel()
	tm.exit = b.AllocID()
	tm.sum = b.AddBinaryOp(spirv.OpIAdd, intType, one, one)
	b.AddBranch(tm.exit)
	b.AddLabelWithID(tm.exit)
	b.AddBinaryOp(spirv.OpIAdd, intType, tm.sum, tm.sum)
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelGLCompute, tm.fn, "main", nil)
	b.AddExecutionMode(tm.fn, spirv.ExecutionModeLocalSize, 1, 1, 1)

	tm.data = b.Build()
	m, err := ir.Parse(tm.data)
	require.NoError(t, err)
	tm.idBound = m.IDBound()
	return tm
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "spvfuzz.toml", []byte(`
[replay]
overflow_id_start = 5000
validate_each_step = true
jobs = 4

[log]
level = "debug"
development = true
`))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, Config{
		Replay: ReplayConfig{OverflowIDStart: 5000, ValidateEachStep: true, Jobs: 4},
		Log:    LogConfig{Level: "debug", Development: true},
	}, cfg)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "spvfuzz.toml", []byte("[replay]\njobs = 2\n"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, 2, cfg.Replay.Jobs)
	require.Zero(t, cfg.Replay.OverflowIDStart)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: "[replay\n"},
		{name: "unknown key", content: "[replay]\nseed = 1\n"},
		{name: "negative jobs", content: "[replay]\njobs = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".toml", []byte(tt.content))
			_, err := LoadConfig(path)
			require.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(LogConfig{Level: "info", Development: true})
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = newLogger(LogConfig{Level: "loud"})
	require.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	require.Equal(t, filepath.Join("shaders", "a.fuzzed.spv"), outputPath(filepath.Join("shaders", "a.spv"), ""))
	require.Equal(t, filepath.Join("out", "a.fuzzed.spv"), outputPath(filepath.Join("shaders", "a.spv"), "out"))
}

func TestReplayAll(t *testing.T) {
	tm := newTestModule(t)
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	var seq fuzz.Sequence
	seq.Append(fuzz.NewAddDeadBlock(tm.idBound, tm.entry, true))
	seq.Append(fuzz.NewAddDeadBlock(tm.idBound, tm.entry, true))

	var jobs []replayJob
	for _, name := range []string{"a.spv", "b.spv", "c.spv"} {
		input := writeFile(t, dir, name, tm.data)
		jobs = append(jobs, replayJob{input: input, output: outputPath(input, outDir)})
	}

	outcomes, err := replayAll(context.Background(), jobs, &seq, nil, ReplayConfig{ValidateEachStep: true, Jobs: 2})
	require.NoError(t, err)
	require.Len(t, outcomes, len(jobs))
	for i, job := range jobs {
		require.Equal(t, replayOutcome{applied: 1, skipped: 1}, outcomes[i])
		data, err := os.ReadFile(job.output)
		require.NoError(t, err)
		m, err := ir.Parse(data)
		require.NoError(t, err)
		require.NotNil(t, m.Function(tm.fn).Block(tm.idBound))
	}
}

func TestReplayAll_MissingInput(t *testing.T) {
	dir := t.TempDir()
	jobs := []replayJob{{input: filepath.Join(dir, "missing.spv"), output: filepath.Join(dir, "out.spv")}}

	_, err := replayAll(context.Background(), jobs, &fuzz.Sequence{}, nil, ReplayConfig{})
	require.Error(t, err)
}

func TestReplayModule_OverflowStart(t *testing.T) {
	tm := newTestModule(t)
	m, err := ir.Parse(tm.data)
	require.NoError(t, err)

	cfg := ReplayConfig{OverflowIDStart: 1}
	result, err := replayModule(m, &fuzz.Sequence{}, []facts.Fact{{Kind: facts.KindFunctionIsLivesafe, ID: tm.fn}}, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.True(t, result.Context.HasOverflowIDs())
	// Overflow ids start at the id bound when the configured start is lower.
	require.Equal(t, tm.idBound, result.Context.GetFreshID())
	require.True(t, result.Context.Facts().FunctionIsLivesafe(tm.fn))
}

func TestReadSequence(t *testing.T) {
	var seq fuzz.Sequence
	seq.Append(fuzz.NewAddDeadBlock(10, 4, false))
	var buf bytes.Buffer
	require.NoError(t, seq.Encode(&buf))
	path := writeFile(t, t.TempDir(), "seq.msgpack", buf.Bytes())

	got, err := readSequence(path)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())

	_, err = readSequence(path + ".missing")
	require.Error(t, err)
}

func TestDis(t *testing.T) {
	tm := newTestModule(t)
	path := writeFile(t, t.TempDir(), "a.spv", tm.data)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, runDis(cmd, []string{path}))
	require.Contains(t, out.String(), "OpIAdd")
	require.Contains(t, out.String(), "OpReturn")

	require.Error(t, runDis(cmd, []string{path + ".missing"}))
}

func TestAvailableBefore(t *testing.T) {
	tm := newTestModule(t)
	m, err := ir.Parse(tm.data)
	require.NoError(t, err)

	before, err := availableBefore(m, tm.entry, 0)
	require.NoError(t, err)
	after, err := availableBefore(m, tm.entry, 1)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	require.Equal(t, tm.sum, after[len(after)-1].ResultID)

	_, err = availableBefore(m, tm.entry, 10)
	require.Error(t, err)
	_, err = availableBefore(m, tm.idBound, 0)
	require.Error(t, err)
}

// executeRoot runs rootCmd with args and returns what it printed. Flag
// values persist on the package-level commands, so they are reset before
// and after each run.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset := func() {
		for _, fs := range []*pflag.FlagSet{rootCmd.PersistentFlags(), replayCmd.Flags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
	reset()
	t.Cleanup(reset)
	t.Cleanup(func() { fuzz.SetLogger(zap.NewNop()) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExecute_ReplayFlagsOverrideConfig(t *testing.T) {
	tm := newTestModule(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "a.spv", tm.data)
	outDir := filepath.Join(dir, "out")

	// Outlining the exit block passes %sum as a parameter whose fresh id
	// must come from the overflow id source.
	b := tm.idBound
	var seq fuzz.Sequence
	seq.Append(fuzz.NewOutlineFunction(tm.exit, tm.exit, b, b+1, b+2, b+3, b+4, b+5, nil, nil))
	var buf bytes.Buffer
	require.NoError(t, seq.Encode(&buf))
	seqPath := writeFile(t, dir, "seq.msgpack", buf.Bytes())

	overflowOn := writeFile(t, dir, "on.toml", []byte("[replay]\noverflow_id_start = 1000\n"))
	overflowOff := writeFile(t, dir, "off.toml", []byte("[replay]\noverflow_id_start = 0\njobs = 2\n"))

	tests := []struct {
		name    string
		flags   []string
		applied int
	}{
		{"config enables overflow ids", []string{"--config", overflowOn}, 1},
		{"config disables overflow ids", []string{"--config", overflowOff}, 0},
		{"flag enables overflow ids", []string{"--config", overflowOff, "--overflow-id-start", "1000"}, 1},
		{"flag disables overflow ids", []string{"--config", overflowOn, "--overflow-id-start=0"}, 0},
		{"no config", []string{"-j", "1"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"replay", "-s", seqPath, "-o", outDir}, tt.flags...)
			out, err := executeRoot(t, append(args, input)...)
			require.NoError(t, err)

			output := outputPath(input, outDir)
			require.Contains(t, out, fmt.Sprintf("%s: %d applied, %d skipped -> %s", input, tt.applied, 1-tt.applied, output))
			data, err := os.ReadFile(output)
			require.NoError(t, err)
			m, err := ir.Parse(data)
			require.NoError(t, err)
			require.Equal(t, tt.applied == 1, m.Function(b+2) != nil)
		})
	}
}

func TestExecute_LogLevel(t *testing.T) {
	tm := newTestModule(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "a.spv", tm.data)
	var buf bytes.Buffer
	require.NoError(t, (&fuzz.Sequence{}).Encode(&buf))
	seqPath := writeFile(t, dir, "seq.msgpack", buf.Bytes())
	badLevel := writeFile(t, dir, "bad.toml", []byte("[log]\nlevel = \"loud\"\n"))
	replay := []string{"replay", "-s", seqPath, "-o", filepath.Join(dir, "out")}

	_, err := executeRoot(t, append(replay, "--config", badLevel, input)...)
	require.Error(t, err)

	// The flag replaces the level from the config file.
	out, err := executeRoot(t, append(replay, "--config", badLevel, "--log-level", "error", input)...)
	require.NoError(t, err)
	require.Contains(t, out, "0 applied, 0 skipped")

	_, err = executeRoot(t, append(replay, "--log-level", "loud", input)...)
	require.Error(t, err)
}

func TestExecute_MissingSequenceFlag(t *testing.T) {
	tm := newTestModule(t)
	input := writeFile(t, t.TempDir(), "a.spv", tm.data)

	_, err := executeRoot(t, "replay", input)
	require.Error(t, err)
}
