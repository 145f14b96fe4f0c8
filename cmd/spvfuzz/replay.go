package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/spvfuzz/fuzz"
	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/ir"
)

var replayCmd = &cobra.Command{
	Use:   "replay [flags] <module.spv>...",
	Short: "Replay a transformation sequence on SPIR-V modules",
	Long: `Replay applies every applicable transformation of a recorded sequence to
each input module and writes the transformed module next to it`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringP("sequence", "s", "", "msgpack transformation sequence (required)")
	replayCmd.Flags().String("facts", "", "msgpack initial facts")
	replayCmd.Flags().StringP("output", "o", "", "output directory (default: next to each input)")
	replayCmd.Flags().Uint32("overflow-id-start", 0, "first overflow id (0 disables overflow ids)")
	replayCmd.Flags().Bool("validate-each-step", false, "validate the module after every applied transformation")
	replayCmd.Flags().IntP("jobs", "j", 0, "number of modules replayed in parallel (0 = all)")
	_ = replayCmd.MarkFlagRequired("sequence")
}

// replayJob is one module to transform.
type replayJob struct {
	input  string
	output string
}

// replayOutcome summarizes a replayed module.
type replayOutcome struct {
	applied int
	skipped int
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	if err := applyReplayFlags(cmd, &cfg.Replay); err != nil {
		return err
	}

	seqPath, err := cmd.Flags().GetString("sequence")
	if err != nil {
		return err
	}
	seq, err := readSequence(seqPath)
	if err != nil {
		return err
	}
	var initial []facts.Fact
	factsPath, err := cmd.Flags().GetString("facts")
	if err != nil {
		return err
	}
	if factsPath != "" {
		data, err := os.ReadFile(factsPath)
		if err != nil {
			return fmt.Errorf("failed to read facts: %w", err)
		}
		if initial, err = facts.DecodeFacts(data); err != nil {
			return err
		}
	}
	outDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	jobs := make([]replayJob, len(args))
	for i, input := range args {
		jobs[i] = replayJob{input: input, output: outputPath(input, outDir)}
	}
	outcomes, err := replayAll(cmd.Context(), jobs, seq, initial, cfg.Replay)
	if err != nil {
		return err
	}
	for i, job := range jobs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d applied, %d skipped -> %s\n",
			job.input, outcomes[i].applied, outcomes[i].skipped, job.output)
	}
	return nil
}

func applyReplayFlags(cmd *cobra.Command, cfg *ReplayConfig) error {
	var err error
	flags := cmd.Flags()
	if flags.Changed("overflow-id-start") {
		if cfg.OverflowIDStart, err = flags.GetUint32("overflow-id-start"); err != nil {
			return err
		}
	}
	if flags.Changed("validate-each-step") {
		if cfg.ValidateEachStep, err = flags.GetBool("validate-each-step"); err != nil {
			return err
		}
	}
	if flags.Changed("jobs") {
		if cfg.Jobs, err = flags.GetInt("jobs"); err != nil {
			return err
		}
	}
	return nil
}

func readSequence(path string) (*fuzz.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sequence: %w", err)
	}
	defer f.Close()
	return fuzz.DecodeSequence(f)
}

// outputPath returns where the transformed version of input is written.
func outputPath(input, outDir string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".fuzzed.spv"
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), name)
	}
	return filepath.Join(outDir, name)
}

// replayAll replays seq on every job, cfg.Jobs at a time. Each module gets
// its own facts and overflow id source.
func replayAll(ctx context.Context, jobs []replayJob, seq *fuzz.Sequence, initial []facts.Fact, cfg ReplayConfig) ([]replayOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	limit := len(jobs)
	if cfg.Jobs > 0 {
		limit = min(cfg.Jobs, len(jobs))
	}
	outcomes := make([]replayOutcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := replayFile(job, seq, initial, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", job.input, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func replayFile(job replayJob, seq *fuzz.Sequence, initial []facts.Fact, cfg ReplayConfig) (replayOutcome, error) {
	data, err := os.ReadFile(job.input)
	if err != nil {
		return replayOutcome{}, err
	}
	m, err := ir.Parse(data)
	if err != nil {
		return replayOutcome{}, err
	}
	result, err := replayModule(m, seq, initial, cfg, fuzz.Logger().With(zap.String("module", job.input)))
	if err != nil {
		return replayOutcome{}, err
	}
	if err := os.MkdirAll(filepath.Dir(job.output), 0o755); err != nil {
		return replayOutcome{}, err
	}
	if err := os.WriteFile(job.output, m.Encode(), 0o644); err != nil {
		return replayOutcome{}, err
	}
	return replayOutcome{applied: result.Applied.Len(), skipped: result.Skipped}, nil
}

// replayModule replays seq on m in place.
func replayModule(m *ir.Module, seq *fuzz.Sequence, initial []facts.Fact, cfg ReplayConfig, logger *zap.Logger) (*fuzz.ReplayResult, error) {
	opts := fuzz.ReplayOptions{
		InitialFacts:     initial,
		ValidateEachStep: cfg.ValidateEachStep,
		Logger:           logger,
	}
	if cfg.OverflowIDStart != 0 {
		// Overflow ids never collide with ids the module already uses.
		opts.Overflow = fuzz.NewCounterOverflowIDSource(max(cfg.OverflowIDStart, m.IDBound()))
	}
	return fuzz.NewReplayer(opts).Replay(m, seq)
}
