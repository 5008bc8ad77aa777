package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mathforge-ai/mathforge/pkg/agents"
	"github.com/mathforge-ai/mathforge/pkg/cache"
	"github.com/mathforge-ai/mathforge/pkg/config"
	"github.com/mathforge-ai/mathforge/pkg/costs"
	"github.com/mathforge-ai/mathforge/pkg/llm"
	"github.com/mathforge-ai/mathforge/pkg/models"
	"github.com/mathforge-ai/mathforge/pkg/pipeline"
	"github.com/mathforge-ai/mathforge/pkg/pool"
	"github.com/mathforge-ai/mathforge/pkg/telemetry"
)

func newGenerateCmd() *cobra.Command {
	var (
		configPath string
		outPath    string
		target     int
		seed       string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the generation pipeline until enough problems are accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if target > 0 {
				cfg.Pipeline.TargetAccepted = target
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdown, err := telemetry.Init(ctx, cfg.Telemetry, version)
			if err != nil {
				return fmt.Errorf("telemetry: %w", err)
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(flushCtx); err != nil {
					log.Printf("telemetry shutdown: %v", err)
				}
			}()

			result, err := runGeneration(ctx, cfg, seed)
			if result != nil {
				printSummary(result)
				if outPath != "" {
					if werr := writeResult(outPath, result); werr != nil {
						return werr
					}
					fmt.Printf("Results written to %s\n", outPath)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mathforge.yaml", "path to config file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the full run result as JSON")
	cmd.Flags().IntVarP(&target, "target", "n", 0, "accepted problems to produce (overrides config)")
	cmd.Flags().StringVar(&seed, "seed", "", "existing problem to harden instead of drafting from scratch")

	return cmd
}

// runGeneration is the composition root: it assembles providers, retry,
// cache, cost tracking, the worker pool, and the orchestrator from config.
func runGeneration(ctx context.Context, cfg *config.Config, seed string) (*models.RunResult, error) {
	registry, err := llm.NewRegistry(cfg.Providers)
	if err != nil {
		return nil, err
	}
	invoker := llm.NewRetrying(registry, 3, time.Second)

	var responseCache *cache.Cache
	if cfg.Cache.Enabled {
		var opts []cache.Option
		if cfg.Cache.Persistent {
			opts = append(opts, cache.WithDurableDir(cfg.Cache.Dir))
		}
		responseCache, err = cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL, opts...)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
	}

	tracker := costs.NewTracker()
	if cfg.Ledger.Enabled {
		ledger, err := costs.OpenLedger(cfg.Ledger.DBPath)
		if err != nil {
			return nil, fmt.Errorf("ledger: %w", err)
		}
		defer func() { _ = ledger.Close() }()
		tracker = costs.NewTrackerWithLedger(ledger)
	}

	client := llm.NewClient(invoker, responseCache, tracker)

	var similarity *agents.Similarity
	if cfg.Similarity.Enabled {
		similarity = agents.NewSimilarity(client, cfg.Similarity)
	}
	runner := pipeline.NewRunner(
		agents.NewEngineer(client, cfg.Engineer),
		agents.NewChecker(client, cfg.Checker),
		agents.NewTarget(client, cfg.Target),
		similarity,
	)

	workers := pool.New(cfg.Pipeline.MaxWorkers, cfg.Pipeline.AdaptationInterval, cfg.Pipeline.TargetSuccessRate)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	source := pipeline.SourceFromConfig(cfg, seed, rng)
	orch := pipeline.NewOrchestrator(runner, workers, tracker, source)

	targetAccepted := cfg.Pipeline.TargetAccepted
	maxAttempts := cfg.EffectiveMaxAttempts()
	if cfg.Pipeline.UseEnhancedConcurrency {
		return orch.Run(ctx, targetAccepted, maxAttempts)
	}
	return orch.RunSequential(ctx, targetAccepted, maxAttempts)
}

func printSummary(res *models.RunResult) {
	fmt.Printf("Accepted:  %d\nDiscarded: %d\nErrored:   %d\nAttempts:  %d\n",
		len(res.Accepted), len(res.Discarded), len(res.Errored), res.Metadata.TotalAttempted)
	fmt.Printf("Total cost: $%.6f\n", res.TotalCost)
	for key, row := range res.Breakdown {
		fmt.Printf("  %-30s in=%-8d out=%-8d $%.6f\n", key, row.InputTokens, row.OutputTokens, row.CostUSD)
	}
}

func writeResult(path string, res *models.RunResult) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
