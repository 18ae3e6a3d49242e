package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nzgeo/popmatch/internal/checkpoint"
	"github.com/nzgeo/popmatch/internal/llm"
	"github.com/nzgeo/popmatch/internal/model"
	"github.com/nzgeo/popmatch/internal/pipeline"
)

var (
	outDir           string
	cacheDir         string
	noCache          bool
	clearCache       bool
	bbox             string
	overpassEndpoint string
	batchSize        int
	batchDelay       time.Duration
	llmProvider      string
	llmModel         string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the conflation pipeline",
	Long: `Fetch places, resolve Wikipedia articles, extract population figures
and write the report and osmPatch file to the output directory.

Every remote stage is checkpointed under the cache directory, so an
interrupted run resumes where it left off. Use --clear-cache to start
over from fresh data.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&outDir, "out", "", "output directory (default: out)")
	runCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "checkpoint directory (default: out/cache)")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable checkpointing entirely")
	runCmd.Flags().BoolVar(&clearCache, "clear-cache", false, "delete all checkpoints before running")
	runCmd.Flags().StringVar(&bbox, "bbox", "", "bounding box as south,west,north,east")
	runCmd.Flags().StringVar(&overpassEndpoint, "overpass", "", "Overpass API endpoint")
	runCmd.Flags().IntVar(&batchSize, "batch-size", 0, "remote API batch size")
	runCmd.Flags().DurationVar(&batchDelay, "delay", 0, "minimum delay between remote requests")
	runCmd.Flags().StringVar(&llmProvider, "llm", "", "LLM provider for the optional triage summary (openai)")
	runCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")

	rootCmd.AddCommand(runCmd)
}

// loadConfig merges defaults, the config file and CLI flags, in that order
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if bbox != "" {
		cfg.Overpass.BBox = bbox
	}
	if overpassEndpoint != "" {
		cfg.Overpass.Endpoint = overpassEndpoint
	}
	if batchSize > 0 {
		cfg.Batch.Size = batchSize
	}
	if batchDelay > 0 {
		cfg.Batch.Delay = batchDelay
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Output.Verbose = verbose || viper.GetBool("verbose")

	return cfg, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if clearCache {
		if err := checkpoint.New(cfg.Cache.Dir, true).Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}

	res, err := pipeline.New(cfg).Run(ctx)
	if err != nil {
		return err
	}

	if err := pipeline.NewRenderer(cfg.Output.Dir).WriteAll(res); err != nil {
		return err
	}

	pipeline.Summary(os.Stdout, res.Report)
	fmt.Printf("\nReport: %s\n", filepath.Join(cfg.Output.Dir, pipeline.FileReportHTML))
	fmt.Printf("Patch:  %s\n", filepath.Join(cfg.Output.Dir, pipeline.FilePatch))

	if cfg.LLM.Provider != "" {
		summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return err
		}
		summary, err := summarizer.Triage(ctx, res.Report)
		if err != nil {
			// the summary is advisory, a failure does not fail the run
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			fmt.Printf("\nTriage summary:\n%s\n", summary)
		}
	}

	return nil
}
