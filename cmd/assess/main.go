package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/eco-assessor/internal/config"
	"alfredoptarigan/eco-assessor/internal/models"
	"alfredoptarigan/eco-assessor/internal/services"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "assess <upc>",
	Short: "Run one sustainability assessment from the terminal",
	Long: `Runs the search, scrape, model and parsing pipeline for a single product
and prints the assessment JSON.

With --reply-file the model call is skipped and a previously saved reply is
parsed instead, which is useful for checking label extraction offline.

Examples:
  assess B0CW25XR5S
  assess B0CW25XR5S --rubric lifecycle
  assess B0CW25XR5S --reply-file reply.txt --weights-file weights.json`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if _, err := config.InitLogger(cfg.Server.Env); err != nil {
			return eris.Wrap(err, "init logger")
		}
		if !cfg.EnvFileLoaded {
			zap.L().Debug("no .env file found, using environment and defaults")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: runAssess,
}

func init() {
	f := rootCmd.Flags()
	f.String("rubric", "", "rubric to score with (esg, lifecycle); defaults to RUBRIC")
	f.String("reply-file", "", "parse a saved model reply instead of calling the model")
	f.String("weights-file", "", "JSON file with weight overrides")
}

func runAssess(cmd *cobra.Command, args []string) error {
	upc := args[0]

	rubricName, _ := cmd.Flags().GetString("rubric")
	if rubricName == "" {
		rubricName = cfg.Server.Rubric
	}
	rubric, err := services.RubricByName(rubricName)
	if err != nil {
		return err
	}

	weights, err := loadWeights(cmd)
	if err != nil {
		return err
	}

	promptBuilder := services.NewPromptBuilder(rubric, services.NewTextChunker(), cfg.Scrape.MaxDocumentChars)

	var result *models.AssessmentResult
	if replyFile, _ := cmd.Flags().GetString("reply-file"); replyFile != "" {
		reply, err := os.ReadFile(replyFile)
		if err != nil {
			return eris.Wrap(err, "read reply file")
		}
		assessor := services.NewAssessorService(nil, nil, promptBuilder, rubric, services.AssessorOptions{})
		result = assessor.ParseReply(upc, string(reply), weights)
	} else {
		result, err = runPipeline(cmd.Context(), upc, weights, rubric, promptBuilder)
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runPipeline(ctx context.Context, upc string, weights models.WeightSet, rubric *services.Rubric, promptBuilder *services.PromptBuilder) (*models.AssessmentResult, error) {
	if !cfg.HasAPIKey() {
		return nil, eris.New("API_KEY is not set")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llm, err := services.NewLLMService(ctx, services.LLMOptions{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, err
	}

	scraper := services.NewScraperService(cfg.Scrape.Timeout, cfg.Scrape.MaxBytes, cfg.Scrape.RatePerSec, services.NewPDFParserService())
	retriever := services.NewDocumentRetriever(services.NewSearchService(cfg.Search.URL, cfg.Search.Timeout), scraper, cfg.Search.TopN)

	assessor := services.NewAssessorService(retriever, llm, promptBuilder, rubric, services.AssessorOptions{
		MaxAttempts:        cfg.LLM.MaxAttempts,
		RetryDelay:         cfg.LLM.RetryDelay,
		SearchAlternatives: cfg.Search.Alternatives,
	})

	assessment, err := assessor.Assess(ctx, models.AssessRequest{UPC: upc, Weights: weights})
	if err != nil {
		return models.NewErrorResult(err), nil
	}
	return assessment.Result, nil
}

func loadWeights(cmd *cobra.Command) (models.WeightSet, error) {
	path, _ := cmd.Flags().GetString("weights-file")
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read weights file")
	}

	var weights models.WeightSet
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, eris.Wrap(err, "parse weights file")
	}
	return weights, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
