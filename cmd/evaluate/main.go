package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zatekoja/srq20-api/internal/adapters/classifier"
	"github.com/zatekoja/srq20-api/internal/application/services"
	"github.com/zatekoja/srq20-api/internal/domain/entities"
	"github.com/zatekoja/srq20-api/internal/evaluation"
)

var (
	modelPath   string
	datasetPath string
	guardrails  evaluation.GuardrailConfig
)

var rootCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate an SRQ-20 model against a labelled dataset",
	Long: `evaluate runs the serialized random forest over a labelled SRQ-20 dataset
using the same confidence and severity mapping as the prediction API, and prints
accuracy, precision, recall, F1, the confusion matrix, mean confidence and the
distribution of final severity labels as JSON.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := classifier.LoadRandomForest(modelPath, entities.FeatureNames[:])
		if err != nil {
			return fmt.Errorf("failed to load model: %w", err)
		}

		samples, err := evaluation.LoadSamples(datasetPath)
		if err != nil {
			return err
		}
		if err := evaluation.ValidateSamples(samples); err != nil {
			return fmt.Errorf("invalid dataset: %w", err)
		}

		service := services.NewPredictionService(model, nil)
		log.Info().
			Str("model_version", service.ModelVersion()).
			Int("samples", len(samples)).
			Msg("Running evaluation")

		runner := evaluation.NewRunner(service)
		summary, err := runner.Run(cmd.Context(), samples)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}

		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if violations := evaluation.NewGuardrails(guardrails).Check(summary); len(violations) > 0 {
			return fmt.Errorf("guardrails failed: %s", strings.Join(violations, "; "))
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&modelPath, "model", "rf_model.json", "path to the serialized model")
	rootCmd.Flags().StringVar(&datasetPath, "dataset", "", "path to the labelled dataset (JSON)")
	rootCmd.Flags().Float64Var(&guardrails.MinAccuracy, "min-accuracy", 0, "fail when accuracy is below this value")
	rootCmd.Flags().Float64Var(&guardrails.MinRecall, "min-recall", 0, "fail when recall on the depressed class is below this value")
	rootCmd.Flags().Float64Var(&guardrails.MaxFailedRate, "max-failed-rate", 0, "fail when the share of failed predictions exceeds this value")
	_ = rootCmd.MarkFlagRequired("dataset")
}

func main() {
	// stdout carries the JSON summary
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
