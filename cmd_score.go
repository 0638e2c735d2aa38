package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/saqibullah/diabetes-risk-predictor/api"
	"github.com/saqibullah/diabetes-risk-predictor/model"
	"github.com/saqibullah/diabetes-risk-predictor/risk"
)

var (
	scoreIn  string
	scoreOut string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a CSV file offline",
	Long:  "Runs the batch prediction pipeline over a local CSV file and writes the augmented CSV to --out or stdout.",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreIn, "in", "", "Input CSV file (required)")
	scoreCmd.Flags().StringVarP(&scoreOut, "out", "o", "", "Output CSV file (default stdout)")
	_ = scoreCmd.MarkFlagRequired("in")
}

func runScore(cmd *cobra.Command, _ []string) error {
	_, _, ic, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if !ic.Ready() {
		return model.ErrNotLoaded
	}

	var out io.Writer = cmd.OutOrStdout()
	if scoreOut != "" {
		f, err := os.Create(scoreOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	return scoreFile(ic, scoreIn, out, cmd.ErrOrStderr())
}

func scoreFile(ic *model.InferenceContext, path string, out, summaryOut io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	table, err := api.ReadTable(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	augmented, summary, err := api.ScoreTable(ic, table)
	if err != nil {
		return fmt.Errorf("score %s: %w", path, err)
	}
	data, err := augmented.WriteCSV()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, data); err != nil {
		return err
	}

	fmt.Fprintf(summaryOut, "Records:      %d\n", summary.Count)
	fmt.Fprintf(summaryOut, "Diabetic:     %d (%.1f%%)\n", summary.DiabeticCount, summary.DiabeticRate)
	fmt.Fprintf(summaryOut, "Non-diabetic: %d\n", summary.NonDiabeticCount)
	for _, level := range risk.Levels {
		fmt.Fprintf(summaryOut, "  %-9s %d\n", level+":", summary.RiskDistribution[level])
	}
	return nil
}
